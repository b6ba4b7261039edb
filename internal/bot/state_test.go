package bot

import (
	"sync"
	"testing"

	"github.com/fortunamfo/branchbot/internal/domain"
)

// Two quick messages from the same user arrive on separate dispatch
// goroutines; the chat lock must make their dialog mutations atomic.
func TestDialogState_ConcurrentUpdatesSerialized(t *testing.T) {
	s := newStates()
	const updates = 16

	var wg sync.WaitGroup
	for i := 0; i < updates; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			unlock := s.lock(42)
			defer unlock()

			d := s.get(42)
			d.step = stepAwaitTerm
			d.principal = float64(n)
			d.items = append(d.items, domain.BroadcastItem{Type: domain.BroadcastText})
		}(i)
	}
	wg.Wait()

	unlock := s.lock(42)
	defer unlock()
	if got := len(s.get(42).items); got != updates {
		t.Fatalf("expected %d queued items, got %d", updates, got)
	}
}

// A reset must not hand the next update a different lock: the handler
// still in flight has to finish before the fresh dialog is touched.
func TestDialogState_LockSurvivesReset(t *testing.T) {
	s := newStates()

	unlock := s.lock(7)
	s.get(7).step = stepBroadcastCollect
	s.reset(7)
	unlock()

	unlock = s.lock(7)
	defer unlock()
	if s.get(7).step != stepIdle {
		t.Error("reset did not clear dialog")
	}
}
