package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/fortunamfo/branchbot/internal/domain"
	"github.com/fortunamfo/branchbot/internal/infra/observability"
)

type fakeSubscriberStore struct {
	subs []domain.Subscriber
	err  error
}

func (f *fakeSubscriberStore) SaveSubscriber(_ context.Context, sub domain.Subscriber) (bool, error) {
	f.subs = append(f.subs, sub)
	return true, nil
}

func (f *fakeSubscriberStore) ListSubscribers(context.Context) ([]domain.Subscriber, error) {
	return f.subs, f.err
}

type fakeDeliverer struct {
	mu        sync.Mutex
	delivered []int64
	failFor   map[int64]bool
}

func (f *fakeDeliverer) Deliver(_ context.Context, chatID int64, _ []domain.BroadcastItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[chatID] {
		return errors.New("bot was blocked by the user")
	}
	f.delivered = append(f.delivered, chatID)
	return nil
}

func subscribers(n int) []domain.Subscriber {
	subs := make([]domain.Subscriber, 0, n)
	for i := 0; i < n; i++ {
		subs = append(subs, domain.Subscriber{TelegramID: int64(i + 1)})
	}
	return subs
}

func newBroadcaster(store *fakeSubscriberStore, d Deliverer) *Broadcaster {
	return NewBroadcaster(store, d, 4, time.Millisecond, observability.NewMetrics(), zap.NewNop())
}

func TestBroadcastRun_AllDelivered(t *testing.T) {
	store := &fakeSubscriberStore{subs: subscribers(10)}
	deliverer := &fakeDeliverer{}
	b := newBroadcaster(store, deliverer)

	result, err := b.Run(context.Background(), []domain.BroadcastItem{{Type: domain.BroadcastText, Text: "hi"}}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Total != 10 || result.Sent != 10 || result.Blocked != 0 {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(deliverer.delivered) != 10 {
		t.Errorf("delivered %d, want 10", len(deliverer.delivered))
	}
}

func TestBroadcastRun_BlockedUsersDoNotAbort(t *testing.T) {
	store := &fakeSubscriberStore{subs: subscribers(6)}
	deliverer := &fakeDeliverer{failFor: map[int64]bool{2: true, 5: true}}
	b := newBroadcaster(store, deliverer)

	result, err := b.Run(context.Background(), []domain.BroadcastItem{{Type: domain.BroadcastText, Text: "hi"}}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Sent != 4 || result.Blocked != 2 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestBroadcastRun_Progress(t *testing.T) {
	store := &fakeSubscriberStore{subs: subscribers(3)}
	b := newBroadcaster(store, &fakeDeliverer{})

	var mu sync.Mutex
	var ticks [][2]int
	_, err := b.Run(context.Background(), []domain.BroadcastItem{{Type: domain.BroadcastText, Text: "hi"}}, func(done, total int) {
		mu.Lock()
		ticks = append(ticks, [2]int{done, total})
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(ticks) == 0 {
		t.Fatal("expected at least the final progress tick")
	}
	last := ticks[len(ticks)-1]
	if last != [2]int{3, 3} {
		t.Errorf("unexpected final tick: %v", last)
	}
}

func TestBroadcastRun_ListError(t *testing.T) {
	store := &fakeSubscriberStore{err: errors.New("workbook unreadable")}
	b := newBroadcaster(store, &fakeDeliverer{})

	if _, err := b.Run(context.Background(), nil, nil); err == nil {
		t.Fatal("expected error when listing fails")
	}
}

func TestSubscriberCount(t *testing.T) {
	store := &fakeSubscriberStore{subs: subscribers(7)}
	b := newBroadcaster(store, &fakeDeliverer{})

	n, err := b.SubscriberCount(context.Background())
	if err != nil {
		t.Fatalf("SubscriberCount: %v", err)
	}
	if n != 7 {
		t.Errorf("got %d, want 7", n)
	}
}
