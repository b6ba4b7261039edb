package bot

import (
	"sync"

	"github.com/fortunamfo/branchbot/internal/domain"
)

// step is the dialog position for one private chat. The zero value is
// idle: free text outside a dialog falls through to the menu handler.
type step int

const (
	stepIdle step = iota

	// product calculator
	stepAwaitPrincipal
	stepAwaitVehicleYear
	stepAwaitTerm

	// admin free-form calculator
	stepAdminPrincipal
	stepAdminRate
	stepAdminTerm

	// admin broadcast
	stepBroadcastCollect
	stepBroadcastConfirm

	// admin vacancy post
	stepVacancyPhoto
	stepVacancyText

	// admin branch entry
	stepBranchName
	stepBranchAddress
	stepBranchPhone
	stepBranchHours
	stepBranchLocation

	// user shares a location to find the nearest branch
	stepAwaitLocation
)

// dialog accumulates one chat's in-flight conversation.
type dialog struct {
	step step

	product     domain.Product
	principal   float64
	vehicleYear int

	// admin free-form calculator has no product, rate is entered
	rate float64

	// queued broadcast content
	items []domain.BroadcastItem

	// in-progress admin entries for the directory dialogs
	vacancyPhoto string
	branch       domain.Branch
}

// states holds per-chat dialogs. The dispatch loop handles chats
// concurrently, so every chat carries its own lock and a handler must
// hold it (via lock) before touching the dialog.
type states struct {
	mu sync.Mutex
	m  map[int64]*chatState
}

// chatState pairs one chat's dialog with the lock that serializes its
// handlers. The entry is never removed from the map: the lock identity
// must survive a reset so a handler running across one still excludes
// the next update.
type chatState struct {
	mu sync.Mutex
	d  dialog
}

func newStates() *states {
	return &states{m: make(map[int64]*chatState)}
}

func (s *states) chat(chatID int64) *chatState {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.m[chatID]
	if !ok {
		c = &chatState{}
		s.m[chatID] = c
	}
	return c
}

// lock serializes update handling for one chat and returns the unlock.
// While held, the chat's dialog may be mutated freely.
func (s *states) lock(chatID int64) func() {
	c := s.chat(chatID)
	c.mu.Lock()
	return c.mu.Unlock
}

// get returns the chat's dialog, creating an idle one if needed. The
// caller must hold the chat's lock.
func (s *states) get(chatID int64) *dialog {
	return &s.chat(chatID).d
}

// reset drops the chat's dialog back to idle.
func (s *states) reset(chatID int64) {
	*s.get(chatID) = dialog{}
}
