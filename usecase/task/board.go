package task

import (
	"context"
	"sync"

	"github.com/fastygo/taskboard/domain"
)

// Phase is the display state of a task list.
type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseError   Phase = "error"
	PhaseReady   Phase = "ready"
)

// BoardState is what a task list consumer renders.
type BoardState struct {
	Phase      Phase                     `json:"phase"`
	Filter     domain.TaskFilter         `json:"filter"`
	Tasks      []domain.TaskWithProfiles `json:"tasks"`
	Error      string                    `json:"error,omitempty"`
	Refreshing bool                      `json:"refreshing"`
}

// Board caches one consumer's task list. Overlapping refreshes are not
// deduplicated: whichever finishes last is what the board shows.
type Board struct {
	uc *UseCase

	mu        sync.Mutex
	filter    domain.TaskFilter
	profileID *int64
	state     BoardState
	stale     bool
	inflight  int
	closed    bool
}

// NewBoard creates a board that loads on first Get.
func (uc *UseCase) NewBoard(filter domain.TaskFilter, profileID *int64) *Board {
	if filter == "" {
		filter = domain.FilterAll
	}
	return &Board{
		uc:        uc,
		filter:    filter,
		profileID: copyID(profileID),
		state:     BoardState{Phase: PhaseLoading, Filter: filter, Tasks: []domain.TaskWithProfiles{}},
		stale:     true,
	}
}

// State returns the last applied state without fetching.
func (b *Board) State() BoardState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Get returns the cached list, refreshing first when it was invalidated or
// never loaded.
func (b *Board) Get(ctx context.Context) BoardState {
	b.mu.Lock()
	stale := b.stale
	current := b.state
	b.mu.Unlock()

	if !stale {
		return current
	}
	return b.Refresh(ctx)
}

// SetFilter changes the listing parameters and invalidates the cache when
// they differ from the current ones.
func (b *Board) SetFilter(filter domain.TaskFilter, profileID *int64) {
	if filter == "" {
		filter = domain.FilterAll
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.filter == filter && sameID(b.profileID, profileID) {
		return
	}
	b.filter = filter
	b.profileID = copyID(profileID)
	b.stale = true
}

// Invalidate marks the cached list as out of date, e.g. after a task was
// created or reassigned.
func (b *Board) Invalidate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stale = true
}

// Refresh repeats the full fetch-and-join and applies its result.
func (b *Board) Refresh(ctx context.Context) BoardState {
	b.mu.Lock()
	if b.closed {
		state := b.state
		b.mu.Unlock()
		return state
	}
	filter, profileID := b.filter, copyID(b.profileID)
	b.stale = false
	b.inflight++
	if b.state.Phase == PhaseReady {
		b.state.Refreshing = true
	} else {
		b.state.Phase = PhaseLoading
		b.state.Error = ""
	}
	b.mu.Unlock()

	tasks, err := b.uc.List(ctx, filter, profileID)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.inflight--
	if b.closed {
		return b.state
	}
	if err != nil {
		b.state = BoardState{Phase: PhaseError, Filter: filter, Tasks: []domain.TaskWithProfiles{}, Error: errorMessage(err)}
	} else {
		b.state = BoardState{Phase: PhaseReady, Filter: filter, Tasks: tasks}
	}
	b.state.Refreshing = b.inflight > 0
	return b.state
}

// Close detaches the consumer; results that arrive afterwards are discarded.
func (b *Board) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
