// Package session tracks the device's authentication session and fans its
// changes out to dependents.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// Status describes what the tracker knows about the session.
type Status int

const (
	// StatusUnknown means the initial fetch has not completed.
	StatusUnknown Status = iota
	StatusSignedOut
	StatusSignedIn
)

func (s Status) String() string {
	switch s {
	case StatusSignedOut:
		return "signed_out"
	case StatusSignedIn:
		return "signed_in"
	default:
		return "unknown"
	}
}

// Listener is called with every new session, nil on sign out. Listeners run
// on the notifier's goroutine and must not block.
type Listener func(session *domain.Session)

// timeNow is replaced in tests.
var timeNow = time.Now

type Tracker struct {
	store    repository.SessionStore
	notifier repository.SessionNotifier
	logger   *zap.Logger

	// notifyMu keeps listener deliveries in the order states were applied.
	notifyMu sync.Mutex

	mu        sync.RWMutex
	session   *domain.Session
	status    Status
	version   uint64
	listeners []Listener
	sub       repository.Subscription
	closed    bool

	closeOnce sync.Once
	closeErr  error
}

func New(store repository.SessionStore, notifier repository.SessionNotifier, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// OnChange registers a dependent. Register before Start to observe the
// initial session.
func (t *Tracker) OnChange(listener Listener) {
	if listener == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, listener)
}

// Current returns the latest known session and what the tracker knows about it.
func (t *Tracker) Current() (*domain.Session, Status) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.session, t.status
}

// Loading reports whether the initial session fetch is still in flight.
func (t *Tracker) Loading() bool {
	_, status := t.Current()
	return status == StatusUnknown
}

// Start subscribes to session changes and then performs the one initial
// fetch. A failed fetch is logged and treated as signed out. A notification
// that arrives while the fetch is in flight takes precedence over it.
func (t *Tracker) Start(ctx context.Context) error {
	if t.notifier != nil {
		sub, err := t.notifier.Subscribe(ctx, t.handleChange)
		if err != nil {
			return err
		}
		t.mu.Lock()
		if t.closed {
			t.mu.Unlock()
			return sub.Close()
		}
		t.sub = sub
		t.mu.Unlock()
	}

	t.mu.RLock()
	startVersion := t.version
	t.mu.RUnlock()

	var session *domain.Session
	if t.store != nil {
		loaded, err := t.store.Load(ctx)
		if err != nil {
			t.logger.Error("error fetching session", zap.Error(err))
		} else {
			session = loaded
		}
	}
	if session != nil && session.IsExpired(timeNow()) {
		t.logger.Info("stored session expired")
		session = nil
	}

	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()

	t.mu.Lock()
	if t.closed || t.version != startVersion {
		t.mu.Unlock()
		return nil
	}
	t.apply(session)
	listeners := t.snapshotListeners()
	t.mu.Unlock()

	notify(listeners, session)
	return nil
}

// Close releases the subscription. It is safe to call more than once and
// from any exit path.
func (t *Tracker) Close() error {
	t.closeOnce.Do(func() {
		t.mu.Lock()
		t.closed = true
		sub := t.sub
		t.sub = nil
		t.mu.Unlock()

		if sub != nil {
			t.closeErr = sub.Close()
		}
	})
	return t.closeErr
}

func (t *Tracker) handleChange(session *domain.Session) {
	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.apply(session)
	listeners := t.snapshotListeners()
	t.mu.Unlock()

	t.logger.Info("auth state changed", zap.Bool("signed_in", session != nil))
	notify(listeners, session)
}

// apply must be called with mu held.
func (t *Tracker) apply(session *domain.Session) {
	t.version++
	t.session = session
	if session == nil {
		t.status = StatusSignedOut
	} else {
		t.status = StatusSignedIn
	}
}

func (t *Tracker) snapshotListeners() []Listener {
	return append([]Listener(nil), t.listeners...)
}

func notify(listeners []Listener, session *domain.Session) {
	for _, l := range listeners {
		l(session)
	}
}
