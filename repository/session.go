package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// SessionStore persists the device's current session between restarts.
type SessionStore interface {
	// Load returns nil without error when no session is stored.
	Load(ctx context.Context) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Clear(ctx context.Context) error
}

// SessionRegistry is the directory-side record of issued refresh tokens.
type SessionRegistry interface {
	Get(ctx context.Context, refreshToken string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, refreshToken string) error
	Extend(ctx context.Context, refreshToken string, ttlSeconds int) error
}

// SessionChangeHandler receives the new session, nil on sign out.
type SessionChangeHandler func(session *domain.Session)

// Subscription is released by calling Close; extra calls are no-ops.
type Subscription interface {
	Close() error
}

// SessionNotifier fans session changes out to every tracker of a device.
type SessionNotifier interface {
	Publish(ctx context.Context, session *domain.Session) error
	Subscribe(ctx context.Context, handler SessionChangeHandler) (Subscription, error)
}
