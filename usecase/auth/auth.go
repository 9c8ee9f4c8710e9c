// Package auth turns identity provider tokens into the device session and
// announces every change to the session trackers.
package auth

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

var timeNow = time.Now

type UseCase struct {
	registry repository.SessionRegistry
	store    repository.SessionStore
	notifier repository.SessionNotifier
	secret   []byte
	ttl      time.Duration
	logger   *zap.Logger
}

func New(registry repository.SessionRegistry, store repository.SessionStore, notifier repository.SessionNotifier, secret string, ttl time.Duration, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &UseCase{
		registry: registry,
		store:    store,
		notifier: notifier,
		secret:   []byte(secret),
		ttl:      ttl,
		logger:   logger,
	}
}

// SetSession adopts the tokens returned by the OAuth redirect as the device
// session.
func (uc *UseCase) SetSession(ctx context.Context, accessToken, refreshToken string) (*domain.Session, error) {
	accessToken = strings.TrimSpace(accessToken)
	refreshToken = strings.TrimSpace(refreshToken)
	if accessToken == "" || refreshToken == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "access_token and refresh_token are required")
	}

	user, expiresAt, err := parseAccessToken(uc.secret, accessToken)
	if err != nil {
		uc.logger.Warn("rejected access token", zap.Error(err))
		return nil, err
	}
	if expiresAt.IsZero() {
		expiresAt = timeNow().Add(uc.ttl)
	}

	session := &domain.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		User:         user,
	}
	if err := uc.commit(ctx, session); err != nil {
		return nil, err
	}
	uc.logger.Info("session established", zap.String("user_id", user.ID))
	return session, nil
}

// GetSession returns the stored device session, ErrSessionNotFound when
// signed out or expired.
func (uc *UseCase) GetSession(ctx context.Context) (*domain.Session, error) {
	session, err := uc.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	if session.IsExpired(timeNow()) {
		_ = uc.registry.Delete(ctx, session.RefreshToken)
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// RefreshSession extends the registered session by the configured TTL. A
// refresh token the registry no longer knows signs the device out.
func (uc *UseCase) RefreshSession(ctx context.Context) (*domain.Session, error) {
	session, err := uc.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}

	if err := uc.registry.Extend(ctx, session.RefreshToken, int(uc.ttl.Seconds())); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			uc.logger.Info("refresh token revoked, signing out")
			if signOutErr := uc.SignOut(ctx); signOutErr != nil {
				uc.logger.Error("error signing out", zap.Error(signOutErr))
			}
		}
		return nil, err
	}

	refreshed := *session
	refreshed.ExpiresAt = timeNow().Add(uc.ttl)
	if err := uc.store.Save(ctx, &refreshed); err != nil {
		return nil, err
	}
	if err := uc.notifier.Publish(ctx, &refreshed); err != nil {
		return nil, err
	}
	return &refreshed, nil
}

// SignOut revokes the device session and tells every tracker.
func (uc *UseCase) SignOut(ctx context.Context) error {
	session, err := uc.store.Load(ctx)
	if err != nil {
		uc.logger.Warn("error loading session during sign out", zap.Error(err))
	}
	if session != nil {
		if err := uc.registry.Delete(ctx, session.RefreshToken); err != nil {
			return err
		}
	}
	if err := uc.store.Clear(ctx); err != nil {
		return err
	}
	if err := uc.notifier.Publish(ctx, nil); err != nil {
		return err
	}
	uc.logger.Info("signed out")
	return nil
}

func (uc *UseCase) commit(ctx context.Context, session *domain.Session) error {
	if err := uc.registry.Save(ctx, session); err != nil {
		uc.logger.Error("error registering session", zap.Error(err))
		return err
	}
	if err := uc.store.Save(ctx, session); err != nil {
		uc.logger.Error("error storing session", zap.Error(err))
		return err
	}
	return uc.notifier.Publish(ctx, session)
}
