package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type sessionRegistry struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewSessionRegistry creates a Redis-backed registry of issued sessions keyed by refresh token.
func NewSessionRegistry(client *redislib.Client, ttl time.Duration) repository.SessionRegistry {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &sessionRegistry{
		client: client,
		prefix: "session:",
		ttl:    ttl,
	}
}

func (r *sessionRegistry) Get(ctx context.Context, refreshToken string) (*domain.Session, error) {
	result, err := r.client.Get(ctx, r.key(refreshToken)).Result()
	if err != nil {
		if err == redislib.Nil {
			return nil, domain.ErrSessionNotFound
		}
		return nil, domain.WrapError(domain.ErrCodeTransport, "read session", err)
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(result), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRegistry) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.RefreshToken == "" {
		return domain.ErrInvalidPayload
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}

	ttl := r.ttl
	if !session.ExpiresAt.IsZero() {
		if until := time.Until(session.ExpiresAt); until > 0 {
			ttl = until
		}
	}

	if err := r.client.Set(ctx, r.key(session.RefreshToken), payload, ttl).Err(); err != nil {
		return domain.WrapError(domain.ErrCodeTransport, "store session", err)
	}
	return nil
}

func (r *sessionRegistry) Delete(ctx context.Context, refreshToken string) error {
	if err := r.client.Del(ctx, r.key(refreshToken)).Err(); err != nil {
		return domain.WrapError(domain.ErrCodeTransport, "delete session", err)
	}
	return nil
}

func (r *sessionRegistry) Extend(ctx context.Context, refreshToken string, ttlSeconds int) error {
	duration := time.Duration(ttlSeconds) * time.Second
	if duration <= 0 {
		duration = r.ttl
	}
	ok, err := r.client.Expire(ctx, r.key(refreshToken), duration).Result()
	if err != nil {
		return domain.WrapError(domain.ErrCodeTransport, "extend session", err)
	}
	if !ok {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *sessionRegistry) key(refreshToken string) string {
	return fmt.Sprintf("%s%s", r.prefix, refreshToken)
}
