package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redislib.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestSessionRegistry_SaveGetDelete(t *testing.T) {
	mr, client := newTestClient(t)
	registry := NewSessionRegistry(client, 10*time.Minute)
	ctx := context.Background()

	session := &domain.Session{
		AccessToken:  "access",
		RefreshToken: "refresh",
		User: domain.SessionUser{
			ID:       "4f1c2a9b-0000",
			Email:    "jane@example.com",
			Metadata: domain.UserMetadata{FullName: "Jane Doe"},
		},
	}
	require.NoError(t, registry.Save(ctx, session))
	assert.True(t, mr.Exists("session:refresh"))
	assert.Equal(t, 10*time.Minute, mr.TTL("session:refresh"))

	got, err := registry.Get(ctx, "refresh")
	require.NoError(t, err)
	assert.Equal(t, session.User, got.User)
	assert.Equal(t, "access", got.AccessToken)

	require.NoError(t, registry.Delete(ctx, "refresh"))
	_, err = registry.Get(ctx, "refresh")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionRegistry_SaveRejectsMissingToken(t *testing.T) {
	_, client := newTestClient(t)
	registry := NewSessionRegistry(client, time.Minute)

	assert.ErrorIs(t, registry.Save(context.Background(), &domain.Session{AccessToken: "a"}), domain.ErrInvalidPayload)
	assert.ErrorIs(t, registry.Save(context.Background(), nil), domain.ErrInvalidPayload)
}

func TestSessionRegistry_Extend(t *testing.T) {
	mr, client := newTestClient(t)
	registry := NewSessionRegistry(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, registry.Save(ctx, &domain.Session{RefreshToken: "r1"}))
	require.NoError(t, registry.Extend(ctx, "r1", 3600))
	assert.Equal(t, time.Hour, mr.TTL("session:r1"))

	err := registry.Extend(ctx, "missing", 3600)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionRegistry_TransportError(t *testing.T) {
	mr, client := newTestClient(t)
	registry := NewSessionRegistry(client, time.Minute)
	mr.Close()

	_, err := registry.Get(context.Background(), "r1")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeTransport))
}
