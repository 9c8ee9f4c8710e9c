package redis

import (
	"context"
	"encoding/json"
	"sync"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type sessionNotifier struct {
	client  *redislib.Client
	channel string
	logger  *zap.Logger
}

// NewSessionNotifier publishes session changes on a per-device pub/sub channel.
func NewSessionNotifier(client *redislib.Client, deviceID string, logger *zap.Logger) repository.SessionNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &sessionNotifier{
		client:  client,
		channel: "session-changes:" + deviceID,
		logger:  logger,
	}
}

// Publish sends the new session; a nil session announces a sign out.
func (n *sessionNotifier) Publish(ctx context.Context, session *domain.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return domain.WrapError(domain.ErrCodeTransport, "publish session change", err)
	}
	return nil
}

func (n *sessionNotifier) Subscribe(ctx context.Context, handler repository.SessionChangeHandler) (repository.Subscription, error) {
	if handler == nil {
		return nil, domain.ErrInvalidPayload
	}

	pubsub := n.client.Subscribe(ctx, n.channel)
	// Wait for the subscribe confirmation so no publish is missed after return.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, domain.WrapError(domain.ErrCodeTransport, "subscribe to session changes", err)
	}

	sub := &subscription{pubsub: pubsub, done: make(chan struct{})}
	go sub.dispatch(handler, n.logger)
	return sub, nil
}

type subscription struct {
	pubsub *redislib.PubSub
	once   sync.Once
	done   chan struct{}
	err    error
}

func (s *subscription) dispatch(handler repository.SessionChangeHandler, logger *zap.Logger) {
	defer close(s.done)
	for msg := range s.pubsub.Channel() {
		var session *domain.Session
		if err := json.Unmarshal([]byte(msg.Payload), &session); err != nil {
			logger.Warn("dropping malformed session change", zap.Error(err))
			continue
		}
		handler(session)
	}
}

// Close unsubscribes and waits for the dispatch goroutine to exit.
func (s *subscription) Close() error {
	s.once.Do(func() {
		s.err = s.pubsub.Close()
		<-s.done
	})
	return s.err
}
