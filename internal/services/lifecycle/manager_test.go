package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManager_ShutdownReverseOrderOnce(t *testing.T) {
	m := New(time.Second, nil)
	var order []string
	m.Register("postgres", func(context.Context) error { order = append(order, "postgres"); return nil })
	m.Register("redis", func(context.Context) error { order = append(order, "redis"); return nil })
	m.Register("http", func(context.Context) error { order = append(order, "http"); return nil })
	m.Register("ignored", nil)

	assert.NoError(t, m.Shutdown(context.Background()))
	assert.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, []string{"http", "redis", "postgres"}, order)
}

func TestManager_ShutdownJoinsErrors(t *testing.T) {
	m := New(time.Second, nil)
	first := errors.New("first")
	second := errors.New("second")
	ran := false
	m.Register("a", func(context.Context) error { return first })
	m.Register("b", func(context.Context) error { ran = true; return nil })
	m.Register("c", func(context.Context) error { return second })

	err := m.Shutdown(context.Background())
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
	assert.True(t, ran)
}

func TestManager_ShutdownHasDeadline(t *testing.T) {
	m := New(50*time.Millisecond, nil)
	m.Register("slow", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		<-ctx.Done()
		return ctx.Err()
	})

	assert.ErrorIs(t, m.Shutdown(context.Background()), context.DeadlineExceeded)
}
