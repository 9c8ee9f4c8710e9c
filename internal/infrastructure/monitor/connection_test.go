package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probeRecorder struct {
	mu      sync.Mutex
	results map[string]bool
}

func (r *probeRecorder) RecordProbe(dependency string, healthy bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[dependency] = healthy
}

func TestMonitor_Refresh(t *testing.T) {
	redisDown := true
	rec := &probeRecorder{results: map[string]bool{}}
	m, err := New([]Probe{
		{Name: "postgres", Check: func(context.Context) error { return nil }},
		{Name: "redis", Check: func(context.Context) error {
			if redisDown {
				return errors.New("connection refused")
			}
			return nil
		}},
	}, rec, time.Minute, nil)
	require.NoError(t, err)

	assert.False(t, m.IsOnline())

	m.Refresh(context.Background())
	status := m.GetStatus()
	assert.False(t, m.IsOnline())
	assert.True(t, status.Dependencies["postgres"].Healthy)
	assert.Equal(t, "connection refused", status.Dependencies["redis"].Error)
	assert.Equal(t, map[string]bool{"postgres": true, "redis": false}, rec.results)

	redisDown = false
	m.Refresh(context.Background())
	assert.True(t, m.IsOnline())
	assert.True(t, rec.results["redis"])
}

func TestMonitor_ProbeTimeout(t *testing.T) {
	m, err := New([]Probe{
		{Name: "slow", Check: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}},
	}, nil, 2*time.Second, nil)
	require.NoError(t, err)

	m.Refresh(context.Background())
	dep := m.GetStatus().Dependencies["slow"]
	assert.False(t, dep.Healthy)
	assert.Equal(t, context.DeadlineExceeded.Error(), dep.Error)
}

func TestMonitor_StartStop(t *testing.T) {
	var calls int
	var mu sync.Mutex
	m, err := New([]Probe{{Name: "bolt", Check: func(context.Context) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil
	}}}, nil, time.Hour, nil)
	require.NoError(t, err)

	m.Start(context.Background())
	require.NoError(t, m.Stop(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
	assert.True(t, m.IsOnline())
}

func TestStatus_CloneIsIndependent(t *testing.T) {
	s := Status{Dependencies: map[string]Dependency{"redis": {Healthy: true}}}
	c := s.clone()
	c.Dependencies["redis"] = Dependency{}
	assert.True(t, s.Dependencies["redis"].Healthy)
}
