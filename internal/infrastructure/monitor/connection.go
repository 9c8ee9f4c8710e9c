// Package monitor probes the service's dependencies on a schedule and keeps
// the latest result for the health endpoint.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Probe checks one dependency. Check must honour ctx.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// Recorder receives every probe result.
type Recorder interface {
	RecordProbe(dependency string, healthy bool)
}

type Monitor struct {
	probes   []Probe
	recorder Recorder
	timeout  time.Duration
	logger   *zap.Logger
	cron     *cron.Cron

	mu     sync.RWMutex
	status Status
}

// New schedules the probes every interval. Call Start to run them.
func New(probes []Probe, recorder Recorder, interval time.Duration, logger *zap.Logger) (*Monitor, error) {
	if interval < time.Second {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Monitor{
		probes:   probes,
		recorder: recorder,
		timeout:  interval / 2,
		logger:   logger,
		cron:     cron.New(cron.WithSeconds()),
		status:   Status{Dependencies: map[string]Dependency{}},
	}
	if m.timeout > 5*time.Second {
		m.timeout = 5 * time.Second
	}

	schedule := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	if _, err := m.cron.AddFunc(schedule, func() { m.Refresh(context.Background()) }); err != nil {
		return nil, err
	}
	return m, nil
}

// Start runs the probes once and then on schedule.
func (m *Monitor) Start(ctx context.Context) {
	m.Refresh(ctx)
	m.cron.Start()
}

// Stop waits for a running probe round to finish.
func (m *Monitor) Stop(ctx context.Context) error {
	done := m.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsOnline reports whether every dependency passed its last probe.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Healthy()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.clone()
}

// Refresh probes every dependency now.
func (m *Monitor) Refresh(ctx context.Context) {
	status := Status{
		Dependencies: make(map[string]Dependency, len(m.probes)),
		LastCheck:    time.Now(),
	}
	for _, p := range m.probes {
		dep := m.check(ctx, p)
		status.Dependencies[p.Name] = dep
		if m.recorder != nil {
			m.recorder.RecordProbe(p.Name, dep.Healthy)
		}
	}

	m.mu.Lock()
	previous := m.status
	m.status = status
	m.mu.Unlock()

	for name, dep := range status.Dependencies {
		if before, ok := previous.Dependencies[name]; ok && before.Healthy == dep.Healthy {
			continue
		}
		if dep.Healthy {
			m.logger.Info("dependency healthy", zap.String("dependency", name))
		} else {
			m.logger.Warn("dependency unhealthy", zap.String("dependency", name), zap.String("error", dep.Error))
		}
	}
}

func (m *Monitor) check(ctx context.Context, p Probe) Dependency {
	if p.Check == nil {
		return Dependency{Error: "no check configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	started := time.Now()
	err := p.Check(ctx)
	dep := Dependency{Healthy: err == nil, Latency: time.Since(started)}
	if err != nil {
		dep.Error = err.Error()
	}
	return dep
}
