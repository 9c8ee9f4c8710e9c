// Package account holds the process-wide auth state: the tracked session and
// the profile provisioned for it.
package account

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/usecase/profile"
	"github.com/fastygo/taskboard/usecase/session"
)

// Snapshot is what consumers of the auth state see.
type Snapshot struct {
	Session    *domain.Session `json:"session"`
	IsLoading  bool            `json:"is_loading"`
	Profile    *domain.Profile `json:"profile"`
	IsLoggedIn bool            `json:"is_logged_in"`
}

// Context wires the session tracker into the profile provisioner and exposes
// their combined state.
type Context struct {
	tracker     *session.Tracker
	provisioner *profile.UseCase
	logger      *zap.Logger
}

// New connects tracker changes to the provisioner. Call Start to begin
// tracking and Close on shutdown.
func New(tracker *session.Tracker, provisioner *profile.UseCase, logger *zap.Logger) *Context {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Context{
		tracker:     tracker,
		provisioner: provisioner,
		logger:      logger,
	}
	tracker.OnChange(provisioner.HandleSession)
	return c
}

func (c *Context) Start(ctx context.Context) error {
	if err := c.tracker.Start(ctx); err != nil {
		return err
	}
	_, status := c.tracker.Current()
	c.logger.Info("auth state initialized", zap.String("status", status.String()))
	return nil
}

// Close releases the session subscription and waits for provisioning that
// is already running.
func (c *Context) Close() error {
	err := c.tracker.Close()
	c.provisioner.Wait()
	return err
}

// Snapshot returns the current auth state. It is loading while the initial
// session fetch or a profile resolution is in flight.
func (c *Context) Snapshot() Snapshot {
	current, status := c.tracker.Current()
	prov := c.provisioner.Current()

	snap := Snapshot{
		Session:    current,
		IsLoggedIn: current != nil,
		IsLoading:  status == session.StatusUnknown || !profile.IsSettled(prov.State),
	}
	if current != nil && prov.State == profile.StateReady {
		snap.Profile = prov.Profile
	}
	return snap
}

// ProfileID returns the id of the ready profile, nil when there is none.
func (c *Context) ProfileID() *int64 {
	p := c.Snapshot().Profile
	if p == nil {
		return nil
	}
	id := p.ID
	return &id
}

// RequireProfile returns the ready profile or domain.ErrNoProfile.
func (c *Context) RequireProfile() (*domain.Profile, error) {
	snap := c.Snapshot()
	if !snap.IsLoggedIn {
		return nil, domain.ErrUnauthorized
	}
	if snap.Profile == nil {
		return nil, domain.ErrNoProfile
	}
	return snap.Profile, nil
}

// RegisterPushToken stores the device push token on the current profile.
func (c *Context) RegisterPushToken(ctx context.Context, token string) error {
	return c.provisioner.RegisterPushToken(ctx, token)
}
