// Package profile provisions the directory profile behind an authenticated
// session. The directory's unique index on username is the only point of
// serialization between concurrent first logins.
package profile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/usecase/identity"
)

// ErrSuperseded is returned by Provision when a session for another identity
// (or a sign out) replaced the one being provisioned. Its result was not
// applied.
var ErrSuperseded = errors.New("provisioning superseded by a newer session")

// Provisioning outcomes reported to the Recorder.
const (
	OutcomeFound      = "found"
	OutcomeCreated    = "created"
	OutcomeRaceLost   = "race_lost"
	OutcomeSchema     = "schema_error"
	OutcomeFailed     = "failed"
	OutcomeSuperseded = "superseded"
)

// Recorder receives one outcome per provisioning attempt.
type Recorder interface {
	RecordProvision(outcome string)
}

// Snapshot is a consistent view of the provisioner.
type Snapshot struct {
	State    State
	Username string
	Profile  *domain.Profile
	Err      error
}

type UseCase struct {
	profiles repository.ProfileRepository
	recorder Recorder
	logger   *zap.Logger
	timeout  time.Duration

	mu         sync.RWMutex
	state      State
	username   string
	profile    *domain.Profile
	lastErr    error
	generation uint64

	inflight sync.WaitGroup
}

func New(profiles repository.ProfileRepository, recorder Recorder, logger *zap.Logger, timeout time.Duration) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &UseCase{
		profiles: profiles,
		recorder: recorder,
		logger:   logger,
		timeout:  timeout,
		state:    StateIdle,
	}
}

// Current returns the latest applied state.
func (uc *UseCase) Current() Snapshot {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return Snapshot{
		State:    uc.state,
		Username: uc.username,
		Profile:  uc.profile,
		Err:      uc.lastErr,
	}
}

// HandleSession is the session listener. A nil session resets the machine
// synchronously; otherwise provisioning runs in the background.
func (uc *UseCase) HandleSession(session *domain.Session) {
	if session == nil {
		uc.Reset()
		return
	}

	gen, username := uc.begin(*session)
	uc.inflight.Add(1)
	go func() {
		defer uc.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), uc.timeout)
		defer cancel()
		_, _ = uc.run(ctx, gen, username)
	}()
}

// Provision runs the whole resolution for session and returns its result.
// Concurrent calls for the same identity all report the converged profile.
// The result is dropped with ErrSuperseded when another identity or a sign
// out replaced the session in the meantime.
func (uc *UseCase) Provision(ctx context.Context, session domain.Session) (*domain.Profile, error) {
	gen, username := uc.begin(session)
	return uc.run(ctx, gen, username)
}

// Reset moves the machine to Idle and invalidates every in-flight attempt.
func (uc *UseCase) Reset() {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.generation++
	uc.state = StateIdle
	uc.username = ""
	uc.profile = nil
	uc.lastErr = nil
}

// Wait blocks until background provisioning started by HandleSession is done.
func (uc *UseCase) Wait() {
	uc.inflight.Wait()
}

// RegisterPushToken stores the device push token on the ready profile.
func (uc *UseCase) RegisterPushToken(ctx context.Context, token string) error {
	snap := uc.Current()
	if snap.State != StateReady || snap.Profile == nil {
		return domain.ErrNoProfile
	}

	var value *string
	if token != "" {
		value = &token
	}
	if err := uc.profiles.UpdatePushToken(ctx, snap.Profile.ID, value); err != nil {
		return err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.profile != nil && uc.profile.ID == snap.Profile.ID {
		updated := *uc.profile
		updated.ExpoPushToken = value
		uc.profile = &updated
	}
	return nil
}

// begin enters Resolving for session. The generation only moves when the
// identity changes, so a repeated session for the same username joins the
// attempts already in flight instead of superseding them.
func (uc *UseCase) begin(session domain.Session) (uint64, string) {
	username := identity.ResolveUsername(session)

	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.state == StateIdle || uc.username != username {
		uc.generation++
		uc.profile = nil
	}
	uc.state = StateResolving
	uc.lastErr = nil
	uc.username = username
	return uc.generation, username
}

func (uc *UseCase) run(ctx context.Context, gen uint64, username string) (*domain.Profile, error) {
	existing, err := uc.profiles.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return uc.settle(gen, StateReady, existing, nil, OutcomeFound)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
	default:
		uc.logger.Error("error fetching profile", zap.String("username", username), zap.Error(err))
		return uc.settle(gen, StateFailed, nil, err, OutcomeFailed)
	}

	if !uc.advance(gen, StateCreating) {
		uc.record(OutcomeSuperseded)
		return nil, ErrSuperseded
	}

	created, err := uc.profiles.Insert(ctx, repository.NewProfile{Username: username})
	switch {
	case err == nil:
		uc.logger.Info("profile created", zap.String("username", username), zap.Int64("profile_id", created.ID))
		return uc.settle(gen, StateReady, created, nil, OutcomeCreated)

	case domain.IsDomainError(err, domain.ErrCodeConflict):
		// Another client inserted the same username first. Its row is the one.
		uc.logger.Info("profile created concurrently, fetching existing", zap.String("username", username))
		winner, fetchErr := uc.profiles.GetByUsername(ctx, username)
		if fetchErr != nil {
			uc.logger.Error("error fetching profile after conflict", zap.String("username", username), zap.Error(fetchErr))
			return uc.settle(gen, StateFailed, nil, fetchErr, OutcomeFailed)
		}
		return uc.settle(gen, StateReady, winner, nil, OutcomeRaceLost)

	case domain.IsDomainError(err, domain.ErrCodeSchema):
		uc.logger.Error("database schema mismatch: profiles table does not match the expected columns, profile creation disabled until the schema is fixed",
			zap.String("username", username),
			zap.Error(err))
		return uc.settle(gen, StateFailed, nil, err, OutcomeSchema)

	default:
		uc.logger.Error("error creating profile", zap.String("username", username), zap.Error(err))
		return uc.settle(gen, StateFailed, nil, err, OutcomeFailed)
	}
}

// advance applies an intermediate transition if gen is still current. When a
// sibling attempt for the same identity already settled, the state is left
// alone and the caller carries on with its own attempt.
func (uc *UseCase) advance(gen uint64, to State) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if gen != uc.generation {
		return false
	}
	if uc.state == to || IsSettled(uc.state) {
		return true
	}
	if !CanTransition(uc.state, to) {
		uc.logger.Error("invalid profile state transition", zap.String("from", string(uc.state)), zap.String("to", string(to)))
		return false
	}
	uc.state = to
	return true
}

// settle applies a final result. Results from a superseded generation are
// dropped and reported as ErrSuperseded.
func (uc *UseCase) settle(gen uint64, to State, profile *domain.Profile, cause error, outcome string) (*domain.Profile, error) {
	uc.mu.Lock()
	if gen != uc.generation {
		uc.mu.Unlock()
		uc.logger.Debug("dropping stale provisioning result", zap.String("state", string(to)))
		uc.record(OutcomeSuperseded)
		return nil, ErrSuperseded
	}
	if IsSettled(uc.state) {
		// First settlement of a generation wins; later siblings only report.
		uc.mu.Unlock()
		uc.record(outcome)
		if cause != nil {
			return nil, cause
		}
		return profile, nil
	}
	if !CanTransition(uc.state, to) {
		from := uc.state
		uc.mu.Unlock()
		return nil, fmt.Errorf("invalid profile state transition %s -> %s", from, to)
	}
	uc.state = to
	uc.profile = profile
	uc.lastErr = cause
	uc.mu.Unlock()

	uc.record(outcome)
	if cause != nil {
		return nil, cause
	}
	return profile, nil
}

func (uc *UseCase) record(outcome string) {
	if uc.recorder != nil {
		uc.recorder.RecordProvision(outcome)
	}
}
