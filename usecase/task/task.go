package task

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// Aggregation outcomes reported to the Recorder.
const (
	OutcomeOK       = "ok"
	OutcomeDegraded = "degraded"
	OutcomeFailed   = "failed"
)

// Recorder receives one outcome per aggregation.
type Recorder interface {
	RecordAggregation(outcome string)
}

type UseCase struct {
	tasks    repository.TaskRepository
	profiles repository.ProfileRepository
	recorder Recorder
	logger   *zap.Logger
}

func New(tasks repository.TaskRepository, profiles repository.ProfileRepository, recorder Recorder, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:    tasks,
		profiles: profiles,
		recorder: recorder,
		logger:   logger,
	}
}

// List fetches the tasks matching filter, newest first, and joins the
// assignee and creator profiles onto them with a single batched lookup.
// A personal filter without a current profile lists everything.
func (uc *UseCase) List(ctx context.Context, filter domain.TaskFilter, currentProfileID *int64) ([]domain.TaskWithProfiles, error) {
	rows, err := uc.tasks.List(ctx, buildQuery(filter, currentProfileID))
	if err != nil {
		uc.logger.Error("error fetching tasks", zap.String("filter", string(filter)), zap.Error(err))
		uc.record(OutcomeFailed)
		return nil, err
	}
	if len(rows) == 0 {
		uc.record(OutcomeOK)
		return []domain.TaskWithProfiles{}, nil
	}

	outcome := OutcomeOK
	directory := map[int64]domain.ProfileRef{}
	if ids := referencedProfileIDs(rows); len(ids) > 0 {
		refs, err := uc.profiles.ListByIDs(ctx, ids)
		if err != nil {
			uc.logger.Warn("profile lookup failed, listing tasks without profiles", zap.Int("profiles", len(ids)), zap.Error(err))
			outcome = OutcomeDegraded
		}
		for _, ref := range refs {
			directory[ref.ID] = ref
		}
	}

	out := make([]domain.TaskWithProfiles, len(rows))
	for i, t := range rows {
		out[i] = domain.TaskWithProfiles{
			Task:             t,
			AssignedProfile:  lookup(directory, t.AssignToProfileID),
			CreatedByProfile: lookup(directory, t.CreatedByProfileID),
		}
	}
	uc.record(outcome)
	return out, nil
}

// Profiles lists every profile ordered by username, for assignee pickers.
func (uc *UseCase) Profiles(ctx context.Context) ([]domain.Profile, error) {
	return uc.profiles.List(ctx)
}

// Create validates and stores a new task created by the current profile.
func (uc *UseCase) Create(ctx context.Context, input NewTask) (*domain.Task, error) {
	task, err := input.build()
	if err != nil {
		return nil, err
	}
	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		uc.logger.Error("error creating task", zap.Error(err))
		return nil, err
	}
	uc.logger.Info("task created", zap.Int64("task_id", created.ID), zap.Int64p("assign_to_profile_id", created.AssignToProfileID))
	return created, nil
}

// Assign hands the task over to another profile.
func (uc *UseCase) Assign(ctx context.Context, taskID, profileID int64) error {
	if taskID <= 0 || profileID <= 0 {
		return domain.NewError(domain.ErrCodeInvalid, "task and profile are required")
	}
	if err := uc.tasks.Assign(ctx, taskID, profileID); err != nil {
		uc.logger.Error("error assigning task", zap.Int64("task_id", taskID), zap.Error(err))
		return err
	}
	return nil
}

func (uc *UseCase) SetComplete(ctx context.Context, taskID int64, complete bool) error {
	if taskID <= 0 {
		return domain.NewError(domain.ErrCodeInvalid, "task is required")
	}
	return uc.tasks.SetComplete(ctx, taskID, complete)
}

func (uc *UseCase) record(outcome string) {
	if uc.recorder != nil {
		uc.recorder.RecordAggregation(outcome)
	}
}

func buildQuery(filter domain.TaskFilter, currentProfileID *int64) repository.TaskQuery {
	if currentProfileID == nil {
		return repository.TaskQuery{}
	}
	switch filter {
	case domain.FilterAssigned:
		return repository.TaskQuery{AssignToProfileID: *currentProfileID}
	case domain.FilterCreated:
		return repository.TaskQuery{CreatedByProfileID: *currentProfileID}
	default:
		return repository.TaskQuery{}
	}
}

// referencedProfileIDs returns the distinct non-nil profile ids, sorted so
// the lookup is deterministic.
func referencedProfileIDs(tasks []domain.Task) []int64 {
	seen := make(map[int64]struct{})
	for _, t := range tasks {
		if t.AssignToProfileID != nil {
			seen[*t.AssignToProfileID] = struct{}{}
		}
		if t.CreatedByProfileID != nil {
			seen[*t.CreatedByProfileID] = struct{}{}
		}
	}
	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func lookup(directory map[int64]domain.ProfileRef, id *int64) *domain.ProfileRef {
	if id == nil {
		return nil
	}
	ref, ok := directory[*id]
	if !ok {
		return nil
	}
	return &ref
}

// errorMessage is what a board shows for a failed listing.
func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return "Failed to fetch tasks"
	}
	return msg
}
