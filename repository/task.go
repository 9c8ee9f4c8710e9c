package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// TaskQuery is applied server-side; zero ids mean no predicate.
// Results are always ordered by created_at descending.
type TaskQuery struct {
	AssignToProfileID  int64
	CreatedByProfileID int64
}

type TaskRepository interface {
	List(ctx context.Context, query TaskQuery) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Assign(ctx context.Context, taskID, profileID int64) error
	SetComplete(ctx context.Context, taskID int64, complete bool) error
}
