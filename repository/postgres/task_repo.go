package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) List(ctx context.Context, query repository.TaskQuery) ([]domain.Task, error) {
	const stmt = `
	SELECT id, title, description, due_date, is_complete, created_at, assign_to_profile_id, created_by_profile_id
	FROM tasks
	WHERE ($1::bigint = 0 OR assign_to_profile_id = $1)
	  AND ($2::bigint = 0 OR created_by_profile_id = $2)
	ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, stmt, query.AssignToProfileID, query.CreatedByProfileID)
	if err != nil {
		return nil, classify(err, domain.ErrTaskNotFound, "fetch tasks")
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, classify(err, domain.ErrTaskNotFound, "scan task")
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, domain.ErrTaskNotFound, "fetch tasks")
	}
	return tasks, nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}

	const stmt = `
	INSERT INTO tasks (title, description, due_date, is_complete, assign_to_profile_id, created_by_profile_id)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, created_at
	`

	if err := r.pool.QueryRow(ctx, stmt,
		task.Title,
		task.Description,
		task.DueDate,
		task.IsComplete,
		nullInt(task.AssignToProfileID),
		nullInt(task.CreatedByProfileID),
	).Scan(&task.ID, &task.CreatedAt); err != nil {
		return nil, classify(err, domain.ErrTaskNotFound, "insert task")
	}

	return task, nil
}

func (r *taskRepository) Assign(ctx context.Context, taskID, profileID int64) error {
	const stmt = `UPDATE tasks SET assign_to_profile_id = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, stmt, taskID, profileID)
	if err != nil {
		return classify(err, domain.ErrTaskNotFound, "assign task")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) SetComplete(ctx context.Context, taskID int64, complete bool) error {
	const stmt = `UPDATE tasks SET is_complete = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, stmt, taskID, complete)
	if err != nil {
		return classify(err, domain.ErrTaskNotFound, "update task completion")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.DueDate,
		&task.IsComplete,
		&task.CreatedAt,
		&task.AssignToProfileID,
		&task.CreatedByProfileID,
	); err != nil {
		return nil, err
	}
	return &task, nil
}
