package domain

import "time"

// Task is an assignable work item owned by the directory.
type Task struct {
	ID                 int64      `json:"id"`
	Title              string     `json:"title"`
	Description        *string    `json:"description,omitempty"`
	DueDate            *time.Time `json:"due_date"`
	IsComplete         bool       `json:"is_complete"`
	CreatedAt          time.Time  `json:"created_at"`
	AssignToProfileID  *int64     `json:"assign_to_profile_id"`
	CreatedByProfileID *int64     `json:"created_by_profile_id"`
}

// TaskWithProfiles is a read model: a task with its assignee and creator
// resolved for display. Nil references mean absent or unresolved.
type TaskWithProfiles struct {
	Task
	AssignedProfile  *ProfileRef `json:"assign_to_profile"`
	CreatedByProfile *ProfileRef `json:"created_by_profile"`
}

// TaskFilter selects which tasks a listing returns.
type TaskFilter string

const (
	FilterAll      TaskFilter = "all"
	FilterAssigned TaskFilter = "assigned"
	FilterCreated  TaskFilter = "created"
)

// ParseTaskFilter maps a query value onto a filter, defaulting to all.
func ParseTaskFilter(value string) (TaskFilter, error) {
	switch TaskFilter(value) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterAssigned, FilterCreated:
		return TaskFilter(value), nil
	default:
		return "", NewError(ErrCodeInvalid, "unknown task filter "+value)
	}
}
