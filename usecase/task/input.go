package task

import (
	"strconv"
	"strings"
	"time"

	"github.com/fastygo/taskboard/domain"
)

// DueDateLayout is the user-facing due date format.
const DueDateLayout = "MM/DD/YYYY"

// NewTask is the task creation form.
type NewTask struct {
	Title              string
	Description        string
	DueDate            string
	AssignToProfileID  int64
	CreatedByProfileID int64
}

func (n NewTask) build() (*domain.Task, error) {
	title := strings.TrimSpace(n.Title)
	if title == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "please enter a task title")
	}
	if n.CreatedByProfileID <= 0 {
		return nil, domain.NewError(domain.ErrCodeUnauthorized, "user not authenticated")
	}
	if n.AssignToProfileID <= 0 {
		return nil, domain.NewError(domain.ErrCodeInvalid, "please select a user to assign the task to")
	}

	task := &domain.Task{
		Title:              title,
		IsComplete:         false,
		AssignToProfileID:  &n.AssignToProfileID,
		CreatedByProfileID: &n.CreatedByProfileID,
	}
	if desc := strings.TrimSpace(n.Description); desc != "" {
		task.Description = &desc
	}
	if strings.TrimSpace(n.DueDate) != "" {
		due, ok := ParseDueDate(n.DueDate)
		if !ok {
			return nil, domain.NewError(domain.ErrCodeInvalid, "invalid date format, use "+DueDateLayout+" (e.g. 12/31/2024)")
		}
		task.DueDate = &due
	}
	return task, nil
}

// ParseDueDate parses a MM/DD/YYYY calendar date as UTC midnight. Dates that
// do not exist, like 02/30/2024, are rejected.
func ParseDueDate(value string) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(value), "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	month, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil || year < 1000 || year > 9999 {
		return time.Time{}, false
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || date.Month() != time.Month(month) || date.Day() != day {
		return time.Time{}, false
	}
	return date, true
}
