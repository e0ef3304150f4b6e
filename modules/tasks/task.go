package tasks

import (
	"context"
	"errors"
	"time"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrNoOwner      = errors.New("task has no owner")
)

// Task is a to-do item owned by a single user.
type Task struct {
	ID             string     `json:"_id"`
	UserID         string     `json:"userId"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Completed      bool       `json:"completed"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
	ReminderSentAt *time.Time `json:"-"`

	// ReminderAttempts counts failed deliveries for the current due date.
	ReminderAttempts int        `json:"-"`
	ReminderRetryAt  *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TaskUpdate is a partial update. Nil fields are unchanged; ClearDueDate
// removes the due date. Changing the due date re-arms the reminder.
type TaskUpdate struct {
	Title        *string
	Description  *string
	Completed    *bool
	DueDate      *time.Time
	ClearDueDate bool
}

// Empty reports whether the update changes nothing.
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Completed == nil &&
		u.DueDate == nil && !u.ClearDueDate
}

// ListFilter narrows ListTasks. A nil Completed lists everything.
type ListFilter struct {
	Completed *bool
}

// Storage persists tasks. Lookups by ID are always scoped to userID and
// report foreign or missing tasks as ErrTaskNotFound.
type Storage interface {
	CreateTask(ctx context.Context, task *Task) error
	GetTask(ctx context.Context, userID, id string) (*Task, error)
	ListTasks(ctx context.Context, userID string, filter ListFilter) ([]Task, error)
	UpdateTask(ctx context.Context, userID, id string, upd TaskUpdate) (*Task, error)
	DeleteTask(ctx context.Context, userID, id string) error

	// DueTasks returns incomplete tasks due in [from, until] that have no
	// reminder recorded, at most limit of them. Tasks whose retry time is
	// after from are left out.
	DueTasks(ctx context.Context, from, until time.Time, limit int) ([]Task, error)
	MarkReminderSent(ctx context.Context, id string, at time.Time) error
	// MarkReminderFailed counts a failed delivery and defers the task until retryAt.
	MarkReminderFailed(ctx context.Context, id string, retryAt time.Time) error
}
