package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/todoapi/pkg/logger"
	"github.com/dmitrymomot/todoapi/pkg/sanitizer"
	"github.com/dmitrymomot/todoapi/pkg/validator"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 2000
)

// CreateInput is the payload for a new task. DueDate is RFC 3339 or empty.
type CreateInput struct {
	Title       string
	Description string
	Completed   bool
	DueDate     string
}

// UpdateInput is a partial update. An empty DueDate clears it.
type UpdateInput struct {
	Title       *string
	Description *string
	Completed   *bool
	DueDate     *string
}

type Service struct {
	storage Storage
	logger  *slog.Logger
}

func NewService(storage Storage, log *slog.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{storage: storage, logger: log}
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*Task, error) {
	if userID == "" {
		return nil, ErrNoOwner
	}

	in.Title = sanitizer.Text(in.Title)
	in.Description = sanitizer.Multiline(in.Description)

	if err := validator.Apply(
		validator.Required("title", in.Title),
		validator.MaxLen("title", in.Title, maxTitleLength),
		validator.MaxLen("description", in.Description, maxDescriptionLength),
		validator.When(in.DueDate != "", validator.RFC3339("dueDate", in.DueDate)),
	); err != nil {
		return nil, err
	}

	task := &Task{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed,
		DueDate:     parseDueDate(in.DueDate),
	}
	if err := s.storage.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.DebugContext(ctx, "task created",
		logger.UserID(userID),
		logger.TaskID(task.ID),
		logger.Component("tasks"),
	)
	return task, nil
}

func (s *Service) List(ctx context.Context, userID string, filter ListFilter) ([]Task, error) {
	list, err := s.storage.ListTasks(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	if list == nil {
		list = []Task{}
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (*Task, error) {
	task, err := s.storage.GetTask(ctx, userID, id)
	if err != nil {
		return nil, storageError("get", err)
	}
	return task, nil
}

func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (*Task, error) {
	var upd TaskUpdate
	var rules []validator.Rule

	if in.Title != nil {
		title := sanitizer.Text(*in.Title)
		upd.Title = &title
		rules = append(rules,
			validator.Required("title", title),
			validator.MaxLen("title", title, maxTitleLength),
		)
	}
	if in.Description != nil {
		desc := sanitizer.Multiline(*in.Description)
		upd.Description = &desc
		rules = append(rules, validator.MaxLen("description", desc, maxDescriptionLength))
	}
	if in.DueDate != nil && *in.DueDate != "" {
		rules = append(rules, validator.RFC3339("dueDate", *in.DueDate))
	}
	if err := validator.Apply(rules...); err != nil {
		return nil, err
	}

	upd.Completed = in.Completed
	if in.DueDate != nil {
		if due := parseDueDate(*in.DueDate); due != nil {
			upd.DueDate = due
		} else {
			upd.ClearDueDate = true
		}
	}

	if upd.Empty() {
		return s.Get(ctx, userID, id)
	}

	task, err := s.storage.UpdateTask(ctx, userID, id, upd)
	if err != nil {
		return nil, storageError("update", err)
	}
	return task, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.storage.DeleteTask(ctx, userID, id); err != nil {
		return storageError("delete", err)
	}
	s.logger.DebugContext(ctx, "task deleted",
		logger.UserID(userID),
		logger.TaskID(id),
		logger.Component("tasks"),
	)
	return nil
}

func storageError(op string, err error) error {
	if errors.Is(err, ErrTaskNotFound) {
		return ErrTaskNotFound
	}
	return fmt.Errorf("failed to %s task: %w", op, err)
}

// parseDueDate expects an already validated value.
func parseDueDate(v string) *time.Time {
	if v == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}
