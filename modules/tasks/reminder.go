package tasks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/dmitrymomot/todoapi/pkg/auth"
	"github.com/dmitrymomot/todoapi/pkg/email"
	"github.com/dmitrymomot/todoapi/pkg/logger"
)

// ReminderConfig controls the due-date reminder loop.
type ReminderConfig struct {
	Enabled     bool          `env:"REMINDER_ENABLED" envDefault:"true"`
	Interval    time.Duration `env:"REMINDER_INTERVAL" envDefault:"1h"`
	Lookahead   time.Duration `env:"REMINDER_LOOKAHEAD" envDefault:"24h"`
	BatchSize   int           `env:"REMINDER_BATCH_SIZE" envDefault:"100"`
	MaxAttempts int           `env:"REMINDER_MAX_ATTEMPTS" envDefault:"5"`
}

var ErrInvalidReminderConfig = errors.New("invalid reminder configuration")

// UserLookup resolves a task owner, e.g. auth.Service.
type UserLookup interface {
	GetUser(ctx context.Context, userID string) (*auth.User, error)
}

// ReminderRecorder counts sent and failed reminders.
type ReminderRecorder interface {
	RecordReminder(success bool)
}

type nopReminderRecorder struct{}

func (nopReminderRecorder) RecordReminder(bool) {}

// ReminderOption configures a Reminder.
type ReminderOption func(*Reminder)

func WithReminderLogger(l *slog.Logger) ReminderOption {
	return func(r *Reminder) {
		if l != nil {
			r.logger = l
		}
	}
}

func WithReminderRecorder(rec ReminderRecorder) ReminderOption {
	return func(r *Reminder) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// WithReminderClock overrides time.Now.
func WithReminderClock(now func() time.Time) ReminderOption {
	return func(r *Reminder) {
		if now != nil {
			r.now = now
		}
	}
}

// Reminder periodically emails owners of incomplete tasks that are due
// within the lookahead window. Each task is reminded at most once per due
// date. A failed send is retried after a backoff that doubles with every
// attempt, and abandoned after MaxAttempts.
type Reminder struct {
	storage  Storage
	users    UserLookup
	sender   email.EmailSender
	cfg      ReminderConfig
	logger   *slog.Logger
	recorder ReminderRecorder
	now      func() time.Time
}

func NewReminder(storage Storage, users UserLookup, sender email.EmailSender, cfg ReminderConfig, opts ...ReminderOption) (*Reminder, error) {
	if storage == nil || users == nil || sender == nil {
		return nil, fmt.Errorf("%w: storage, users and sender are required", ErrInvalidReminderConfig)
	}
	if cfg.Interval <= 0 || cfg.Lookahead <= 0 {
		return nil, fmt.Errorf("%w: interval and lookahead must be positive", ErrInvalidReminderConfig)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}

	r := &Reminder{
		storage:  storage,
		users:    users,
		sender:   sender,
		cfg:      cfg,
		logger:   logger.Discard(),
		recorder: nopReminderRecorder{},
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logger.Component("reminder"))
	return r, nil
}

// Run checks immediately and then on every interval until ctx is done.
func (r *Reminder) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reminder stopped")
			return nil
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Reminder) tick(ctx context.Context) {
	start := time.Now()
	sent, err := r.SendDue(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "reminder run failed", logger.Error(err))
		return
	}
	if sent > 0 {
		r.logger.InfoContext(ctx, "reminders sent",
			slog.Int("count", sent),
			logger.Duration(time.Since(start)),
		)
	}
}

// SendDue sends one batch of reminders and returns how many were delivered.
// Per-task failures are logged and do not abort the batch.
func (r *Reminder) SendDue(ctx context.Context) (int, error) {
	now := r.now()
	due, err := r.storage.DueTasks(ctx, now, now.Add(r.cfg.Lookahead), r.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to load due tasks: %w", err)
	}

	sent := 0
	for _, task := range due {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		ok, err := r.remind(ctx, task)
		if err != nil {
			if ctx.Err() != nil {
				return sent, ctx.Err()
			}
			r.recorder.RecordReminder(false)
			r.deferTask(ctx, task, err)
			continue
		}
		if ok {
			r.recorder.RecordReminder(true)
			sent++
		}
	}
	return sent, nil
}

// deferTask schedules a retry for a failed reminder, or gives up on it once
// the attempt budget is spent.
func (r *Reminder) deferTask(ctx context.Context, task Task, cause error) {
	attempt := task.ReminderAttempts + 1
	log := r.logger.With(
		logger.TaskID(task.ID),
		logger.UserID(task.UserID),
		slog.Int("attempt", attempt),
	)

	if attempt >= r.cfg.MaxAttempts {
		log.ErrorContext(ctx, "reminder abandoned", logger.Error(cause))
		if err := r.storage.MarkReminderSent(ctx, task.ID, r.now()); err != nil {
			log.ErrorContext(ctx, "failed to abandon reminder", logger.Error(err))
		}
		return
	}

	retryAt := r.now().Add(r.backoff(attempt))
	log.WarnContext(ctx, "reminder not sent",
		logger.Error(cause),
		slog.Time("retry_at", retryAt),
	)
	if err := r.storage.MarkReminderFailed(ctx, task.ID, retryAt); err != nil {
		log.ErrorContext(ctx, "failed to record reminder failure", logger.Error(err))
	}
}

// backoff is Interval after the first failure, doubling per attempt and
// capped at Lookahead.
func (r *Reminder) backoff(attempt int) time.Duration {
	d := r.cfg.Interval
	for i := 1; i < attempt && d < r.cfg.Lookahead; i++ {
		d *= 2
	}
	return min(d, r.cfg.Lookahead)
}

// remind reports false without error when the owner no longer exists; the
// task is marked so it is not picked up again.
func (r *Reminder) remind(ctx context.Context, task Task) (bool, error) {
	user, err := r.users.GetUser(ctx, task.UserID)
	if errors.Is(err, auth.ErrUserNotFound) {
		return false, r.storage.MarkReminderSent(ctx, task.ID, r.now())
	}
	if err != nil {
		return false, err
	}

	params, err := reminderEmail(user, task)
	if err != nil {
		return false, err
	}
	if err := r.sender.SendEmail(ctx, params); err != nil {
		return false, err
	}
	if err := r.storage.MarkReminderSent(ctx, task.ID, r.now()); err != nil {
		return false, fmt.Errorf("failed to mark reminder: %w", err)
	}
	return true, nil
}

var reminderHTML = template.Must(template.New("reminder").Parse(`<p>Hi {{.Name}},</p>
<p>Your task <strong>{{.Title}}</strong> is due on {{.Due}}.</p>
{{if .Description}}<p>{{.Description}}</p>
{{end}}`))

func reminderEmail(user *auth.User, task Task) (email.SendEmailParams, error) {
	name := user.Name
	if name == "" {
		name = user.Email
	}
	due := ""
	if task.DueDate != nil {
		due = task.DueDate.Format("Mon, 02 Jan 2006 15:04 MST")
	}

	var html bytes.Buffer
	err := reminderHTML.Execute(&html, map[string]string{
		"Name":        name,
		"Title":       task.Title,
		"Due":         due,
		"Description": task.Description,
	})
	if err != nil {
		return email.SendEmailParams{}, fmt.Errorf("failed to render reminder: %w", err)
	}

	return email.SendEmailParams{
		SendTo:   user.Email,
		Subject:  fmt.Sprintf("Reminder: %q is due soon", task.Title),
		BodyHTML: html.String(),
		BodyText: fmt.Sprintf("Hi %s,\n\nYour task %q is due on %s.\n", name, task.Title, due),
		Tag:      "task-reminder",
	}, nil
}
