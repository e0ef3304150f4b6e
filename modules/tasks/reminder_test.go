package tasks_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/todoapi/modules/tasks"
	"github.com/dmitrymomot/todoapi/pkg/auth"
	"github.com/dmitrymomot/todoapi/pkg/email"
)

type countingRecorder struct {
	mu     sync.Mutex
	ok     int
	failed int
}

func (c *countingRecorder) RecordReminder(success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if success {
		c.ok++
	} else {
		c.failed++
	}
}

var reminderCfg = tasks.ReminderConfig{Interval: time.Hour, Lookahead: 24 * time.Hour, BatchSize: 10}

func TestNewReminder_Validation(t *testing.T) {
	t.Parallel()

	_, err := tasks.NewReminder(nil, &MockUsers{}, &MockSender{}, reminderCfg)
	assert.ErrorIs(t, err, tasks.ErrInvalidReminderConfig)

	_, err = tasks.NewReminder(&MockStorage{}, &MockUsers{}, &MockSender{}, tasks.ReminderConfig{})
	assert.ErrorIs(t, err, tasks.ErrInvalidReminderConfig)
}

func TestReminder_SendDue(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	due := now.Add(3 * time.Hour)
	clock := func() time.Time { return now }

	t.Run("sends and marks", func(t *testing.T) {
		t.Parallel()
		storage, users, sender := &MockStorage{}, &MockUsers{}, &MockSender{}
		rec := &countingRecorder{}

		storage.On("DueTasks", mock.Anything, now, now.Add(24*time.Hour), 10).Return([]tasks.Task{
			{ID: "t1", UserID: "u1", Title: "Pay rent", DueDate: &due},
		}, nil)
		users.On("GetUser", mock.Anything, "u1").Return(&auth.User{ID: "u1", Email: "ann@example.com", Name: "Ann"}, nil)
		sender.On("SendEmail", mock.Anything, mock.MatchedBy(func(p email.SendEmailParams) bool {
			return p.SendTo == "ann@example.com" &&
				p.Tag == "task-reminder" &&
				p.Validate() == nil &&
				strings.Contains(p.BodyText, "Pay rent") && strings.Contains(p.BodyHTML, "<strong>Pay rent</strong>")
		})).Return(nil)
		storage.On("MarkReminderSent", mock.Anything, "t1", now).Return(nil)

		r, err := tasks.NewReminder(storage, users, sender, reminderCfg,
			tasks.WithReminderClock(clock), tasks.WithReminderRecorder(rec))
		require.NoError(t, err)

		sent, err := r.SendDue(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		assert.Equal(t, 1, rec.ok)
		storage.AssertExpectations(t)
		sender.AssertExpectations(t)
	})

	t.Run("send failure defers the task", func(t *testing.T) {
		t.Parallel()
		storage, users, sender := &MockStorage{}, &MockUsers{}, &MockSender{}
		rec := &countingRecorder{}

		storage.On("DueTasks", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]tasks.Task{
			{ID: "t1", UserID: "u1", Title: "A", DueDate: &due},
			{ID: "t2", UserID: "u1", Title: "B", DueDate: &due},
		}, nil)
		users.On("GetUser", mock.Anything, "u1").Return(&auth.User{ID: "u1", Email: "ann@example.com"}, nil)
		sender.On("SendEmail", mock.Anything, mock.MatchedBy(func(p email.SendEmailParams) bool {
			return strings.Contains(p.BodyText, `"A"`)
		})).Return(errors.New("smtp down"))
		sender.On("SendEmail", mock.Anything, mock.MatchedBy(func(p email.SendEmailParams) bool {
			return strings.Contains(p.BodyText, `"B"`)
		})).Return(nil)
		storage.On("MarkReminderSent", mock.Anything, "t2", now).Return(nil)
		storage.On("MarkReminderFailed", mock.Anything, "t1", now.Add(time.Hour)).Return(nil)

		r, err := tasks.NewReminder(storage, users, sender, reminderCfg,
			tasks.WithReminderClock(clock), tasks.WithReminderRecorder(rec))
		require.NoError(t, err)

		sent, err := r.SendDue(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		assert.Equal(t, 1, rec.failed)
		storage.AssertNotCalled(t, "MarkReminderSent", mock.Anything, "t1", mock.Anything)
		storage.AssertExpectations(t)
	})

	t.Run("retry delay doubles and is capped", func(t *testing.T) {
		t.Parallel()
		storage, users, sender := &MockStorage{}, &MockUsers{}, &MockSender{}

		storage.On("DueTasks", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]tasks.Task{
			{ID: "t1", UserID: "u1", Title: "A", DueDate: &due, ReminderAttempts: 2},
			{ID: "t2", UserID: "u1", Title: "B", DueDate: &due, ReminderAttempts: 8},
		}, nil)
		users.On("GetUser", mock.Anything, "u1").Return(&auth.User{ID: "u1", Email: "ann@example.com"}, nil)
		sender.On("SendEmail", mock.Anything, mock.Anything).Return(errors.New("rejected"))
		storage.On("MarkReminderFailed", mock.Anything, "t1", now.Add(4*time.Hour)).Return(nil)
		storage.On("MarkReminderFailed", mock.Anything, "t2", now.Add(24*time.Hour)).Return(nil)

		cfg := reminderCfg
		cfg.MaxAttempts = 20
		r, err := tasks.NewReminder(storage, users, sender, cfg, tasks.WithReminderClock(clock))
		require.NoError(t, err)

		sent, err := r.SendDue(context.Background())
		require.NoError(t, err)
		assert.Zero(t, sent)
		storage.AssertExpectations(t)
	})

	t.Run("exhausted attempts are abandoned", func(t *testing.T) {
		t.Parallel()
		storage, users, sender := &MockStorage{}, &MockUsers{}, &MockSender{}
		rec := &countingRecorder{}

		storage.On("DueTasks", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]tasks.Task{
			{ID: "t1", UserID: "u1", Title: "A", DueDate: &due, ReminderAttempts: 4},
		}, nil)
		users.On("GetUser", mock.Anything, "u1").Return(&auth.User{ID: "u1", Email: "bounce@example.com"}, nil)
		sender.On("SendEmail", mock.Anything, mock.Anything).Return(errors.New("inactive recipient"))
		storage.On("MarkReminderSent", mock.Anything, "t1", now).Return(nil)

		cfg := reminderCfg
		cfg.MaxAttempts = 5
		r, err := tasks.NewReminder(storage, users, sender, cfg,
			tasks.WithReminderClock(clock), tasks.WithReminderRecorder(rec))
		require.NoError(t, err)

		sent, err := r.SendDue(context.Background())
		require.NoError(t, err)
		assert.Zero(t, sent)
		assert.Equal(t, 1, rec.failed)
		storage.AssertNotCalled(t, "MarkReminderFailed", mock.Anything, mock.Anything, mock.Anything)
		storage.AssertExpectations(t)
	})

	t.Run("deleted owner is skipped once", func(t *testing.T) {
		t.Parallel()
		storage, users, sender := &MockStorage{}, &MockUsers{}, &MockSender{}

		storage.On("DueTasks", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]tasks.Task{
			{ID: "t1", UserID: "gone", Title: "A", DueDate: &due},
		}, nil)
		users.On("GetUser", mock.Anything, "gone").Return(nil, auth.ErrUserNotFound)
		storage.On("MarkReminderSent", mock.Anything, "t1", now).Return(nil)

		r, err := tasks.NewReminder(storage, users, sender, reminderCfg, tasks.WithReminderClock(clock))
		require.NoError(t, err)

		sent, err := r.SendDue(context.Background())
		require.NoError(t, err)
		assert.Zero(t, sent)
		sender.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
		storage.AssertExpectations(t)
	})

	t.Run("storage error", func(t *testing.T) {
		t.Parallel()
		storage := &MockStorage{}
		storage.On("DueTasks", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

		r, err := tasks.NewReminder(storage, &MockUsers{}, &MockSender{}, reminderCfg)
		require.NoError(t, err)

		_, err = r.SendDue(context.Background())
		assert.Error(t, err)
	})
}

func TestReminder_RunStopsWithContext(t *testing.T) {
	t.Parallel()

	storage := &MockStorage{}
	storage.On("DueTasks", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]tasks.Task{}, nil)

	cfg := reminderCfg
	cfg.Interval = 10 * time.Millisecond
	r, err := tasks.NewReminder(storage, &MockUsers{}, &MockSender{}, cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("reminder did not stop")
	}
	assert.GreaterOrEqual(t, len(storage.Calls), 2)
}
