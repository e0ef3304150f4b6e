package tasks_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/todoapi/modules/tasks"
	"github.com/dmitrymomot/todoapi/pkg/auth"
	"github.com/dmitrymomot/todoapi/pkg/email"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) CreateTask(ctx context.Context, task *tasks.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockStorage) GetTask(ctx context.Context, userID, id string) (*tasks.Task, error) {
	args := m.Called(ctx, userID, id)
	if t := args.Get(0); t != nil {
		return t.(*tasks.Task), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) ListTasks(ctx context.Context, userID string, f tasks.ListFilter) ([]tasks.Task, error) {
	args := m.Called(ctx, userID, f)
	if l := args.Get(0); l != nil {
		return l.([]tasks.Task), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) UpdateTask(ctx context.Context, userID, id string, upd tasks.TaskUpdate) (*tasks.Task, error) {
	args := m.Called(ctx, userID, id, upd)
	if t := args.Get(0); t != nil {
		return t.(*tasks.Task), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) DeleteTask(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockStorage) DueTasks(ctx context.Context, from, until time.Time, limit int) ([]tasks.Task, error) {
	args := m.Called(ctx, from, until, limit)
	if l := args.Get(0); l != nil {
		return l.([]tasks.Task), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) MarkReminderSent(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockStorage) MarkReminderFailed(ctx context.Context, id string, retryAt time.Time) error {
	args := m.Called(ctx, id, retryAt)
	return args.Error(0)
}

type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) GetUser(ctx context.Context, userID string) (*auth.User, error) {
	args := m.Called(ctx, userID)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}
