package tasks

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/todoapi/handler"
	"github.com/dmitrymomot/todoapi/pkg/jwt"
)

// TaskService is the part of Service the handlers use.
type TaskService interface {
	Create(ctx context.Context, userID string, in CreateInput) (*Task, error)
	List(ctx context.Context, userID string, filter ListFilter) ([]Task, error)
	Get(ctx context.Context, userID, id string) (*Task, error)
	Update(ctx context.Context, userID, id string, in UpdateInput) (*Task, error)
	Delete(ctx context.Context, userID, id string) error
}

type listRequest struct {
	Completed *bool `query:"completed"`
}

type createRequest struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Completed   bool   `json:"completed" form:"completed"`
	DueDate     string `json:"dueDate" form:"dueDate"`
}

type updateRequest struct {
	Title       *string `json:"title" form:"title"`
	Description *string `json:"description" form:"description"`
	Completed   *bool   `json:"completed" form:"completed"`
	DueDate     *string `json:"dueDate" form:"dueDate"`
}

type handlers struct {
	svc TaskService
}

func currentUser(ctx handler.Context) (string, bool) {
	return jwt.UserIDFromContext(ctx)
}

func (h *handlers) list(ctx handler.Context, req listRequest) handler.Response {
	userID, ok := currentUser(ctx)
	if !ok {
		return handler.Error(handler.ErrUnauthorized)
	}
	list, err := h.svc.List(ctx, userID, ListFilter{Completed: req.Completed})
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(list)
}

func (h *handlers) create(ctx handler.Context, req createRequest) handler.Response {
	userID, ok := currentUser(ctx)
	if !ok {
		return handler.Error(handler.ErrUnauthorized)
	}
	task, err := h.svc.Create(ctx, userID, CreateInput(req))
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(task, handler.WithJSONStatus(http.StatusCreated))
}

func (h *handlers) get(ctx handler.Context, _ struct{}) handler.Response {
	userID, ok := currentUser(ctx)
	if !ok {
		return handler.Error(handler.ErrUnauthorized)
	}
	task, err := h.svc.Get(ctx, userID, chi.URLParam(ctx.Request(), "id"))
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(task)
}

func (h *handlers) update(ctx handler.Context, req updateRequest) handler.Response {
	userID, ok := currentUser(ctx)
	if !ok {
		return handler.Error(handler.ErrUnauthorized)
	}
	task, err := h.svc.Update(ctx, userID, chi.URLParam(ctx.Request(), "id"), UpdateInput(req))
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(task)
}

func (h *handlers) delete(ctx handler.Context, _ struct{}) handler.Response {
	userID, ok := currentUser(ctx)
	if !ok {
		return handler.Error(handler.ErrUnauthorized)
	}
	if err := h.svc.Delete(ctx, userID, chi.URLParam(ctx.Request(), "id")); err != nil {
		return handler.Error(err)
	}
	return handler.Message("Task deleted")
}
