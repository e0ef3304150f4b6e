package tasks

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/todoapi/handler"
)

var taskNotFound = handler.NewHTTPError(http.StatusNotFound, "task_not_found", "Task not found")

// MapError translates task errors for handler.Classify.
func MapError(err error) (handler.HTTPError, bool) {
	switch {
	case errors.Is(err, ErrTaskNotFound):
		return taskNotFound, true
	case errors.Is(err, ErrNoOwner):
		return handler.ErrUnauthorized, true
	}
	return handler.HTTPError{}, false
}
