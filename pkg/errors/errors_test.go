package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	appErr := ErrInternal("").Wrap(cause)

	assert.ErrorIs(t, appErr, cause)
	assert.Contains(t, appErr.Error(), "INTERNAL_ERROR")
	assert.Contains(t, appErr.Error(), "connection refused")
}

func TestMapDomainError(t *testing.T) {
	t.Run("AppError passes through", func(t *testing.T) {
		original := ErrNotFound("task")
		assert.Same(t, original, MapDomainError(original))
	})

	t.Run("Wrapped AppError unwraps", func(t *testing.T) {
		var appErr *AppError = ErrConflict("busy")
		wrapped := MapDomainError(appErr)
		assert.Equal(t, CodeConflict, wrapped.Code)
	})

	t.Run("Plain error becomes 500", func(t *testing.T) {
		mapped := MapDomainError(errors.New("boom"))
		assert.Equal(t, CodeInternalError, mapped.Code)
		assert.Equal(t, http.StatusInternalServerError, mapped.HTTPStatus)
	})
}

func TestErrorPredicates(t *testing.T) {
	assert.True(t, IsNotFound(ErrNotFoundWithID("task", "TASK-001")))
	assert.False(t, IsNotFound(ErrValidation("bad input")))
	assert.True(t, IsValidation(ErrValidation("bad input")))
	assert.False(t, IsValidation(errors.New("plain")))
}

func TestErrorDetails(t *testing.T) {
	appErr := ErrValidation("invalid task").
		WithDetail("field", "taskType").
		WithDetail("value", "inspect")

	assert.Equal(t, "taskType", appErr.Details["field"])
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
}
