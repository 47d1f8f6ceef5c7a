package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindsMapToStatus(t *testing.T) {
	cases := []struct {
		err    *AppError
		code   string
		status int
	}{
		{NotFound("job not found"), CodeNotFound, http.StatusNotFound},
		{InvalidState("job is not open"), CodeInvalidState, http.StatusConflict},
		{Unauthorized(""), CodeUnauthorized, http.StatusForbidden},
		{Unauthenticated(""), CodeUnauthenticated, http.StatusUnauthorized},
		{ValidationFailed("rating must be between 1 and 5"), CodeValidationFailed, http.StatusBadRequest},
		{Internal(errors.New("boom"), ""), CodeInternalError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, tc.err.Code)
		assert.Equal(t, tc.status, tc.err.HTTPStatus())
	}
}

func TestIsThroughWrapping(t *testing.T) {
	base := InvalidState("job is not in progress")
	wrapped := fmt.Errorf("complete job: %w", base)

	assert.True(t, Is(wrapped, CodeInvalidState))
	assert.False(t, Is(wrapped, CodeNotFound))
	assert.Equal(t, CodeInvalidState, CodeOf(wrapped))
	assert.Equal(t, CodeInternalError, CodeOf(errors.New("plain")))
	assert.Equal(t, "", CodeOf(nil))
}

func TestErrorString(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal(cause, "failed to load job")

	assert.Equal(t, "[INTERNAL_ERROR] failed to load job: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "[NOT_FOUND] user not found", NotFound("user not found").Error())
}

func TestWithDetail(t *testing.T) {
	err := ValidationFailed("invalid").WithDetail("rating", "max")
	assert.Equal(t, "max", err.Details["rating"])
}
