package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", Validation("bad type %q", "topic"), http.StatusBadRequest},
		{"unauthorized", Unauthorized("missing token"), http.StatusUnauthorized},
		{"forbidden", Forbidden("moderators only"), http.StatusForbidden},
		{"not found", NotFound("vote not found"), http.StatusNotFound},
		{"conflict", Conflict(errors.New("23505"), "vote already exists"), http.StatusConflict},
		{"internal", Internal(errors.New("conn reset"), "sum votes"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("cast vote: %w", NotFound("post not found")), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestErrorMatchesKindAndCause(t *testing.T) {
	cause := errors.New("duplicate key value violates unique constraint")
	err := Conflict(cause, "vote already exists")

	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "vote already exists: duplicate key value violates unique constraint", err.Error())
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "Invalid type. Must be 'post' or 'comment'.",
		PublicMessage(Validation("Invalid type. Must be 'post' or 'comment'.")))
	assert.Equal(t, "Vote not found",
		PublicMessage(fmt.Errorf("remove: %w", NotFound("Vote not found"))))
	assert.Equal(t, "Internal server error",
		PublicMessage(Internal(errors.New("password authentication failed"), "connect")))
	assert.Equal(t, "Internal server error", PublicMessage(errors.New("raw driver error")))
}
