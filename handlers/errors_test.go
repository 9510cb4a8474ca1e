package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"calificaciones_app_go/models"
	"calificaciones_app_go/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"not found", fmt.Errorf("office score: %w", services.ErrNotFound), http.StatusNotFound},
		{"validation", services.NewValidationError("days", "must be 0 or greater"), http.StatusUnprocessableEntity},
		{"locked", services.ErrPeriodLocked, http.StatusLocked},
		{"transition", &services.TransitionError{Current: models.StateApproved, Required: []models.ScoreState{models.StateInReview}}, http.StatusConflict},
		{"forbidden", services.ErrForbidden, http.StatusForbidden},
		{"court configuration", services.ErrInvalidCourtConfiguration, http.StatusBadRequest},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c, rec := setupEcho(http.MethodGet, "/", nil)
			require.NoError(t, respondError(c, tt.err))
			assert.Equal(t, tt.expected, rec.Code)
		})
	}
}

func TestRespondErrorValidationFields(t *testing.T) {
	_, c, rec := setupEcho(http.MethodGet, "/", nil)
	require.NoError(t, respondError(c, services.NewValidationError("note", "is required")))

	var body struct {
		Fields map[string]string `json:"fields"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "is required", body.Fields["note"])
}
