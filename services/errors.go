package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"calificaciones_app_go/services/calendar"
	"calificaciones_app_go/services/workflow"
)

var (
	ErrNotFound                  = errors.New("not found")
	ErrPeriodLocked              = errors.New("period score is approved and can no longer change")
	ErrValidation                = errors.New("validation failed")
	ErrInvalidCourtConfiguration = calendar.ErrInvalidCourtConfiguration
	ErrInvalidTransition         = workflow.ErrInvalidTransition
	ErrForbidden                 = workflow.ErrForbidden
)

// TransitionError names the current and required workflow states
type TransitionError = workflow.TransitionError

// ValidationError carries a message per invalid field
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// notFound translates gorm.ErrRecordNotFound into ErrNotFound naming what was missing
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}
