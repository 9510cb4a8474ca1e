// Package workflow is the approval state machine of period scores.
package workflow

import (
	"errors"
	"fmt"
	"strings"

	"calificaciones_app_go/models"
)

var (
	// ErrInvalidTransition is returned when the action is not allowed from the current state
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrForbidden is returned when the actor lacks the capability the action requires
	ErrForbidden = errors.New("forbidden")
	// ErrNoteRequired is returned when a return is requested without a note
	ErrNoteRequired = errors.New("a note is required to return a score")
)

// Action is a workflow transition request
type Action string

const (
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReturn  Action = "return"
)

// Rule describes the guard and effect of an action
type Rule struct {
	From       []models.ScoreState
	To         models.ScoreState
	Capability string
	NeedsNote  bool
}

var rules = map[Action]Rule{
	ActionSubmit: {
		From:       []models.ScoreState{models.StateDraft, models.StateReturned},
		To:         models.StateInReview,
		Capability: models.CapabilityEditor,
	},
	ActionApprove: {
		From:       []models.ScoreState{models.StateInReview},
		To:         models.StateApproved,
		Capability: models.CapabilityReviewer,
	},
	ActionReturn: {
		From:       []models.ScoreState{models.StateInReview},
		To:         models.StateReturned,
		Capability: models.CapabilityReviewer,
		NeedsNote:  true,
	},
}

// RuleFor returns the rule of action
func RuleFor(action Action) (Rule, bool) {
	r, ok := rules[action]
	return r, ok
}

// TransitionError names the current state and the states the action requires
type TransitionError struct {
	Action   Action
	Current  models.ScoreState
	Required []models.ScoreState
}

func (e *TransitionError) Error() string {
	required := make([]string, len(e.Required))
	for i, s := range e.Required {
		required[i] = string(s)
	}
	return fmt.Sprintf("cannot %s a score in state %q: requires %s", e.Action, e.Current, strings.Join(required, " or "))
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// CapabilityError names the capability the actor lacks
type CapabilityError struct {
	Action     Action
	Capability string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s requires the %s capability", e.Action, e.Capability)
}

func (e *CapabilityError) Unwrap() error {
	return ErrForbidden
}

// Actor is anyone able to trigger transitions
type Actor interface {
	HasCapability(capability string) bool
}

// Next validates action against the current state, the note and the actor's
// capabilities, in that order, and returns the target state.
func Next(current models.ScoreState, action Action, actor Actor, note string) (models.ScoreState, error) {
	rule, ok := rules[action]
	if !ok {
		return current, fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, action)
	}

	allowed := false
	for _, s := range rule.From {
		if s == current {
			allowed = true
			break
		}
	}
	if !allowed {
		return current, &TransitionError{Action: action, Current: current, Required: rule.From}
	}

	if rule.NeedsNote && strings.TrimSpace(note) == "" {
		return current, ErrNoteRequired
	}

	if actor == nil || !actor.HasCapability(rule.Capability) {
		return current, &CapabilityError{Action: action, Capability: rule.Capability}
	}

	return rule.To, nil
}

// AllowsMutation reports whether inputs of a score in state may change
func AllowsMutation(state models.ScoreState) bool {
	return state != models.StateApproved
}
