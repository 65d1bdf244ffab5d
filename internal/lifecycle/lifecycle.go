// Package lifecycle holds the item status state machine.
//
// An item starts pending. An administrator approves it as lost or found, or
// rejects it. Approved items can later be resolved. Resolved and rejected are
// terminal.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/cbitosc/HTF25-Team-374/internal/model"
)

// ErrInvalidTransition is matched by every error Apply returns.
var ErrInvalidTransition = errors.New("invalid status transition")

// InvalidTransitionError describes a rejected transition.
type InvalidTransitionError struct {
	From model.Status
	To   model.Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

// Is makes errors.Is(err, ErrInvalidTransition) succeed.
func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// transitions lists outgoing edges in the order actions are offered.
var transitions = map[model.Status][]model.Status{
	model.StatusPending:  {model.StatusFound, model.StatusLost, model.StatusRejected},
	model.StatusLost:     {model.StatusResolved},
	model.StatusFound:    {model.StatusResolved},
	model.StatusResolved: {},
	model.StatusRejected: {},
}

// CanTransition reports whether an item in status current may move to requested.
func CanTransition(current, requested model.Status) bool {
	for _, to := range transitions[current] {
		if to == requested {
			return true
		}
	}
	return false
}

// Allowed returns the statuses reachable from current in one step.
// Unknown and terminal statuses have none.
func Allowed(current model.Status) []model.Status {
	next := transitions[current]
	if len(next) == 0 {
		return nil
	}
	out := make([]model.Status, len(next))
	copy(out, next)
	return out
}

// IsTerminal reports whether no transitions leave s.
func IsTerminal(s model.Status) bool {
	return s.Valid() && len(transitions[s]) == 0
}

// Apply returns a copy of item with its status set to requested.
// The caller persists the result; item itself is left untouched.
func Apply(item model.Item, requested model.Status) (model.Item, error) {
	if !CanTransition(item.Status, requested) {
		return item, &InvalidTransitionError{From: item.Status, To: requested}
	}
	item.Status = requested
	return item, nil
}
