package statemachine

import (
	"errors"
	"fmt"
)

// Predefined error types.
var (
	// ErrNoNextStateFound indicates that the (state, event) pair has no configured
	// transition, either because it was never enabled or because it was disabled.
	ErrNoNextStateFound = errors.New("no next state found")
	// ErrTransitionForbidden indicates that a transition exists but the guard of the
	// current state vetoed it.
	ErrTransitionForbidden = errors.New("transition forbidden")
	// ErrDriverStopped is returned by a Driver that no longer accepts events.
	ErrDriverStopped = errors.New("driver stopped")
)

// Reason classifies a rejected event.
type Reason int

const (
	// ReasonNoNextStateFound corresponds to ErrNoNextStateFound.
	ReasonNoNextStateFound Reason = iota
	// ReasonTransitionForbidden corresponds to ErrTransitionForbidden.
	ReasonTransitionForbidden
)

func (r Reason) String() string {
	switch r {
	case ReasonNoNextStateFound:
		return "no_next_state"
	case ReasonTransitionForbidden:
		return "forbidden"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// TransitionError wraps a rejection with the transition it concerned.
// To is empty when no next state was found.
type TransitionError struct {
	From  string
	To    string
	Event string
	Err   error
}

func (e *TransitionError) Error() string {
	if e.To == "" {
		return fmt.Sprintf("transition from %s on %s: %v", e.From, e.Event, e.Err)
	}

	return fmt.Sprintf("transition %s -> %s on %s: %v", e.From, e.To, e.Event, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// WrapTransitionError wraps an error with transition context.
func WrapTransitionError(from, to, event string, err error) error {
	if err == nil {
		return nil
	}

	return &TransitionError{
		From:  from,
		To:    to,
		Event: event,
		Err:   err,
	}
}

// ReasonOf reports why an event was rejected. It returns false for nil and for errors
// that did not come from event processing.
func ReasonOf(err error) (Reason, bool) {
	switch {
	case errors.Is(err, ErrNoNextStateFound):
		return ReasonNoNextStateFound, true
	case errors.Is(err, ErrTransitionForbidden):
		return ReasonTransitionForbidden, true
	default:
		return 0, false
	}
}
