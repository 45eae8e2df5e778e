package statemachine

import "fmt"

// TransitionType identifies the phase of a transition a callback is attached to.
type TransitionType int

const (
	// Enter callbacks fire after the machine has arrived at a state.
	Enter TransitionType = iota
	// Exit callbacks fire before the machine leaves a state.
	Exit

	transitionTypeCount = 2
)

func (t TransitionType) String() string {
	switch t {
	case Enter:
		return "enter"
	case Exit:
		return "exit"
	default:
		return fmt.Sprintf("TransitionType(%d)", int(t))
	}
}

// Guard decides whether the machine may move from current to next on event.
// Returning false vetoes the transition.
type Guard[S, E any] func(current, next S, event E) bool

// Callback observes a transition. For Exit callbacks current is the state being left;
// for Enter callbacks it is the previous state, as it stood once the Exit callbacks returned.
type Callback[S, E any] func(phase TransitionType, current, next S, event E)
