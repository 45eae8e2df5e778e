package statemachine_test

import (
	"github.com/amp-labs/amp-fsm/statemachine"
)

type State int

const (
	Idle State = iota
	Active
	Stopped
	Canceled
	StateMaxValue
)

func (State) MaxValue() State { return StateMaxValue }

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Active:
		return "Active"
	case Stopped:
		return "Stopped"
	case Canceled:
		return "Canceled"
	default:
		return "Invalid"
	}
}

type Event int

const (
	Start Event = iota
	Timeout
	Cancel
	Restart
	EventMaxValue
)

func (Event) MaxValue() Event { return EventMaxValue }

func (e Event) String() string {
	switch e {
	case Start:
		return "Start"
	case Timeout:
		return "Timeout"
	case Cancel:
		return "Cancel"
	case Restart:
		return "Restart"
	default:
		return "Invalid"
	}
}

// newScenarioMachine builds the Idle/Active/Stopped/Canceled machine used across tests.
func newScenarioMachine(opts ...statemachine.Option) *statemachine.Machine[State, Event] {
	m := statemachine.New[State, Event](Idle, append([]statemachine.Option{statemachine.WithMetrics(false)}, opts...)...)
	m.Init()

	m.EnableTransition(Idle, Active, Start)
	m.EnableTransition(Active, Stopped, Timeout)
	m.EnableTransition(Active, Canceled, Cancel)
	m.EnableTransition(Stopped, Active, Restart)

	return m
}
