package main

import (
	"fmt"
	"strings"

	"github.com/amp-labs/amp-fsm/enum"
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

var stateNames = [...]string{"Idle", "Active", "Stopped", "Canceled"}

func (s State) String() string {
	if !enum.Valid(s) {
		return fmt.Sprintf("State(%d)", int(s))
	}

	return stateNames[s]
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

var eventNames = [...]string{"Start", "Timeout", "Cancel", "Restart"}

func (e Event) String() string {
	if !enum.Valid(e) {
		return fmt.Sprintf("Event(%d)", int(e))
	}

	return eventNames[e]
}

// parseName finds the value of E whose String matches name, ignoring case.
func parseName[E interface {
	enum.Enum[E]
	fmt.Stringer
}](kind, name string) (E, error) {
	for _, v := range enum.Values[E]() {
		if strings.EqualFold(v.String(), name) {
			return v, nil
		}
	}

	return enum.Sentinel[E](), fmt.Errorf("%w %s %q", errUnknownName, kind, name)
}

// newScenario builds the demo machine:
//
//	Idle    -> Active   on Start
//	Active  -> Stopped  on Timeout
//	Active  -> Canceled on Cancel
//	Stopped -> Active   on Restart
func newScenario(initial State, opts ...statemachine.Option) *statemachine.Machine[State, Event] {
	m := statemachine.New[State, Event](initial, opts...)

	m.EnableTransition(Idle, Active, Start)
	m.EnableTransition(Active, Stopped, Timeout)
	m.EnableTransition(Active, Canceled, Cancel)
	m.EnableTransition(Stopped, Active, Restart)

	return m
}
