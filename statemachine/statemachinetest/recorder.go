// Package statemachinetest provides testing utilities for state machines.
package statemachinetest

import (
	"github.com/amp-labs/amp-fsm/enum"
	"github.com/amp-labs/amp-fsm/statemachine"
)

// Record is one observed callback invocation.
type Record[S, E any] struct {
	Phase   statemachine.TransitionType
	Current S
	Next    S
	Event   E
}

// Recorder captures callback invocations in the order they happen.
// It is not safe for concurrent use.
type Recorder[S enum.Enum[S], E enum.Enum[E]] struct {
	records []Record[S, E]
}

// NewRecorder creates an empty recorder.
func NewRecorder[S enum.Enum[S], E enum.Enum[E]]() *Recorder[S, E] {
	return &Recorder[S, E]{}
}

// Callback returns a callback that appends to the recorder.
func (r *Recorder[S, E]) Callback() statemachine.Callback[S, E] {
	return func(phase statemachine.TransitionType, current, next S, event E) {
		r.records = append(r.records, Record[S, E]{
			Phase:   phase,
			Current: current,
			Next:    next,
			Event:   event,
		})
	}
}

// AttachAll registers the recorder as exit and enter callback on every state of m.
func (r *Recorder[S, E]) AttachAll(m *statemachine.Machine[S, E]) {
	for _, state := range enum.Values[S]() {
		m.AttachOnExitStateCallback(state, r.Callback())
		m.AttachOnEnterStateCallback(state, r.Callback())
	}
}

// Records returns a copy of everything recorded so far.
func (r *Recorder[S, E]) Records() []Record[S, E] {
	out := make([]Record[S, E], len(r.records))
	copy(out, r.records)

	return out
}

// Phases returns the phase of each record, in order.
func (r *Recorder[S, E]) Phases() []statemachine.TransitionType {
	phases := make([]statemachine.TransitionType, len(r.records))
	for i, rec := range r.records {
		phases[i] = rec.Phase
	}

	return phases
}

// Len returns the number of records.
func (r *Recorder[S, E]) Len() int {
	return len(r.records)
}

// Reset drops all records.
func (r *Recorder[S, E]) Reset() {
	r.records = nil
}
