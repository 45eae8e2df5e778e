// Package statemachine implements a table-driven finite state machine over closed
// enumerations of states and events.
//
// A Machine is configured once (transitions, guards, callbacks) and then fed events.
// Each event either moves the machine to the state found in its transition table,
// firing Exit callbacks of the old state and Enter callbacks of the new one, or is
// rejected with an error that leaves the machine untouched.
//
// A Machine is not safe for concurrent use. Confine it to one goroutine, or use Locked
// or Driver.
package statemachine

import (
	"context"
	"fmt"
	"time"

	"github.com/amp-labs/amp-fsm/enum"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// Machine is a finite state machine over states S and events E.
type Machine[S enum.Enum[S], E enum.Enum[E]] struct {
	current S
	table   table[S, E]

	// one slot per state
	guards []Guard[S, E]

	// indexed by callbackIndex(phase, state)
	callbacks [][]Callback[S, E]

	id      uuid.UUID
	name    string
	logger  Logger
	metrics bool
	tracing bool
}

// New creates a machine in the initial state with no transitions, guards or callbacks.
func New[S enum.Enum[S], E enum.Enum[E]](initial S, opts ...Option) *Machine[S, E] {
	o := defaultOptions()

	for _, opt := range opts {
		opt(&o)
	}

	states := enum.Count[S]()

	return &Machine[S, E]{
		current:   initial,
		table:     newTable[S, E](),
		guards:    make([]Guard[S, E], states),
		callbacks: make([][]Callback[S, E], transitionTypeCount*states),
		id:        uuid.New(),
		name:      sanitizeMachine(o.name),
		logger:    o.logger,
		metrics:   o.metrics,
		tracing:   o.tracing,
	}
}

// Init removes every transition, guard and callback. The current state is kept.
func (m *Machine[S, E]) Init() {
	m.table.reset()
	clear(m.guards)
	clear(m.callbacks)
}

// EnableTransition makes event move the machine from one state to another, replacing
// whatever target the (from, event) pair had before.
func (m *Machine[S, E]) EnableTransition(from, to S, event E) {
	m.table.set(from, event, to)
}

// DisableTransition removes the transition for (from, event). Delivering the event in
// that state afterwards fails with ErrNoNextStateFound.
func (m *Machine[S, E]) DisableTransition(from S, event E) {
	m.table.set(from, event, m.table.sentinel)
}

// AttachTransitionGuard sets the guard consulted for every event delivered while the
// machine is in state, replacing any previous guard. A nil guard removes it.
func (m *Machine[S, E]) AttachTransitionGuard(state S, guard Guard[S, E]) {
	m.guards[m.guardIndex(state)] = guard
}

// AttachOnExitStateCallback appends fn to the callbacks run when the machine leaves state.
func (m *Machine[S, E]) AttachOnExitStateCallback(state S, fn Callback[S, E]) {
	m.attachCallback(Exit, state, fn)
}

// AttachOnEnterStateCallback appends fn to the callbacks run when the machine arrives at state.
func (m *Machine[S, E]) AttachOnEnterStateCallback(state S, fn Callback[S, E]) {
	m.attachCallback(Enter, state, fn)
}

// ProcessEvent delivers event to the machine. See ProcessEventContext.
func (m *Machine[S, E]) ProcessEvent(event E) (S, error) {
	return m.ProcessEventContext(context.Background(), event)
}

// ProcessEventContext delivers event to the machine and returns the new state.
//
// The next state is looked up in the transition table; if there is none the call fails
// with ErrNoNextStateFound. Otherwise the guard of the current state, if any, is asked
// and may fail the call with ErrTransitionForbidden. On failure no callback runs and the
// returned state is the unchanged current state.
//
// On success the Exit callbacks of the current state run, the current state becomes the
// next state, and then the Enter callbacks of the next state run, each list in
// registration order.
//
// ctx is only handed to the logger and tracer; it does not cancel anything.
func (m *Machine[S, E]) ProcessEventContext(ctx context.Context, event E) (next S, err error) {
	start := time.Now()
	current := m.current

	if m.tracing {
		var span trace.Span

		ctx, span = startProcessEventSpan(ctx, m.name, m.id, label(current), label(event))

		defer func() {
			endProcessEventSpan(span, label(next), err)
		}()
	}

	if m.metrics {
		defer func() {
			recordEvent(m.name, label(current), label(next), err, time.Since(start))
		}()
	}

	return m.step(ctx, current, event)
}

// CurrentState returns the state the machine is in.
func (m *Machine[S, E]) CurrentState() S {
	return m.current
}

// Lookup returns the target configured for (from, event), reporting false if there is none.
func (m *Machine[S, E]) Lookup(from S, event E) (S, bool) {
	next := m.table.get(from, event)

	return next, next != m.table.sentinel
}

// HasGuard reports whether state has a guard attached.
func (m *Machine[S, E]) HasGuard(state S) bool {
	return m.guards[m.guardIndex(state)] != nil
}

// CallbackCount returns how many callbacks are attached to state for phase.
func (m *Machine[S, E]) CallbackCount(phase TransitionType, state S) int {
	return len(m.callbacks[m.callbackIndex(phase, state)])
}

// Name returns the name given with WithName, or "unknown".
func (m *Machine[S, E]) Name() string {
	return m.name
}

// ID returns the identifier generated for this machine instance.
func (m *Machine[S, E]) ID() uuid.UUID {
	return m.id
}

func (m *Machine[S, E]) step(ctx context.Context, current S, event E) (S, error) {
	next := m.table.get(current, event)
	if next == m.table.sentinel {
		return current, WrapTransitionError(label(current), "", label(event), ErrNoNextStateFound)
	}

	if guard := m.guards[m.guardIndex(current)]; guard != nil && !guard(current, next, event) {
		return current, WrapTransitionError(label(current), label(next), label(event), ErrTransitionForbidden)
	}

	m.dispatch(ctx, Exit, current, current, next, event)

	// read after the Exit callbacks, which may have moved the machine themselves
	prev := m.current
	m.current = next

	if m.logger != nil {
		m.logger.TransitionExecuted(ctx, m.name, label(prev), label(next), label(event))
	}

	m.dispatch(ctx, Enter, next, prev, next, event)

	return next, nil
}

// dispatch runs the phase callbacks attached to state with (phase, current, next, event).
func (m *Machine[S, E]) dispatch(ctx context.Context, phase TransitionType, state, current, next S, event E) {
	callbacks := m.callbacks[m.callbackIndex(phase, state)]
	if len(callbacks) == 0 {
		return
	}

	invoked := 0

	for _, cb := range callbacks {
		if cb != nil {
			cb(phase, current, next, event)
			invoked++
		}
	}

	if invoked == 0 {
		return
	}

	if m.metrics {
		recordCallbacks(m.name, phase, invoked)
	}

	if m.logger != nil {
		m.logger.CallbacksDispatched(ctx, m.name, phase, label(state), invoked)
	}
}

func (m *Machine[S, E]) attachCallback(phase TransitionType, state S, fn Callback[S, E]) {
	idx := m.callbackIndex(phase, state)
	m.callbacks[idx] = append(m.callbacks[idx], fn)
}

func (m *Machine[S, E]) guardIndex(state S) int {
	mustBeValid("state", state)

	return enum.Index(state)
}

func (m *Machine[S, E]) callbackIndex(phase TransitionType, state S) int {
	mustBeValid("state", state)

	if phase != Enter && phase != Exit {
		panic(fmt.Sprintf("statemachine: %v out of range", phase))
	}

	return int(phase)*len(m.guards) + enum.Index(state)
}

// label renders a state or event for logs, metrics and errors. Types implementing
// fmt.Stringer get their name; others print as their number.
func label[T any](v T) string {
	return fmt.Sprint(v)
}
