package statemachine

import (
	"context"
	"sync"

	"github.com/amp-labs/amp-fsm/enum"
)

// Locked serializes access to a Machine with a mutex so that it can be shared between
// goroutines. Callbacks and guards run with the lock held: they must use the Machine
// they are given, never the Locked wrapper.
type Locked[S enum.Enum[S], E enum.Enum[E]] struct {
	mu      sync.Mutex
	machine *Machine[S, E]
}

// NewLocked wraps machine. The caller must stop using machine directly.
func NewLocked[S enum.Enum[S], E enum.Enum[E]](machine *Machine[S, E]) *Locked[S, E] {
	return &Locked[S, E]{machine: machine}
}

// ProcessEvent is Machine.ProcessEvent under the lock.
func (l *Locked[S, E]) ProcessEvent(event E) (S, error) {
	return l.ProcessEventContext(context.Background(), event)
}

// ProcessEventContext is Machine.ProcessEventContext under the lock.
func (l *Locked[S, E]) ProcessEventContext(ctx context.Context, event E) (S, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.machine.ProcessEventContext(ctx, event)
}

// CurrentState is Machine.CurrentState under the lock.
func (l *Locked[S, E]) CurrentState() S {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.machine.CurrentState()
}

// Do runs fn with exclusive access to the machine, e.g. to reconfigure it.
func (l *Locked[S, E]) Do(fn func(m *Machine[S, E])) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fn(l.machine)
}
