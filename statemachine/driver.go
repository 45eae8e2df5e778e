package statemachine

import (
	"context"
	"fmt"

	"github.com/alitto/pond/v2"
	"github.com/amp-labs/amp-fsm/enum"
	"go.uber.org/atomic"
)

// Driver confines a Machine to a single worker. Events may be sent from any goroutine;
// they are processed one at a time, in submission order, on the worker.
//
// Callbacks run on the worker and must not call Send on their own Driver, which would
// deadlock. They may call ProcessEvent on the Machine they belong to.
type Driver[S enum.Enum[S], E enum.Enum[E]] struct {
	machine *Machine[S, E]
	pool    pond.ResultPool[S]

	stopped   atomic.Bool
	processed atomic.Uint64
	rejected  atomic.Uint64
}

// NewDriver starts a driver for machine. The caller must stop using machine directly.
// Cancelling ctx stops the worker.
func NewDriver[S enum.Enum[S], E enum.Enum[E]](ctx context.Context, machine *Machine[S, E]) *Driver[S, E] {
	return &Driver[S, E]{
		machine: machine,
		pool:    pond.NewResultPool[S](1, pond.WithContext(ctx)),
	}
}

// Send delivers event and waits for the outcome. If ctx ends before the worker picks the
// event up, the event is dropped and ctx's error returned. Once picked up, the event is
// processed to completion and its outcome returned even if ctx ends meanwhile.
// After Stop, Send returns ErrDriverStopped.
func (d *Driver[S, E]) Send(ctx context.Context, event E) (S, error) {
	return d.submit(ctx, func() (S, error) {
		next, err := d.machine.ProcessEventContext(ctx, event)
		if err != nil {
			d.rejected.Inc()
		} else {
			d.processed.Inc()
		}

		return next, err
	})
}

// CurrentState reads the machine's state on the worker.
func (d *Driver[S, E]) CurrentState(ctx context.Context) (S, error) {
	return d.submit(ctx, func() (S, error) {
		return d.machine.CurrentState(), nil
	})
}

// Processed returns the number of events that caused a transition.
func (d *Driver[S, E]) Processed() uint64 {
	return d.processed.Load()
}

// Rejected returns the number of events the machine refused.
func (d *Driver[S, E]) Rejected() uint64 {
	return d.rejected.Load()
}

// Stop waits for queued events to be processed and shuts the worker down.
func (d *Driver[S, E]) Stop() {
	if d.stopped.Swap(true) {
		return
	}

	d.pool.StopAndWait()
}

// Claim states of a submitted task. Whoever moves it out of taskPending first decides
// whether the event runs.
const (
	taskPending int32 = iota
	taskStarted
	taskAbandoned
)

func (d *Driver[S, E]) submit(ctx context.Context, fn func() (S, error)) (S, error) {
	var zero S

	if d.stopped.Load() {
		return zero, ErrDriverStopped
	}

	claim := atomic.NewInt32(taskPending)

	task := d.pool.SubmitErr(func() (S, error) {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		if !claim.CompareAndSwap(taskPending, taskStarted) {
			return zero, context.Cause(ctx)
		}

		return fn()
	})

	select {
	case <-task.Done():
	case <-ctx.Done():
		if claim.CompareAndSwap(taskPending, taskAbandoned) {
			return zero, ctx.Err()
		}

		// already running: the event is applied, report its real outcome
		<-task.Done()
	}

	result, err := task.Wait()
	if err != nil && d.stopped.Load() {
		if _, ok := ReasonOf(err); !ok {
			return zero, fmt.Errorf("%w: %w", ErrDriverStopped, err)
		}
	}

	return result, err
}
