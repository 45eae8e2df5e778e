package statemachine_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/amp-labs/amp-fsm/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverSerializesEvents(t *testing.T) {
	t.Parallel()

	const senders = 50

	ctx := context.Background()
	m := newToggle()
	m.EnableTransition(Idle, Stopped, Timeout)
	m.AttachTransitionGuard(Stopped, func(State, State, Event) bool { return false })

	driver := statemachine.NewDriver(ctx, m)
	t.Cleanup(driver.Stop)

	var wg sync.WaitGroup

	for range senders {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := driver.Send(ctx, Start)
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	state, err := driver.CurrentState(ctx)
	require.NoError(t, err)
	assert.Equal(t, Idle, state)
	assert.Equal(t, uint64(senders), driver.Processed())

	_, err = driver.Send(ctx, Cancel)
	require.ErrorIs(t, err, statemachine.ErrNoNextStateFound)
	assert.Equal(t, uint64(1), driver.Rejected())

	next, err := driver.Send(ctx, Timeout)
	require.NoError(t, err)
	assert.Equal(t, Stopped, next)
}

func TestDriverStop(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	driver := statemachine.NewDriver(ctx, newToggle())

	next, err := driver.Send(ctx, Start)
	require.NoError(t, err)
	assert.Equal(t, Active, next)

	driver.Stop()
	driver.Stop()

	_, err = driver.Send(ctx, Start)
	require.ErrorIs(t, err, statemachine.ErrDriverStopped)

	_, err = driver.CurrentState(ctx)
	require.ErrorIs(t, err, statemachine.ErrDriverStopped)
}

func TestDriverCancelledContext(t *testing.T) {
	t.Parallel()

	driver := statemachine.NewDriver(context.Background(), newToggle())
	t.Cleanup(driver.Stop)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := driver.Send(ctx, Start)
	require.ErrorIs(t, err, context.Canceled)

	state, err := driver.CurrentState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Idle, state)
	assert.Zero(t, driver.Processed())
}

func TestDriverContextEndsDuringProcessing(t *testing.T) {
	t.Parallel()

	m := newToggle()
	driver := statemachine.NewDriver(context.Background(), m)
	t.Cleanup(driver.Stop)

	ctx, cancel := context.WithCancel(context.Background())

	m.AttachOnExitStateCallback(Idle, func(statemachine.TransitionType, State, State, Event) {
		cancel()
		time.Sleep(20 * time.Millisecond)
	})

	next, err := driver.Send(ctx, Start)
	require.NoError(t, err)
	assert.Equal(t, Active, next)
	assert.Equal(t, uint64(1), driver.Processed())

	state, err := driver.CurrentState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Active, state)
}
