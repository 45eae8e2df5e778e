package statemachinetest

import (
	"testing"

	"github.com/amp-labs/amp-fsm/enum"
	"github.com/amp-labs/amp-fsm/statemachine"
	"github.com/stretchr/testify/require"
)

// RequireState fails the test if m is not in want.
func RequireState[S enum.Enum[S], E enum.Enum[E]](t testing.TB, m *statemachine.Machine[S, E], want S) {
	t.Helper()

	require.Equal(t, want, m.CurrentState(), "unexpected current state")
}

// RequireTransition delivers event and fails the test unless it moves m to want.
func RequireTransition[S enum.Enum[S], E enum.Enum[E]](
	t testing.TB, m *statemachine.Machine[S, E], event E, want S,
) {
	t.Helper()

	next, err := m.ProcessEvent(event)
	require.NoError(t, err, "event %v should be accepted", event)
	require.Equal(t, want, next, "event %v returned unexpected state", event)
	RequireState(t, m, want)
}

// RequireRejected delivers event and fails the test unless it is rejected with wantErr
// and leaves the current state unchanged.
func RequireRejected[S enum.Enum[S], E enum.Enum[E]](
	t testing.TB, m *statemachine.Machine[S, E], event E, wantErr error,
) {
	t.Helper()

	before := m.CurrentState()

	_, err := m.ProcessEvent(event)
	require.ErrorIs(t, err, wantErr, "event %v should be rejected", event)
	RequireState(t, m, before)
}

// Step is one event of a scenario and the state it should lead to. A non-nil Err means
// the event must be rejected with that error instead.
type Step[S, E any] struct {
	Event E
	Want  S
	Err   error
}

// RunSteps feeds the steps to m in order.
func RunSteps[S enum.Enum[S], E enum.Enum[E]](t testing.TB, m *statemachine.Machine[S, E], steps ...Step[S, E]) {
	t.Helper()

	for _, step := range steps {
		if step.Err != nil {
			RequireRejected(t, m, step.Event, step.Err)

			continue
		}

		RequireTransition(t, m, step.Event, step.Want)
	}
}
