package statemachine_test

import (
	"testing"

	"github.com/amp-labs/amp-fsm/statemachine"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue reads a counter from the default registry. Each test uses its own
// machine name, so label sets never overlap and the tests can run in parallel.
func counterValue(t *testing.T, metric string, labels map[string]string) float64 {
	t.Helper()

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != metric {
			continue
		}

	next:
		for _, m := range family.GetMetric() {
			for _, pair := range m.GetLabel() {
				if want, ok := labels[pair.GetName()]; ok && want != pair.GetValue() {
					continue next
				}
			}

			return m.GetCounter().GetValue()
		}
	}

	return 0
}

func TestEventMetrics(t *testing.T) {
	t.Parallel()

	const name = "metrics-events"

	m := newScenarioMachine(statemachine.WithName(name), statemachine.WithMetrics(true))
	m.AttachOnExitStateCallback(Idle, func(statemachine.TransitionType, State, State, Event) {})
	m.AttachOnExitStateCallback(Idle, nil) // skipped, not counted
	m.AttachOnExitStateCallback(Active, nil)
	m.AttachOnEnterStateCallback(Active, func(statemachine.TransitionType, State, State, Event) {})
	m.AttachOnEnterStateCallback(Active, func(statemachine.TransitionType, State, State, Event) {})
	m.AttachTransitionGuard(Stopped, func(State, State, Event) bool { return false })

	_, _ = m.ProcessEvent(Timeout) // no edge from Idle
	_, _ = m.ProcessEvent(Start)   // Idle -> Active
	_, _ = m.ProcessEvent(Timeout) // Active -> Stopped
	_, _ = m.ProcessEvent(Restart) // guarded

	assert.InDelta(t, 2, counterValue(t, "statemachine_events_total",
		map[string]string{"machine": name, "outcome": "success"}), 0)
	assert.InDelta(t, 1, counterValue(t, "statemachine_events_total",
		map[string]string{"machine": name, "outcome": "no_next_state"}), 0)
	assert.InDelta(t, 1, counterValue(t, "statemachine_events_total",
		map[string]string{"machine": name, "outcome": "forbidden"}), 0)
	assert.InDelta(t, 1, counterValue(t, "statemachine_transitions_total",
		map[string]string{"machine": name, "from_state": "Idle", "to_state": "Active"}), 0)
	assert.InDelta(t, 1, counterValue(t, "statemachine_callbacks_total",
		map[string]string{"machine": name, "phase": "exit"}), 0)
	assert.InDelta(t, 2, counterValue(t, "statemachine_callbacks_total",
		map[string]string{"machine": name, "phase": "enter"}), 0)
}

func TestMetricsDisabled(t *testing.T) {
	t.Parallel()

	const name = "metrics-disabled"

	m := newScenarioMachine(statemachine.WithName(name))
	_, _ = m.ProcessEvent(Start)

	assert.Zero(t, counterValue(t, "statemachine_events_total",
		map[string]string{"machine": name, "outcome": "success"}))
}

func TestDurationHistogramRegistered(t *testing.T) {
	t.Parallel()

	m := newScenarioMachine(statemachine.WithName("metrics-duration"), statemachine.WithMetrics(true))
	_, _ = m.ProcessEvent(Start)

	count, err := testutil.GatherAndCount(prometheus.DefaultGatherer,
		"statemachine_process_event_duration_seconds")
	require.NoError(t, err)
	assert.Positive(t, count)
}
