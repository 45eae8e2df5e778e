package statemachine_test

import (
	"context"
	"testing"

	"github.com/amp-labs/amp-fsm/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTestTracer installs a tracer provider backed by an in-memory exporter.
func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := trace.NewTracerProvider(
		trace.WithSyncer(exporter),
	)

	oldProvider := otel.GetTracerProvider()

	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		otel.SetTracerProvider(oldProvider)
	})

	return exporter
}

func spanAttributes(span tracetest.SpanStub) map[string]any {
	attrMap := make(map[string]any)
	for _, attr := range span.Attributes {
		attrMap[string(attr.Key)] = attr.Value.AsInterface()
	}

	return attrMap
}

// TestProcessEventSpans verifies the span emitted for accepted and rejected events.
// Note: Cannot use t.Parallel() because setupTestTracer modifies the global OTEL tracer provider.
//
//nolint:paralleltest // Test modifies global OTEL tracer provider
func TestProcessEventSpans(t *testing.T) {
	exporter := setupTestTracer(t)
	ctx := context.Background()

	m := newScenarioMachine(statemachine.WithName("traced"), statemachine.WithTracing(true))

	next, err := m.ProcessEventContext(ctx, Start)
	require.NoError(t, err)
	assert.Equal(t, Active, next)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "statemachine.process_event", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)

	attrs := spanAttributes(spans[0])
	assert.Equal(t, "traced", attrs["machine"])
	assert.Equal(t, m.ID().String(), attrs["machine_id"])
	assert.Equal(t, "Idle", attrs["state"])
	assert.Equal(t, "Start", attrs["event"])
	assert.Equal(t, "Active", attrs["next_state"])
	assert.Equal(t, "success", attrs["outcome"])

	exporter.Reset()

	_, err = m.ProcessEventContext(ctx, Restart)
	require.ErrorIs(t, err, statemachine.ErrNoNextStateFound)

	spans = exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "no_next_state", spanAttributes(spans[0])["outcome"])
	assert.NotEmpty(t, spans[0].Events, "error should be recorded on the span")
}

// TestTracingDisabledByDefault checks that no span is produced unless asked for.
//
//nolint:paralleltest // Test modifies global OTEL tracer provider
func TestTracingDisabledByDefault(t *testing.T) {
	exporter := setupTestTracer(t)

	m := newScenarioMachine()
	_, err := m.ProcessEventContext(context.Background(), Start)
	require.NoError(t, err)

	assert.Empty(t, exporter.GetSpans())
}

// TestLoggerReceivesSpanContext checks that the logger sees the span's context.
//
//nolint:paralleltest // Test modifies global OTEL tracer provider
func TestLoggerReceivesSpanContext(t *testing.T) {
	setupTestTracer(t)

	log := &captureLogger{}
	m := newScenarioMachine(statemachine.WithTracing(true), statemachine.WithLogger(log))

	_, err := m.ProcessEventContext(context.Background(), Start)
	require.NoError(t, err)

	require.Len(t, log.transitions, 1)
	assert.True(t, log.transitions[0].spanValid)
}
