package otel_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"deskhub/infras/otel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type status string

func (s status) String() string { return "status:" + string(s) }

func record(t *testing.T) (otel.Otel, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := trace.NewTracerProvider(trace.WithSpanProcessor(recorder))

	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	return otel.NewWithProvider(provider), recorder
}

func attributes(span trace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}

	return out
}

func TestScope_Attributes(t *testing.T) {
	tracer, recorder := record(t)

	_, scope := tracer.NewScope(context.Background(), "service", "service.booking.Create")
	scope.SetAttribute("booking.room_id", "r1")
	scope.SetAttributes(map[string]any{
		"booking.attendees": 4,
		"booking.amount":    50.5,
		"booking.guest":     true,
		"booking.statuses":  []string{"PENDING", "CONFIRMED"},
		"booking.date":      time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC),
		"lock.wait":         1500 * time.Millisecond,
		"booking.status":    status("PENDING"),
		"booking.slots":     []int{1, 2},
	})
	scope.TraceIfError(nil)
	scope.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "service.booking.Create", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)

	attrs := attributes(spans[0])
	assert.Equal(t, "r1", attrs["booking.room_id"].AsString())
	assert.Equal(t, int64(4), attrs["booking.attendees"].AsInt64())
	assert.InDelta(t, 50.5, attrs["booking.amount"].AsFloat64(), 0.001)
	assert.True(t, attrs["booking.guest"].AsBool())
	assert.Equal(t, []string{"PENDING", "CONFIRMED"}, attrs["booking.statuses"].AsStringSlice())
	assert.Equal(t, "2026-10-20T00:00:00Z", attrs["booking.date"].AsString())
	assert.Equal(t, int64(1500), attrs["lock.wait"].AsInt64())
	assert.Equal(t, "status:PENDING", attrs["booking.status"].AsString())
	assert.Equal(t, "[1 2]", attrs["booking.slots"].AsString())
}

func TestScope_TraceError(t *testing.T) {
	tracer, recorder := record(t)

	ctx, parent := tracer.NewScope(context.Background(), "http", "POST /v1/rooms/{id}/bookings")
	_, child := tracer.NewScope(ctx, "repository", "repository.booking.InsertTx")

	child.AddEvent("lock acquired")
	child.TraceIfError(errors.New("slot already taken"))
	child.End()
	parent.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	failed := spans[0]
	assert.Equal(t, "repository.booking.InsertTx", failed.Name())
	assert.Equal(t, codes.Error, failed.Status().Code)
	assert.Equal(t, "slot already taken", failed.Status().Description)
	assert.Equal(t, spans[1].SpanContext().SpanID(), failed.Parent().SpanID())

	events := failed.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "lock acquired", events[0].Name)
	assert.Equal(t, "exception", events[1].Name)
}
