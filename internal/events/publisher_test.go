package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"parking-lot-manager/internal/parking"
)

type fakeConn struct {
	msgs []*nats.Msg
	err  error
}

func (f *fakeConn) PublishMsg(msg *nats.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

// extract reads the trace context back the way a subscriber would.
func extract(ctx context.Context, msg *nats.Msg) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, (*headerCarrier)(msg))
}

func TestHeaderCarrier(t *testing.T) {
	msg := &nats.Msg{}
	carrier := (*headerCarrier)(msg)

	assert.Equal(t, "", carrier.Get("missing"))
	assert.Nil(t, carrier.Keys())

	carrier.Set("traceparent", "00-abc-def-01")
	assert.Equal(t, "00-abc-def-01", carrier.Get("traceparent"))
	assert.Len(t, carrier.Keys(), 1)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "parking.ticket.issued", NewNATSPublisher(nil, "parking").Subject(parking.EventTicketIssued))
	assert.Equal(t, "ticket.retired", NewNATSPublisher(nil, "").Subject(parking.EventTicketRetired))
}

func TestPublishEncodesEventAndTraceContext(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	conn := &fakeConn{}
	pub := NewNATSPublisher(conn, "lot-a")

	at := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	err := pub.Publish(ctx, parking.Event{
		Type:         parking.EventTicketRetired,
		TicketID:     7,
		Plate:        "KA01AB1234",
		VehicleClass: "standard",
		SpotID:       2,
		Fee:          75,
		At:           at,
	})
	require.NoError(t, err)
	require.Len(t, conn.msgs, 1)

	msg := conn.msgs[0]
	assert.Equal(t, "lot-a.ticket.retired", msg.Subject)

	var decoded parking.Event
	require.NoError(t, json.Unmarshal(msg.Data, &decoded))
	assert.Equal(t, uint64(7), decoded.TicketID)
	assert.Equal(t, 75.0, decoded.Fee)
	assert.True(t, decoded.At.Equal(at))

	extracted := trace.SpanContextFromContext(extract(context.Background(), msg))
	assert.Equal(t, traceID, extracted.TraceID())
}

func TestPublishReturnsConnError(t *testing.T) {
	pub := NewNATSPublisher(&fakeConn{err: errors.New("nats: connection closed")}, "parking")

	err := pub.Publish(context.Background(), parking.Event{Type: parking.EventLotFull})
	assert.EqualError(t, err, "nats: connection closed")
}
