package parking

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runShell(t *testing.T, script string) (string, *fakeClock) {
	t.Helper()

	telemetry := NewNoopTelemetryProvider()
	m, clock := newThreeSpotManager()
	im, err := NewInstrumentedManager(m, telemetry)
	require.NoError(t, err)

	var out bytes.Buffer
	shell := NewInstrumentedShell(im, telemetry, strings.NewReader(script), &out)
	shell.Run(context.Background())

	return out.String(), clock
}

func TestShellEnterAndExit(t *testing.T) {
	out, _ := runShell(t, strings.Join([]string{
		"enter KA01AB1234 car",
		"enter KA02CD5678 standard",
		"status",
		"quote 1",
		"exit 1 declined",
		"exit 1 card:10",
		"exit 1",
		"exit 1",
		"status",
	}, "\n"))

	lines := strings.Split(strings.TrimSpace(out), "\n")
	expected := []string{
		"Ticket 1 issued, spot 2",
		"Sorry, no free standard spot",
		"Spot\tClass\tTicket\tPlate",
		"2\tregular\t1\tKA01AB1234",
		"50.00",
		"Payment of 50.00 declined, ticket 1 still valid",
		"Payment of 50.00 declined, ticket 1 still valid",
		"Paid 50.00, spot 2 is free",
		"Invalid ticket",
		"Parking lot is empty",
	}
	assert.Equal(t, expected, lines)
}

func TestShellRejectsBadInput(t *testing.T) {
	out, _ := runShell(t, strings.Join([]string{
		"enter ONLYPLATE",
		"enter X bus",
		"exit abc",
		"exit 1 cheque",
		"quote",
		"fly",
		"",
	}, "\n"))

	assert.Contains(t, out, "Usage: enter <plate> <small|standard|oversized>")
	assert.Contains(t, out, "Invalid vehicle class: bus")
	assert.Contains(t, out, "Invalid ticket id: abc")
	assert.Contains(t, out, `Error: unknown payment method "cheque"`)
	assert.Contains(t, out, "Usage: quote <ticket_id>")
	assert.Contains(t, out, "Unknown command: fly")
}

func TestShellStopsOnCancelledContext(t *testing.T) {
	telemetry := NewNoopTelemetryProvider()
	m, _ := newThreeSpotManager()
	im, err := NewInstrumentedManager(m, telemetry)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	<-ctx.Done()

	var out bytes.Buffer
	NewInstrumentedShell(im, telemetry, strings.NewReader("enter A car\n"), &out).Run(ctx)

	assert.Empty(t, out.String())
}
