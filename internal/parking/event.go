package parking

import (
	"context"
	"time"
)

type EventType string

const (
	EventTicketIssued    EventType = "ticket.issued"
	EventTicketRetired   EventType = "ticket.retired"
	EventPaymentDeclined EventType = "payment.declined"
	EventLotFull         EventType = "lot.full"
)

type Event struct {
	Type         EventType `json:"type"`
	TicketID     uint64    `json:"ticket_id,omitempty"`
	Plate        string    `json:"plate"`
	VehicleClass string    `json:"vehicle_class"`
	SpotID       int       `json:"spot_id,omitempty"`
	Fee          float64   `json:"fee,omitempty"`
	At           time.Time `json:"at"`
}

// EventSink receives lot events after the state change they describe.
// Implementations must not call back into the Manager.
type EventSink interface {
	Publish(ctx context.Context, event Event) error
}

type noopSink struct{}

func (noopSink) Publish(context.Context, Event) error {
	return nil
}
