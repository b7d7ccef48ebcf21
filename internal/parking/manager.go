package parking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrLotFull         = errors.New("parking lot is full")
	ErrInvalidTicket   = errors.New("invalid ticket")
	ErrPaymentDeclined = errors.New("payment declined")
)

// DeclinedError carries the fee that was refused. It matches ErrPaymentDeclined.
type DeclinedError struct {
	TicketID uint64
	Fee      float64
}

func (e *DeclinedError) Error() string {
	return fmt.Sprintf("ticket %d: payment of %.2f declined", e.TicketID, e.Fee)
}

func (e *DeclinedError) Is(target error) bool {
	return target == ErrPaymentDeclined
}

type Option func(*Manager)

func WithClock(clock Clock) Option {
	return func(m *Manager) {
		m.clock = clock
	}
}

func WithFeePolicy(policy FeePolicy) Option {
	return func(m *Manager) {
		m.fees = policy
	}
}

func WithEventSink(sink EventSink) Option {
	return func(m *Manager) {
		m.events = sink
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// Manager runs the entry/exit lifecycle of tickets over a SpotRegistry.
// A single mutex makes every Enter and Exit atomic with respect to each other.
type Manager struct {
	mu       sync.Mutex
	registry *SpotRegistry
	ledger   *TicketLedger
	clock    Clock
	fees     FeePolicy
	events   EventSink
	logger   *slog.Logger
}

func NewManager(registry *SpotRegistry, opts ...Option) *Manager {
	m := &Manager{
		registry: registry,
		ledger:   NewTicketLedger(),
		clock:    SystemClock,
		fees:     NewHourlyPolicy(50),
		events:   noopSink{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Enter reserves the first free spot matching the vehicle's class and issues
// a ticket for it. It returns ErrLotFull, with no state change, when none is free.
func (m *Manager) Enter(ctx context.Context, vehicle *Vehicle) (*Ticket, error) {
	ticket, ok := m.issue(vehicle)
	if !ok {
		m.emit(ctx, Event{
			Type:         EventLotFull,
			Plate:        vehicle.Plate(),
			VehicleClass: vehicle.Class().String(),
			At:           m.clock.Now(),
		})
		return nil, fmt.Errorf("%w: no free %s spot", ErrLotFull, m.requiredClass(vehicle.Class()))
	}

	m.logger.DebugContext(ctx, "ticket issued",
		slog.Uint64("ticket_id", ticket.ID),
		slog.String("plate", vehicle.Plate()),
		slog.Int("spot_id", ticket.Spot.ID()),
	)
	m.emit(ctx, Event{
		Type:         EventTicketIssued,
		TicketID:     ticket.ID,
		Plate:        vehicle.Plate(),
		VehicleClass: vehicle.Class().String(),
		SpotID:       ticket.Spot.ID(),
		At:           ticket.EntryTime,
	})

	return &ticket, nil
}

// issue reserves a spot and records a ticket. The caller gets a copy; the
// ledger keeps the original.
func (m *Manager) issue(vehicle *Vehicle) (Ticket, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	spot, ok := m.registry.FindFree(vehicle.Class())
	if !ok {
		return Ticket{}, false
	}

	m.registry.Reserve(spot)
	return *m.ledger.Create(vehicle, spot, m.clock.Now()), true
}

// Exit charges the fee for ticketID through method. Only a successful payment
// releases the spot and retires the ticket; a declined payment leaves the
// ticket live so it can be presented again.
func (m *Manager) Exit(ctx context.Context, ticketID uint64, method PaymentMethod) (*Receipt, error) {
	ticket, receipt, err := m.settle(ctx, ticketID, method)

	var declined *DeclinedError
	switch {
	case errors.As(err, &declined):
		m.emit(ctx, Event{
			Type:         EventPaymentDeclined,
			TicketID:     ticket.ID,
			Plate:        ticket.Vehicle.Plate(),
			VehicleClass: ticket.Vehicle.Class().String(),
			SpotID:       ticket.Spot.ID(),
			Fee:          declined.Fee,
			At:           m.clock.Now(),
		})
		return nil, err
	case err != nil:
		return nil, err
	}

	m.logger.DebugContext(ctx, "ticket retired",
		slog.Uint64("ticket_id", receipt.TicketID),
		slog.Float64("fee", receipt.Fee),
	)
	m.emit(ctx, Event{
		Type:         EventTicketRetired,
		TicketID:     receipt.TicketID,
		Plate:        receipt.Plate,
		VehicleClass: ticket.Vehicle.Class().String(),
		SpotID:       receipt.SpotID,
		Fee:          receipt.Fee,
		At:           receipt.ExitTime,
	})

	return receipt, nil
}

// settle runs lookup, fee, payment, release and removal under the lock.
// The lock is released even if the payment method panics.
func (m *Manager) settle(ctx context.Context, ticketID uint64, method PaymentMethod) (Ticket, *Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ticket, ok := m.ledger.Lookup(ticketID)
	if !ok {
		return Ticket{}, nil, fmt.Errorf("%w: %d", ErrInvalidTicket, ticketID)
	}

	exitTime := m.clock.Now()
	fee := feeFor(m.fees, ticket.Vehicle.Class(), ticket.EntryTime, exitTime)

	if !method.AttemptPayment(ctx, fee) {
		return *ticket, nil, &DeclinedError{TicketID: ticketID, Fee: fee}
	}

	m.registry.Release(ticket.Spot)
	m.ledger.Remove(ticketID)

	return *ticket, &Receipt{
		TicketID:  ticket.ID,
		Plate:     ticket.Vehicle.Plate(),
		SpotID:    ticket.Spot.ID(),
		EntryTime: ticket.EntryTime,
		ExitTime:  exitTime,
		Fee:       fee,
	}, nil
}

// Quote returns the fee ticketID would be charged now.
func (m *Manager) Quote(ticketID uint64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ticket, ok := m.ledger.Lookup(ticketID)
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrInvalidTicket, ticketID)
	}
	return feeFor(m.fees, ticket.Vehicle.Class(), ticket.EntryTime, m.clock.Now()), nil
}

// Ticket returns a copy of a live ticket.
func (m *Manager) Ticket(ticketID uint64) (Ticket, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ticket, ok := m.ledger.Lookup(ticketID)
	if !ok {
		return Ticket{}, false
	}
	return *ticket, true
}

type SpotStatus struct {
	SpotID    int
	Class     SpotClass
	Occupied  bool
	TicketID  uint64
	Plate     string
	EntryTime time.Time
}

type LotStatus struct {
	Capacity int
	Occupied int
	Spots    []SpotStatus
}

func (s LotStatus) Available() int {
	return s.Capacity - s.Occupied
}

// Status is a consistent snapshot of every spot in registration order.
func (m *Manager) Status() LotStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	bySpot := make(map[*Spot]*Ticket, m.ledger.Len())
	for _, ticket := range m.ledger.Active() {
		bySpot[ticket.Spot] = ticket
	}

	spots := m.registry.Spots()
	status := LotStatus{
		Capacity: len(spots),
		Spots:    make([]SpotStatus, 0, len(spots)),
	}
	for _, spot := range spots {
		ss := SpotStatus{
			SpotID:   spot.ID(),
			Class:    spot.Class(),
			Occupied: spot.IsOccupied(),
		}
		if ticket, ok := bySpot[spot]; ok {
			ss.TicketID = ticket.ID
			ss.Plate = ticket.Vehicle.Plate()
			ss.EntryTime = ticket.EntryTime
		}
		if ss.Occupied {
			status.Occupied++
		}
		status.Spots = append(status.Spots, ss)
	}

	return status
}

func (m *Manager) requiredClass(vc VehicleClass) string {
	if sc, ok := m.registry.classMap.SpotClassFor(vc); ok {
		return sc.String()
	}
	return "matching"
}

func (m *Manager) emit(ctx context.Context, event Event) {
	if err := m.events.Publish(ctx, event); err != nil {
		m.logger.WarnContext(ctx, "failed to publish lot event",
			slog.String("event", string(event.Type)),
			slog.Any("error", err),
		)
	}
}
