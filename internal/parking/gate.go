package parking

import "context"

// Lot is what the gates need from a manager. Both *Manager and
// *InstrumentedManager satisfy it.
type Lot interface {
	Enter(ctx context.Context, vehicle *Vehicle) (*Ticket, error)
	Exit(ctx context.Context, ticketID uint64, method PaymentMethod) (*Receipt, error)
}

type EntranceGate struct {
	lot Lot
}

func NewEntranceGate(lot Lot) *EntranceGate {
	return &EntranceGate{lot: lot}
}

func (g *EntranceGate) Enter(ctx context.Context, vehicle *Vehicle) (*Ticket, error) {
	return g.lot.Enter(ctx, vehicle)
}

// ExitGate collects fees with the payment method it was installed with.
type ExitGate struct {
	lot    Lot
	method PaymentMethod
}

func NewExitGate(lot Lot, method PaymentMethod) *ExitGate {
	return &ExitGate{
		lot:    lot,
		method: method,
	}
}

func (g *ExitGate) Exit(ctx context.Context, ticketID uint64) (*Receipt, error) {
	return g.lot.Exit(ctx, ticketID, g.method)
}
