package parking

import (
	"sort"
	"time"
)

// TicketLedger records live tickets. Ids come from a counter that is never
// decremented, so a retired id is never handed out again.
type TicketLedger struct {
	tickets map[uint64]*Ticket
	lastID  uint64
}

func NewTicketLedger() *TicketLedger {
	return &TicketLedger{
		tickets: make(map[uint64]*Ticket),
	}
}

func (l *TicketLedger) Create(vehicle *Vehicle, spot *Spot, entry time.Time) *Ticket {
	l.lastID++
	ticket := &Ticket{
		ID:        l.lastID,
		Vehicle:   vehicle,
		Spot:      spot,
		EntryTime: entry,
	}
	l.tickets[ticket.ID] = ticket
	return ticket
}

func (l *TicketLedger) Lookup(id uint64) (*Ticket, bool) {
	ticket, ok := l.tickets[id]
	return ticket, ok
}

func (l *TicketLedger) Remove(id uint64) {
	delete(l.tickets, id)
}

func (l *TicketLedger) Len() int {
	return len(l.tickets)
}

func (l *TicketLedger) Active() []*Ticket {
	active := make([]*Ticket, 0, len(l.tickets))
	for _, ticket := range l.tickets {
		active = append(active, ticket)
	}

	sort.Slice(active, func(i, j int) bool {
		return active[i].ID < active[j].ID
	})

	return active
}
