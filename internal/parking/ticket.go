package parking

import "time"

type Ticket struct {
	ID        uint64
	Vehicle   *Vehicle
	Spot      *Spot
	EntryTime time.Time
}

// Receipt describes a completed exit.
type Receipt struct {
	TicketID  uint64
	Plate     string
	SpotID    int
	EntryTime time.Time
	ExitTime  time.Time
	Fee       float64
}
