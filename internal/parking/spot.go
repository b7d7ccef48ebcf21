package parking

import (
	"fmt"
	"strings"
)

type SpotClass int

const (
	Compact SpotClass = iota + 1
	Regular
	Large
)

func (c SpotClass) String() string {
	switch c {
	case Compact:
		return "compact"
	case Regular:
		return "regular"
	case Large:
		return "large"
	default:
		return fmt.Sprintf("spot_class(%d)", int(c))
	}
}

func ParseSpotClass(s string) (SpotClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "compact":
		return Compact, nil
	case "regular":
		return Regular, nil
	case "large":
		return Large, nil
	}
	return 0, fmt.Errorf("unknown spot class %q", s)
}

// ClassMap decides which spot class a vehicle class may park in.
type ClassMap map[VehicleClass]SpotClass

var DefaultClassMap = ClassMap{
	Small:     Compact,
	Standard:  Regular,
	Oversized: Large,
}

// SpotClassFor reports the required spot class, or false for an unmapped vehicle class.
func (m ClassMap) SpotClassFor(vc VehicleClass) (SpotClass, bool) {
	sc, ok := m[vc]
	return sc, ok
}

type Spot struct {
	id       int
	class    SpotClass
	occupied bool
}

func NewSpot(id int, class SpotClass) *Spot {
	return &Spot{
		id:    id,
		class: class,
	}
}

func (s *Spot) ID() int {
	return s.id
}

func (s *Spot) Class() SpotClass {
	return s.class
}

func (s *Spot) IsOccupied() bool {
	return s.occupied
}

func (s *Spot) occupy() {
	if s.occupied {
		panic(fmt.Sprintf("parking: spot %d reserved while already occupied", s.id))
	}
	s.occupied = true
}

func (s *Spot) free() {
	if !s.occupied {
		panic(fmt.Sprintf("parking: spot %d released while already free", s.id))
	}
	s.occupied = false
}
