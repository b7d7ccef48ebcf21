package parking

import (
	"fmt"
	"strings"
)

type VehicleClass int

const (
	Small VehicleClass = iota + 1
	Standard
	Oversized
)

func (c VehicleClass) String() string {
	switch c {
	case Small:
		return "small"
	case Standard:
		return "standard"
	case Oversized:
		return "oversized"
	default:
		return fmt.Sprintf("vehicle_class(%d)", int(c))
	}
}

// ParseVehicleClass accepts the canonical names and the bike/car/truck aliases.
func ParseVehicleClass(s string) (VehicleClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "small", "bike":
		return Small, nil
	case "standard", "car":
		return Standard, nil
	case "oversized", "truck":
		return Oversized, nil
	}
	return 0, fmt.Errorf("unknown vehicle class %q", s)
}

type Vehicle struct {
	plate string
	class VehicleClass
}

func NewVehicle(plate string, class VehicleClass) *Vehicle {
	return &Vehicle{
		plate: plate,
		class: class,
	}
}

func (v *Vehicle) Plate() string {
	return v.plate
}

func (v *Vehicle) Class() VehicleClass {
	return v.class
}
