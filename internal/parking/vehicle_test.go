package parking

import "testing"

func TestNewVehicle(t *testing.T) {
	plate := "KA01AB1234"

	vehicle := NewVehicle(plate, Standard)

	if vehicle.Plate() != plate {
		t.Errorf("Expected plate %s, got %s", plate, vehicle.Plate())
	}

	if vehicle.Class() != Standard {
		t.Errorf("Expected class %s, got %s", Standard, vehicle.Class())
	}
}

func TestParseVehicleClass(t *testing.T) {
	cases := map[string]VehicleClass{
		"small":     Small,
		"bike":      Small,
		"Standard":  Standard,
		"car":       Standard,
		"OVERSIZED": Oversized,
		" truck ":   Oversized,
	}

	for input, want := range cases {
		got, err := ParseVehicleClass(input)
		if err != nil {
			t.Errorf("Unexpected error for %q: %s", input, err.Error())
			continue
		}
		if got != want {
			t.Errorf("Expected %s for %q, got %s", want, input, got)
		}
	}

	if _, err := ParseVehicleClass("bus"); err == nil {
		t.Error("Expected error for unknown vehicle class")
	}
}
