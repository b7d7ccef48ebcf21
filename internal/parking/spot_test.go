package parking

import "testing"

func TestNewSpot(t *testing.T) {
	spot := NewSpot(7, Large)

	if spot.ID() != 7 {
		t.Errorf("Expected spot id 7, got %d", spot.ID())
	}

	if spot.Class() != Large {
		t.Errorf("Expected class large, got %s", spot.Class())
	}

	if spot.IsOccupied() {
		t.Error("Expected new spot to be free")
	}
}

func TestParseSpotClass(t *testing.T) {
	for _, sc := range []SpotClass{Compact, Regular, Large} {
		got, err := ParseSpotClass(sc.String())
		if err != nil {
			t.Errorf("Unexpected error: %s", err.Error())
		}
		if got != sc {
			t.Errorf("Expected %s, got %s", sc, got)
		}
	}

	if _, err := ParseSpotClass("xl"); err == nil {
		t.Error("Expected error for unknown spot class")
	}
}

func newTestRegistry() *SpotRegistry {
	r := NewSpotRegistry(nil)
	r.Add(NewSpot(1, Compact))
	r.Add(NewSpot(2, Regular))
	r.Add(NewSpot(3, Large))
	r.Add(NewSpot(4, Regular))
	return r
}

func TestRegistryFindFreeMatchesClass(t *testing.T) {
	r := newTestRegistry()

	for vc, sc := range DefaultClassMap {
		spot, ok := r.FindFree(vc)
		if !ok {
			t.Fatalf("Expected a free spot for %s", vc)
		}
		if spot.Class() != sc {
			t.Errorf("Expected %s spot for %s, got %s", sc, vc, spot.Class())
		}
	}
}

func TestRegistryFindFreeRegistrationOrder(t *testing.T) {
	r := newTestRegistry()

	spot, _ := r.FindFree(Standard)
	if spot.ID() != 2 {
		t.Errorf("Expected spot 2, got %d", spot.ID())
	}

	r.Reserve(spot)

	spot, _ = r.FindFree(Standard)
	if spot.ID() != 4 {
		t.Errorf("Expected spot 4, got %d", spot.ID())
	}

	r.Reserve(spot)

	if _, ok := r.FindFree(Standard); ok {
		t.Error("Expected no free regular spot")
	}

	if r.Occupied() != 2 {
		t.Errorf("Expected 2 occupied spots, got %d", r.Occupied())
	}
}

func TestRegistryNoCrossClassSubstitution(t *testing.T) {
	r := NewSpotRegistry(nil)
	r.Add(NewSpot(1, Regular))
	r.Add(NewSpot(2, Large))

	if _, ok := r.FindFree(Small); ok {
		t.Error("Expected small vehicle not to be offered a larger spot")
	}
}

func TestRegistryCustomClassMap(t *testing.T) {
	r := NewSpotRegistry(ClassMap{Small: Regular})
	r.Add(NewSpot(1, Compact))
	r.Add(NewSpot(2, Regular))

	spot, ok := r.FindFree(Small)
	if !ok || spot.ID() != 2 {
		t.Errorf("Expected spot 2 under custom mapping, got %v", spot)
	}

	if _, ok := r.FindFree(Oversized); ok {
		t.Error("Expected unmapped vehicle class to find nothing")
	}
}

func TestRegistryReleaseFreesSpot(t *testing.T) {
	r := newTestRegistry()
	spot, _ := r.FindFree(Small)

	r.Reserve(spot)
	r.Release(spot)

	if spot.IsOccupied() {
		t.Error("Expected spot to be free after release")
	}
}

func TestRegistryDoubleReservePanics(t *testing.T) {
	r := newTestRegistry()
	spot, _ := r.FindFree(Small)
	r.Reserve(spot)

	defer func() {
		if recover() == nil {
			t.Error("Expected panic when reserving an occupied spot")
		}
	}()

	r.Reserve(spot)
}

func TestRegistryReleaseFreeSpotPanics(t *testing.T) {
	r := newTestRegistry()
	spot, _ := r.FindFree(Small)

	defer func() {
		if recover() == nil {
			t.Error("Expected panic when releasing a free spot")
		}
	}()

	r.Release(spot)
}
