package parking

// SpotRegistry owns every spot of the lot for the lifetime of the process.
// It is not safe for concurrent use; the Manager serialises access.
type SpotRegistry struct {
	spots    []*Spot
	classMap ClassMap
}

func NewSpotRegistry(classMap ClassMap) *SpotRegistry {
	if classMap == nil {
		classMap = DefaultClassMap
	}
	return &SpotRegistry{classMap: classMap}
}

// Add appends a spot. Callers are trusted to pass unique ids.
func (r *SpotRegistry) Add(spot *Spot) {
	r.spots = append(r.spots, spot)
}

// FindFree returns the first free spot, in registration order, whose class
// matches the one required for vc. A false result means the lot is full for
// that class.
func (r *SpotRegistry) FindFree(vc VehicleClass) (*Spot, bool) {
	want, ok := r.classMap.SpotClassFor(vc)
	if !ok {
		return nil, false
	}
	for _, spot := range r.spots {
		if spot.class == want && !spot.occupied {
			return spot, true
		}
	}
	return nil, false
}

// Reserve marks spot occupied. It panics if the spot is already occupied.
func (r *SpotRegistry) Reserve(spot *Spot) {
	spot.occupy()
}

// Release marks spot free. It panics if the spot is already free.
func (r *SpotRegistry) Release(spot *Spot) {
	spot.free()
}

func (r *SpotRegistry) Spots() []*Spot {
	out := make([]*Spot, len(r.spots))
	copy(out, r.spots)
	return out
}

func (r *SpotRegistry) Capacity() int {
	return len(r.spots)
}

func (r *SpotRegistry) Occupied() int {
	n := 0
	for _, spot := range r.spots {
		if spot.occupied {
			n++
		}
	}
	return n
}
