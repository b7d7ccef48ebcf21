package parking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func TestHourlyPolicy_CalculateFee(t *testing.T) {
	policy := NewHourlyPolicy(50)

	tests := []struct {
		name     string
		elapsed  time.Duration
		expected float64
	}{
		{name: "five minutes bills one unit", elapsed: 300 * time.Second, expected: 50},
		{name: "zero duration bills one unit", elapsed: 0, expected: 50},
		{name: "exactly one hour", elapsed: time.Hour, expected: 50},
		{name: "ninety minutes is pro rated", elapsed: 5400 * time.Second, expected: 75},
		{name: "three hours", elapsed: 3 * time.Hour, expected: 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.CalculateFee(t0, t0.Add(tt.elapsed))
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestRoundUpHourlyPolicy_CalculateFee(t *testing.T) {
	policy := NewRoundUpHourlyPolicy(50)

	assert.InDelta(t, 50.0, policy.CalculateFee(t0, t0.Add(5*time.Minute)), 1e-9)
	assert.InDelta(t, 100.0, policy.CalculateFee(t0, t0.Add(90*time.Minute)), 1e-9)
	assert.InDelta(t, 100.0, policy.CalculateFee(t0, t0.Add(2*time.Hour)), 1e-9)
}

func TestFlatPolicy_CalculateFee(t *testing.T) {
	policy := NewFlatPolicy(30)

	assert.Equal(t, 30.0, policy.CalculateFee(t0, t0.Add(10*time.Hour)))
	assert.Equal(t, 30.0, policy.CalculateFee(t0, t0))
}

func TestTieredPolicy_CalculateClassFee(t *testing.T) {
	policy := NewTieredPolicy(map[VehicleClass]float64{
		Small:     20,
		Oversized: 100,
	}, 50)

	exit := t0.Add(2 * time.Hour)

	assert.InDelta(t, 40.0, policy.CalculateClassFee(Small, t0, exit), 1e-9)
	assert.InDelta(t, 100.0, policy.CalculateClassFee(Standard, t0, exit), 1e-9)
	assert.InDelta(t, 200.0, policy.CalculateClassFee(Oversized, t0, exit), 1e-9)
	assert.InDelta(t, 100.0, policy.CalculateFee(t0, exit), 1e-9)
}

func TestFeeForPrefersClassPolicy(t *testing.T) {
	tiered := NewTieredPolicy(map[VehicleClass]float64{Small: 10}, 50)
	assert.InDelta(t, 10.0, feeFor(tiered, Small, t0, t0.Add(time.Minute)), 1e-9)

	plain := FeeFunc(func(entry, exit time.Time) float64 { return 7 })
	assert.InDelta(t, 7.0, feeFor(plain, Small, t0, t0.Add(time.Minute)), 1e-9)
}
