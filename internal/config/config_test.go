package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-lot-manager/internal/parking"
)

func TestLoadDefaults(t *testing.T) {
	os.Clearenv()
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "cli", cfg.Mode)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "parking-lot-manager", cfg.OTelServiceName)
	assert.Equal(t, "http://localhost:4318", cfg.OTelEndpoint)
	assert.Equal(t, "compact:1,regular:1,large:1", cfg.SpotLayout)
	assert.Equal(t, "hourly", cfg.FeePolicy)
	assert.InDelta(t, 50.0, cfg.FeeUnitRate, 0.001)
	assert.Equal(t, 3, cfg.PaymentRetryAttempts)
	assert.InDelta(t, 20.0, cfg.GateRateLimit, 0.001)
	assert.Equal(t, 40, cfg.GateRateBurst)
	assert.Empty(t, cfg.NATSURL)
	assert.Equal(t, "parking", cfg.NATSSubjectPrefix)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_MODE", "server")
	t.Setenv("PARKING_SPOTS", "regular:4")
	t.Setenv("FEE_POLICY", "flat")
	t.Setenv("FEE_UNIT_RATE", "12.5")
	t.Setenv("PAYMENT_RETRY_ATTEMPTS", "1")
	t.Setenv("NATS_URL", "nats://localhost:4222")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "server", cfg.Mode)
	assert.Equal(t, "regular:4", cfg.SpotLayout)
	assert.Equal(t, "flat", cfg.FeePolicy)
	assert.InDelta(t, 12.5, cfg.FeeUnitRate, 0.001)
	assert.Equal(t, 1, cfg.PaymentRetryAttempts)
	assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
}

func TestInvalidNumericFallsBackToDefault(t *testing.T) {
	t.Setenv("FEE_UNIT_RATE", "fifty")
	t.Setenv("GATE_RATE_BURST", "abc")

	cfg := Load()

	assert.InDelta(t, 50.0, cfg.FeeUnitRate, 0.001)
	assert.Equal(t, 40, cfg.GateRateBurst)
}

func TestParseSpotLayout(t *testing.T) {
	spots, err := ParseSpotLayout("compact:2, regular:1,large:0,large:1")
	require.NoError(t, err)
	require.Len(t, spots, 4)

	expected := []parking.SpotClass{parking.Compact, parking.Compact, parking.Regular, parking.Large}
	for i, spot := range spots {
		assert.Equal(t, i+1, spot.ID())
		assert.Equal(t, expected[i], spot.Class())
	}
}

func TestParseSpotLayoutErrors(t *testing.T) {
	for _, layout := range []string{"", "compact", "tiny:2", "regular:-1", "regular:x", "large:0"} {
		_, err := ParseSpotLayout(layout)
		assert.Error(t, err, "layout %q", layout)
	}
}

func TestRegistryFromConfig(t *testing.T) {
	cfg := &Config{SpotLayout: "compact:1,regular:1,large:1"}

	registry, err := cfg.Registry()
	require.NoError(t, err)
	assert.Equal(t, 3, registry.Capacity())

	spot, ok := registry.FindFree(parking.Standard)
	require.True(t, ok)
	assert.Equal(t, 2, spot.ID())
}

func TestBuildFeePolicy(t *testing.T) {
	entry := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	exit := entry.Add(90 * time.Minute)

	tests := []struct {
		policy   string
		expected float64
	}{
		{policy: "hourly", expected: 75},
		{policy: "hourly_roundup", expected: 100},
		{policy: "flat", expected: 50},
		{policy: "tiered", expected: 75},
	}

	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			cfg := &Config{FeePolicy: tt.policy, FeeUnitRate: 50, FeeTierRates: "small:20"}
			policy, err := cfg.BuildFeePolicy()
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, policy.CalculateFee(entry, exit), 1e-9)
		})
	}

	_, err := (&Config{FeePolicy: "surge"}).BuildFeePolicy()
	assert.Error(t, err)
}

func TestBuildFeePolicyRejectsNegativeRate(t *testing.T) {
	t.Setenv("FEE_UNIT_RATE", "-5")

	cfg := Load()
	assert.InDelta(t, -5.0, cfg.FeeUnitRate, 0.001)

	for _, policy := range []string{"hourly", "hourly_roundup", "flat", "tiered"} {
		cfg.FeePolicy = policy
		_, err := cfg.BuildFeePolicy()
		assert.Error(t, err, policy)
	}
}

func TestParseTierRates(t *testing.T) {
	rates, err := ParseTierRates("small:20, car:50,truck:100")
	require.NoError(t, err)
	assert.Equal(t, map[parking.VehicleClass]float64{
		parking.Small:     20,
		parking.Standard:  50,
		parking.Oversized: 100,
	}, rates)

	_, err = ParseTierRates("bus:10")
	assert.Error(t, err)

	_, err = ParseTierRates("small:cheap")
	assert.Error(t, err)
}
