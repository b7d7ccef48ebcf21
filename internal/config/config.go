package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"parking-lot-manager/internal/parking"
)

type Config struct {
	Port                 string
	Mode                 string
	Environment          string
	OTelServiceName      string
	OTelEndpoint         string
	SpotLayout           string
	FeePolicy            string
	FeeUnitRate          float64
	FeeTierRates         string
	PaymentRetryAttempts int
	GateRateLimit        float64
	GateRateBurst        int
	NATSURL              string
	NATSSubjectPrefix    string
}

func Load() *Config {
	return &Config{
		Port:                 envOr("APP_PORT", "8080"),
		Mode:                 envOr("APP_MODE", "cli"),
		Environment:          envOr("APP_ENVIRONMENT", "development"),
		OTelServiceName:      envOr("OTEL_SERVICE_NAME", "parking-lot-manager"),
		OTelEndpoint:         envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
		SpotLayout:           envOr("PARKING_SPOTS", "compact:1,regular:1,large:1"),
		FeePolicy:            envOr("FEE_POLICY", "hourly"),
		FeeUnitRate:          envOrFloat("FEE_UNIT_RATE", 50),
		FeeTierRates:         envOr("FEE_TIER_RATES", "small:20,standard:50,oversized:100"),
		PaymentRetryAttempts: envOrInt("PAYMENT_RETRY_ATTEMPTS", 3),
		GateRateLimit:        envOrFloat("GATE_RATE_LIMIT", 20),
		GateRateBurst:        envOrInt("GATE_RATE_BURST", 40),
		NATSURL:              os.Getenv("NATS_URL"),
		NATSSubjectPrefix:    envOr("NATS_SUBJECT_PREFIX", "parking"),
	}
}

func (c *Config) Telemetry() parking.TelemetryConfig {
	return parking.TelemetryConfig{
		ServiceName:  c.OTelServiceName,
		Environment:  c.Environment,
		OTLPEndpoint: c.OTelEndpoint,
	}
}

// Registry builds the spot registry described by SpotLayout.
func (c *Config) Registry() (*parking.SpotRegistry, error) {
	spots, err := ParseSpotLayout(c.SpotLayout)
	if err != nil {
		return nil, err
	}
	registry := parking.NewSpotRegistry(parking.DefaultClassMap)
	for _, spot := range spots {
		registry.Add(spot)
	}
	return registry, nil
}

// ParseSpotLayout reads "class:count" pairs separated by commas. Spot ids
// are assigned from 1 in the order listed.
func ParseSpotLayout(layout string) ([]*parking.Spot, error) {
	var spots []*parking.Spot
	nextID := 1

	for _, entry := range strings.Split(layout, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		name, countStr, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("spot layout entry %q: want class:count", entry)
		}

		class, err := parking.ParseSpotClass(name)
		if err != nil {
			return nil, fmt.Errorf("spot layout entry %q: %w", entry, err)
		}

		count, err := strconv.Atoi(strings.TrimSpace(countStr))
		if err != nil || count < 0 {
			return nil, fmt.Errorf("spot layout entry %q: invalid count", entry)
		}

		for i := 0; i < count; i++ {
			spots = append(spots, parking.NewSpot(nextID, class))
			nextID++
		}
	}

	if len(spots) == 0 {
		return nil, fmt.Errorf("spot layout %q defines no spots", layout)
	}
	return spots, nil
}

func (c *Config) BuildFeePolicy() (parking.FeePolicy, error) {
	if c.FeeUnitRate < 0 {
		return nil, fmt.Errorf("fee unit rate %v is negative", c.FeeUnitRate)
	}

	switch strings.ToLower(c.FeePolicy) {
	case "hourly":
		return parking.NewHourlyPolicy(c.FeeUnitRate), nil
	case "hourly_roundup":
		return parking.NewRoundUpHourlyPolicy(c.FeeUnitRate), nil
	case "flat":
		return parking.NewFlatPolicy(c.FeeUnitRate), nil
	case "tiered":
		rates, err := ParseTierRates(c.FeeTierRates)
		if err != nil {
			return nil, err
		}
		return parking.NewTieredPolicy(rates, c.FeeUnitRate), nil
	}
	return nil, fmt.Errorf("unknown fee policy %q", c.FeePolicy)
}

// ParseTierRates reads "vehicle_class:rate" pairs separated by commas.
func ParseTierRates(s string) (map[parking.VehicleClass]float64, error) {
	rates := make(map[parking.VehicleClass]float64)
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		name, rateStr, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("tier rate entry %q: want class:rate", entry)
		}

		class, err := parking.ParseVehicleClass(name)
		if err != nil {
			return nil, fmt.Errorf("tier rate entry %q: %w", entry, err)
		}

		rate, err := strconv.ParseFloat(strings.TrimSpace(rateStr), 64)
		if err != nil || rate < 0 {
			return nil, fmt.Errorf("tier rate entry %q: invalid rate", entry)
		}
		rates[class] = rate
	}
	return rates, nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envOrFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
