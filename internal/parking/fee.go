package parking

import (
	"math"
	"time"
)

// FeePolicy maps a parked interval to an amount. Implementations must be pure.
type FeePolicy interface {
	CalculateFee(entry, exit time.Time) float64
}

// ClassFeePolicy is implemented by policies that price by vehicle class.
// The Manager prefers it over CalculateFee when available.
type ClassFeePolicy interface {
	FeePolicy
	CalculateClassFee(class VehicleClass, entry, exit time.Time) float64
}

type FeeFunc func(entry, exit time.Time) float64

func (f FeeFunc) CalculateFee(entry, exit time.Time) float64 {
	return f(entry, exit)
}

// HourlyPolicy bills elapsed hours pro rata with a minimum of one hour.
type HourlyPolicy struct {
	UnitRate float64
}

func NewHourlyPolicy(unitRate float64) *HourlyPolicy {
	return &HourlyPolicy{UnitRate: unitRate}
}

func (p *HourlyPolicy) CalculateFee(entry, exit time.Time) float64 {
	return billedHours(entry, exit) * p.UnitRate
}

// RoundUpHourlyPolicy bills every started hour in full.
type RoundUpHourlyPolicy struct {
	UnitRate float64
}

func NewRoundUpHourlyPolicy(unitRate float64) *RoundUpHourlyPolicy {
	return &RoundUpHourlyPolicy{UnitRate: unitRate}
}

func (p *RoundUpHourlyPolicy) CalculateFee(entry, exit time.Time) float64 {
	return math.Ceil(billedHours(entry, exit)) * p.UnitRate
}

type FlatPolicy struct {
	Amount float64
}

func NewFlatPolicy(amount float64) *FlatPolicy {
	return &FlatPolicy{Amount: amount}
}

func (p *FlatPolicy) CalculateFee(_, _ time.Time) float64 {
	return p.Amount
}

// TieredPolicy applies hourly billing with a unit rate per vehicle class.
// Classes without a rate use DefaultRate.
type TieredPolicy struct {
	Rates       map[VehicleClass]float64
	DefaultRate float64
}

func NewTieredPolicy(rates map[VehicleClass]float64, defaultRate float64) *TieredPolicy {
	return &TieredPolicy{
		Rates:       rates,
		DefaultRate: defaultRate,
	}
}

func (p *TieredPolicy) CalculateFee(entry, exit time.Time) float64 {
	return billedHours(entry, exit) * p.DefaultRate
}

func (p *TieredPolicy) CalculateClassFee(class VehicleClass, entry, exit time.Time) float64 {
	rate, ok := p.Rates[class]
	if !ok {
		rate = p.DefaultRate
	}
	return billedHours(entry, exit) * rate
}

func billedHours(entry, exit time.Time) float64 {
	return math.Max(1, exit.Sub(entry).Hours())
}

func feeFor(policy FeePolicy, class VehicleClass, entry, exit time.Time) float64 {
	if cp, ok := policy.(ClassFeePolicy); ok {
		return cp.CalculateClassFee(class, entry, exit)
	}
	return policy.CalculateFee(entry, exit)
}
