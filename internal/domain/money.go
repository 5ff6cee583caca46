package domain

import "github.com/shopspring/decimal"

// RoundCurrency rounds a monetary value to two decimal places, half up.
// Every amount must pass through here before it is persisted or compared;
// repeated float64 add/subtract drifts otherwise.
func RoundCurrency(x float64) float64 {
	v, _ := decimal.NewFromFloat(x).Round(2).Float64()
	return v
}

// CommissionFor computes the platform's cut of amount at the given rate.
func CommissionFor(amount, rate float64) float64 {
	v, _ := decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(rate)).
		Round(2).
		Float64()
	return v
}

// StoreEarningsFor is the remainder owed to the store after commission.
func StoreEarningsFor(amount, commission float64) float64 {
	v, _ := decimal.NewFromFloat(amount).
		Sub(decimal.NewFromFloat(commission)).
		Round(2).
		Float64()
	return v
}
