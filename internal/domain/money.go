package domain

import "github.com/shopspring/decimal"

const DefaultCurrency = "inr"

// QuantizeMoney rounds a monetary value to 2 fraction digits, half up.
func QuantizeMoney(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// FromMinorUnits converts a provider amount in minor units (paise, cents)
// into a quantized decimal amount.
func FromMinorUnits(amount int64) decimal.Decimal {
	return QuantizeMoney(decimal.New(amount, -2))
}
