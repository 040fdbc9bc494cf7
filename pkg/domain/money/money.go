// Package money does currency arithmetic on float amounts through decimals so
// that sums and cached totals do not drift.
package money

import "github.com/shopspring/decimal"

// Places is the number of decimal places kept for currency amounts.
const Places = 2

// Round rounds an amount to cents.
func Round(amount float64) float64 {
	f, _ := decimal.NewFromFloat(amount).Round(Places).Float64()
	return f
}

// Add returns a+b rounded to cents.
func Add(a, b float64) float64 {
	f, _ := decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).Round(Places).Float64()
	return f
}

// Sub returns a-b rounded to cents.
func Sub(a, b float64) float64 {
	f, _ := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Round(Places).Float64()
	return f
}

// Mul returns a*b rounded to cents.
func Mul(a, b float64) float64 {
	f, _ := decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b)).Round(Places).Float64()
	return f
}

// Sum adds the amounts selected from items.
func Sum[T any](items []T, amount func(T) float64) float64 {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(decimal.NewFromFloat(amount(it)))
	}
	f, _ := total.Round(Places).Float64()
	return f
}

// Percent returns pct percent of amount, unrounded beyond cents.
func Percent(amount, pct float64) float64 {
	f, _ := decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(pct)).
		Div(decimal.NewFromInt(100)).
		Round(Places).
		Float64()
	return f
}
