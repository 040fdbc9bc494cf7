package money_test

import (
	"testing"

	"github.com/amirasaad/finsync/pkg/domain/money"
	"github.com/stretchr/testify/assert"
)

func TestArithmetic_NoDrift(t *testing.T) {
	assert.Equal(t, 0.3, money.Add(0.1, 0.2))
	assert.Equal(t, 0.1, money.Sub(0.3, 0.2))
	assert.Equal(t, 33.33, money.Mul(100, 0.3333))
	assert.Equal(t, 10.13, money.Round(10.125))
}

func TestSum(t *testing.T) {
	type item struct{ v float64 }
	items := []item{{0.1}, {0.2}, {0.3}, {-0.6}}
	assert.Equal(t, 0.0, money.Sum(items, func(i item) float64 { return i.v }))
	assert.Equal(t, 0.0, money.Sum([]item{}, func(i item) float64 { return i.v }))
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		pct      float64
		expected float64
	}{
		{"whole", 1000, 10, 100},
		{"fraction", 1000, 0.85, 8.5},
		{"zero", 0, 50, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, money.Percent(tt.amount, tt.pct), 0.001)
		})
	}
}
