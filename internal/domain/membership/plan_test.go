package membership

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlan(t *testing.T) {
	tests := []struct {
		name     string
		planType string
		amount   string
		duration int
		wantErr  bool
	}{
		{"valid", "Basic", "999", 1, false},
		{"empty type", "  ", "999", 1, true},
		{"zero amount", "basic", "0", 1, true},
		{"negative amount", "basic", "-10", 1, true},
		{"zero duration", "basic", "999", 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPlan(tc.planType, decimal.RequireFromString(tc.amount), tc.duration)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "basic", p.Key())
		})
	}
}

func TestPlan_TotalPrice(t *testing.T) {
	p, err := NewPlan("quarterly", decimal.RequireFromString("999.50"), 3)
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("2998.50").Equal(p.TotalPrice()))
}

func TestPlan_Update(t *testing.T) {
	p, err := NewPlan("monthly", decimal.NewFromInt(1000), 1)
	require.NoError(t, err)

	require.NoError(t, p.Update(decimal.NewFromInt(1200), 2))
	assert.True(t, decimal.NewFromInt(1200).Equal(p.Amount()))
	assert.Equal(t, 2, p.Duration())

	assert.Error(t, p.Update(decimal.Zero, 2))
	assert.Error(t, p.Update(decimal.NewFromInt(1), 0))
}
