package advisor

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func closesFrom(values []float64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.NewFromFloat(v)
	}
	return out
}

// risingCloses yields a strictly climbing series: RSI pins at 100 and
// the fast EMA sits above the slow one.
func risingCloses(n int) []decimal.Decimal {
	values := make([]float64, n)
	for i := range values {
		values[i] = 100 + float64(i)
	}
	return closesFrom(values)
}

// fallingCloses yields a strictly declining series: RSI pins at 0.
func fallingCloses(n int) []decimal.Decimal {
	values := make([]float64, n)
	for i := range values {
		values[i] = 500 - float64(i)
	}
	return closesFrom(values)
}

func TestAdviseRequiresEnoughHistory(t *testing.T) {
	a := New(zap.NewNop())

	_, err := a.Advise("VIRTUAL", risingCloses(50))
	assert.Error(t, err)

	_, err = a.Advise("VIRTUAL", risingCloses(51))
	assert.NoError(t, err)
}

func TestAdviseOverbought(t *testing.T) {
	a := New(zap.NewNop())

	directive, err := a.Advise("VIRTUAL", risingCloses(120))
	require.NoError(t, err)

	assert.Equal(t, []string{"VIRTUAL"}, directive.Strategy.TargetSectors)
	assert.Equal(t, "reduce exposure into overbought strength", directive.Strategy.ActionDirective)
	assert.Equal(t, "conservative", directive.RiskPolicy.RiskAppetite)
}

func TestAdviseNoEdgeOnDowntrend(t *testing.T) {
	a := New(zap.NewNop())

	// Deep oversold but no uptrend: the advisor refuses to catch the
	// falling knife and emits a non-actionable directive.
	directive, err := a.Advise("VIRTUAL", fallingCloses(120))
	require.NoError(t, err)
	assert.Equal(t, "hold, no edge", directive.Strategy.ActionDirective)
}

func TestAdviseFlatMarketHolds(t *testing.T) {
	a := New(zap.NewNop())

	values := make([]float64, 120)
	for i := range values {
		values[i] = 100
		if i%2 == 1 {
			values[i] = 100.5
		}
	}
	directive, err := a.Advise("VIRTUAL", closesFrom(values))
	require.NoError(t, err)
	assert.Equal(t, "hold, no edge", directive.Strategy.ActionDirective)
}
