// Package advisor synthesizes a fallback strategy directive from
// recent price action when no external planning collaborator supplies
// one. It is intentionally simple: RSI extremes gated by EMA trend.
package advisor

import (
	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/7272yusuke-design/openclaw/internal/domain"
)

const (
	rsiPeriod     = 14
	emaFastPeriod = 20
	emaSlowPeriod = 50

	oversoldLevel   = 30.0
	overboughtLevel = 70.0
)

// Advisor derives directives from close-price history.
type Advisor struct {
	logger *zap.Logger
}

// New creates an Advisor.
func New(logger *zap.Logger) *Advisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Advisor{logger: logger}
}

// Advise builds a directive for symbol from its recent closes, oldest
// first. At least emaSlowPeriod+1 closes are required. When the market
// is neither oversold-in-uptrend nor overbought, the returned directive
// carries no actionable instruction and the translator will skip it.
func (a *Advisor) Advise(symbol string, closes []decimal.Decimal) (domain.StrategyDirective, error) {
	if len(closes) < emaSlowPeriod+1 {
		return domain.StrategyDirective{}, errors.Errorf(
			"not enough closes for advisor: need %d, got %d", emaSlowPeriod+1, len(closes))
	}

	values := make([]float64, len(closes))
	for i, c := range closes {
		values[i], _ = c.Float64()
	}

	rsi := lastOf(momentum.NewRsiWithPeriod[float64](rsiPeriod).Compute(helper.SliceToChan(values)))
	emaFast := lastOf(trend.NewEmaWithPeriod[float64](emaFastPeriod).Compute(helper.SliceToChan(values)))
	emaSlow := lastOf(trend.NewEmaWithPeriod[float64](emaSlowPeriod).Compute(helper.SliceToChan(values)))

	uptrend := emaFast > emaSlow

	directive := domain.StrategyDirective{
		RiskPolicy: domain.RiskPolicy{RiskAppetite: "conservative"},
		Strategy: domain.Strategy{
			TargetSectors: []string{symbol},
			AuditSummary:  "synthesized by momentum advisor",
		},
	}

	switch {
	case rsi <= oversoldLevel && uptrend:
		directive.Strategy.ActionDirective = "accumulate on oversold pullback within uptrend"
		directive.RiskPolicy.RiskAppetite = "balanced"
	case rsi >= overboughtLevel:
		directive.Strategy.ActionDirective = "reduce exposure into overbought strength"
	default:
		directive.Strategy.ActionDirective = "hold, no edge"
	}

	a.logger.Debug("advisor verdict",
		zap.String("symbol", symbol),
		zap.Float64("rsi", rsi),
		zap.Bool("uptrend", uptrend),
		zap.String("directive", directive.Strategy.ActionDirective))

	return directive, nil
}

// lastOf drains an indicator output channel and keeps the final value.
func lastOf(ch <-chan float64) float64 {
	var last float64
	for v := range ch {
		last = v
	}
	return last
}
