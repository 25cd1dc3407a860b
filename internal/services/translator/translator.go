// Package translator maps a planning directive and a resolved credit
// rating into one concrete trade signal for the execution guard.
package translator

import (
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/7272yusuke-design/openclaw/internal/credit"
	"github.com/7272yusuke-design/openclaw/internal/domain"
)

// Confidence assigned per declared risk appetite before rating scaling.
var appetiteConfidence = map[string]decimal.Decimal{
	"conservative": decimal.RequireFromString("0.25"),
	"balanced":     decimal.RequireFromString("0.5"),
	"aggressive":   decimal.RequireFromString("0.75"),
}

var (
	buyKeywords  = []string{"buy", "accumulate", "enter", "add", "increase"}
	sellKeywords = []string{"sell", "exit", "reduce", "take profit", "unwind"}
)

// Translator derives trade signals from strategy directives.
type Translator struct {
	logger *zap.Logger
}

// New creates a Translator.
func New(logger *zap.Logger) *Translator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Translator{logger: logger}
}

// Translate derives one trade signal from a directive and the
// counterparty's resolved rating. When no actionable instruction can be
// derived it returns ok=false: a legitimate skip, never a guess and
// never an error.
func (t *Translator) Translate(directive domain.StrategyDirective, rating credit.Rating) (domain.TradeSignal, bool) {
	action, ok := parseActionDirective(directive.Strategy.ActionDirective)
	if !ok {
		t.logger.Info("directive carries no actionable instruction, skipping",
			zap.String("action_directive", directive.Strategy.ActionDirective))
		return domain.TradeSignal{}, false
	}

	symbol := firstSymbol(directive.Strategy.TargetSectors)
	if symbol == "" {
		t.logger.Info("directive names no target sector, skipping")
		return domain.TradeSignal{}, false
	}

	// A buy below the planner's rating floor is not a tradable signal.
	if action == domain.ActionBuy && !rating.AtLeast(credit.Rating(directive.RiskPolicy.MinRating)) {
		t.logger.Info("counterparty rating below planner floor, skipping",
			zap.String("rating", string(rating)),
			zap.String("min_rating", directive.RiskPolicy.MinRating))
		return domain.TradeSignal{}, false
	}

	return domain.TradeSignal{
		Symbol:     symbol,
		Action:     action,
		Confidence: confidenceFor(directive.RiskPolicy.RiskAppetite, rating),
	}, true
}

// parseActionDirective scans the free-text instruction for a trade
// verb. Directives mentioning both sides are ambiguous and skipped.
func parseActionDirective(text string) (domain.Action, bool) {
	lowered := strings.ToLower(text)

	buy := containsAny(lowered, buyKeywords)
	sell := containsAny(lowered, sellKeywords)

	switch {
	case buy && !sell:
		return domain.ActionBuy, true
	case sell && !buy:
		return domain.ActionSell, true
	default:
		return 0, false
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func firstSymbol(sectors []string) string {
	for _, s := range sectors {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			return strings.ToUpper(trimmed)
		}
	}
	return ""
}

// confidenceFor scales the appetite baseline down as the rating tier
// worsens. AAA keeps the full baseline, B halves it.
func confidenceFor(appetite string, rating credit.Rating) decimal.Decimal {
	base, ok := appetiteConfidence[strings.ToLower(strings.TrimSpace(appetite))]
	if !ok {
		base = appetiteConfidence["conservative"]
	}

	// tier 0 -> 1.0, tier 5 -> 0.5
	tier := decimal.NewFromInt(int64(rating.Tier()))
	scale := decimal.NewFromInt(1).Sub(tier.Div(decimal.NewFromInt(10)))

	return base.Mul(scale)
}
