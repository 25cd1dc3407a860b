package credit

import "github.com/shopspring/decimal"

// Params are the trading parameters attached to a rating bucket.
type Params struct {
	// InterestRate annualized borrow rate for the tier.
	InterestRate decimal.Decimal
	// CollateralRatio collateral required per unit borrowed.
	CollateralRatio decimal.Decimal
	// TradeCeiling maximum USD notional a single trade may reach.
	TradeCeiling decimal.Decimal
}

// paramsTable is ordered most to least favorable. Values are fixed per
// session; there is no dynamic repricing.
var paramsTable = map[Rating]Params{
	RatingAAA: {
		InterestRate:    decimal.RequireFromString("0.03"),
		CollateralRatio: decimal.RequireFromString("1.1"),
		TradeCeiling:    decimal.NewFromInt(50000),
	},
	RatingAA: {
		InterestRate:    decimal.RequireFromString("0.05"),
		CollateralRatio: decimal.RequireFromString("1.25"),
		TradeCeiling:    decimal.NewFromInt(30000),
	},
	RatingA: {
		InterestRate:    decimal.RequireFromString("0.08"),
		CollateralRatio: decimal.RequireFromString("1.4"),
		TradeCeiling:    decimal.NewFromInt(20000),
	},
	RatingBBB: {
		InterestRate:    decimal.RequireFromString("0.12"),
		CollateralRatio: decimal.RequireFromString("1.6"),
		TradeCeiling:    decimal.NewFromInt(10000),
	},
	RatingBB: {
		InterestRate:    decimal.RequireFromString("0.18"),
		CollateralRatio: decimal.RequireFromString("1.8"),
		TradeCeiling:    decimal.NewFromInt(5000),
	},
	RatingB: {
		InterestRate:    decimal.RequireFromString("0.25"),
		CollateralRatio: decimal.NewFromInt(2),
		TradeCeiling:    decimal.NewFromInt(1000),
	},
}

// Resolve maps a rating to its fixed parameter set. An unrecognized
// rating resolves to the most conservative bucket instead of failing,
// so a garbled upstream rating can only make the system more cautious.
func Resolve(rating Rating) Params {
	if params, ok := paramsTable[rating]; ok {
		return params
	}
	return paramsTable[RatingB]
}
