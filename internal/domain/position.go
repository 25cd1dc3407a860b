// Package domain defines the core data structures of the paper-trading
// ledger: positions, transactions, trade signals and market snapshots.
package domain

import (
	"github.com/shopspring/decimal"
)

// DustEpsilon is the holding size below which a position is considered
// empty and removed from the ledger.
var DustEpsilon = decimal.RequireFromString("0.000001")

// Position is a single held asset inside the paper wallet.
type Position struct {
	// Amount quantity of the asset held, never negative.
	Amount decimal.Decimal `json:"amount"`
	// AvgCostBasis dollar-weighted average purchase price.
	// Updated only on buys, a sell never moves it.
	AvgCostBasis decimal.Decimal `json:"avg_cost_basis"`
}

// IsDust reports whether the position is small enough to be cleaned up.
func (p Position) IsDust() bool {
	return p.Amount.LessThan(DustEpsilon)
}

// Value returns the current market value of the position.
func (p Position) Value(price decimal.Decimal) decimal.Decimal {
	return p.Amount.Mul(price)
}

// UnrealizedPnL returns profit or loss against the average cost basis.
func (p Position) UnrealizedPnL(price decimal.Decimal) decimal.Decimal {
	return price.Sub(p.AvgCostBasis).Mul(p.Amount)
}
