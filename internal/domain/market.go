package domain

import "github.com/shopspring/decimal"

// MarketData is the externally supplied view of one symbol's market.
// Absence of a symbol from a snapshot means "unknown", never "free":
// the execution guard treats unknown liquidity as insufficient and the
// ledger values unknown-priced holdings at zero (a conservative floor).
type MarketData struct {
	PriceUsd decimal.Decimal `json:"price_usd"`
	// Liquidity is meaningful only when LiquidityKnown is set. Venues
	// without depth data leave both unset; a reported zero is not the
	// same thing as no report.
	Liquidity      decimal.Decimal `json:"liquidity"`
	LiquidityKnown bool            `json:"liquidity_known"`
	Volume         decimal.Decimal `json:"volume"`
}

// MarketSnapshot maps symbol to its already-resolved market data for one
// cycle. The core never fetches; collaborators fill this in beforehand.
type MarketSnapshot map[string]MarketData

// Price returns the price for a symbol and whether it is known.
func (m MarketSnapshot) Price(symbol string) (decimal.Decimal, bool) {
	data, ok := m[symbol]
	return data.PriceUsd, ok
}

// Liquidity returns pool liquidity for a symbol and whether it is known.
// A symbol present with only a price still has unknown liquidity.
func (m MarketSnapshot) Liquidity(symbol string) (decimal.Decimal, bool) {
	data, ok := m[symbol]
	return data.Liquidity, ok && data.LiquidityKnown
}
