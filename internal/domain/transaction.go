package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRecord is an immutable fact about one executed paper trade.
// Records are append-only: once written to history they are never changed.
type TransactionRecord struct {
	ID          string          `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	Symbol      string          `json:"symbol"`
	Action      Action          `json:"action"`
	Price       decimal.Decimal `json:"price"`
	TokenAmount decimal.Decimal `json:"amount_token"`
	UsdAmount   decimal.Decimal `json:"amount_usd"`
	// Reason free-text provenance, e.g. which directive produced the trade.
	Reason string `json:"reason,omitempty"`
}

// String returns a human-readable one-line summary.
func (t *TransactionRecord) String() string {
	return fmt.Sprintf("%s %s %s @ %s ($%s)",
		t.Action.String(), t.TokenAmount.String(), t.Symbol, t.Price.String(), t.UsdAmount.String())
}
