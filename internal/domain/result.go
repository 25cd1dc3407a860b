package domain

// TradeStatus is the outcome class of one processed signal.
type TradeStatus string

const (
	// StatusSuccess the trade executed and the ledger was mutated.
	StatusSuccess TradeStatus = "success"
	// StatusFailed the trade was rejected, the ledger is untouched.
	StatusFailed TradeStatus = "failed"
	// StatusSkipped no actionable signal was derived, nothing to do.
	StatusSkipped TradeStatus = "skipped"
)

// TradeResult is returned to the caller for every processed signal.
// Rejections are reported here as results, not as errors.
type TradeResult struct {
	Status TradeStatus `json:"status"`
	// Reason populated for failed and skipped outcomes.
	Reason string `json:"reason,omitempty"`
	// Transaction populated only on success.
	Transaction *TransactionRecord `json:"transaction,omitempty"`
}

// Skipped builds a non-error "nothing to do" result.
func Skipped(reason string) TradeResult {
	return TradeResult{Status: StatusSkipped, Reason: reason}
}

// Failed builds a structured rejection result.
func Failed(reason string) TradeResult {
	return TradeResult{Status: StatusFailed, Reason: reason}
}

// Executed builds a success result carrying the appended record.
func Executed(tx *TransactionRecord) TradeResult {
	return TradeResult{Status: StatusSuccess, Transaction: tx}
}
