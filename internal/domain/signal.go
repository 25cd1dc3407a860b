package domain

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidSignal is returned when a trade signal fails validation.
var ErrInvalidSignal = errors.New("invalid trade signal")

// TradeSignal is one concrete trade instruction for the execution guard.
type TradeSignal struct {
	Symbol string `json:"symbol"`
	Action Action `json:"action"`
	// Confidence strength of the signal in [0, 1], drives position sizing.
	Confidence decimal.Decimal `json:"confidence"`
}

// Validate checks the signal before it reaches the execution guard.
// Confidence outside [0,1] must be rejected here, upstream of sizing.
func (s TradeSignal) Validate() error {
	if s.Symbol == "" {
		return errors.Wrap(ErrInvalidSignal, "symbol is required")
	}
	if !s.Action.Valid() {
		return errors.Wrapf(ErrInvalidAction, "%d", int(s.Action))
	}
	if s.Confidence.LessThan(decimal.Zero) || s.Confidence.GreaterThan(decimal.NewFromInt(1)) {
		return errors.Wrapf(ErrInvalidSignal, "confidence %s outside [0,1]", s.Confidence.String())
	}
	return nil
}

// String returns a human-readable representation.
func (s TradeSignal) String() string {
	return fmt.Sprintf("%s %s confidence=%s", s.Action.String(), s.Symbol, s.Confidence.String())
}
