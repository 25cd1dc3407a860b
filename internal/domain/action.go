package domain

import (
	"strings"

	"github.com/pkg/errors"
)

// Action represents the side of a trade.
type Action int

const (
	ActionBuy Action = iota
	ActionSell
)

const (
	actionStringBuy  = "BUY"
	actionStringSell = "SELL"
)

// ErrInvalidAction is returned for action values outside the known set.
// Callers must treat it as a caller error, not a recoverable rejection.
var ErrInvalidAction = errors.New("invalid action")

// ParseAction converts a string into a typed Action. Matching is
// case-insensitive; anything but BUY or SELL fails with ErrInvalidAction.
func ParseAction(s string) (Action, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case actionStringBuy:
		return ActionBuy, nil
	case actionStringSell:
		return ActionSell, nil
	default:
		return 0, errors.Wrapf(ErrInvalidAction, "%q", s)
	}
}

// String returns the canonical string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionBuy:
		return actionStringBuy
	case ActionSell:
		return actionStringSell
	default:
		return "unknown"
	}
}

// Valid reports whether the action is one of the known values.
func (a Action) Valid() bool {
	return a == ActionBuy || a == ActionSell
}

// MarshalJSON encodes the action as its canonical string.
func (a Action) MarshalJSON() ([]byte, error) {
	if !a.Valid() {
		return nil, errors.Wrapf(ErrInvalidAction, "%d", int(a))
	}
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON decodes an action from its string form.
func (a *Action) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseAction(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
