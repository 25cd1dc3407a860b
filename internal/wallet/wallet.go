// Package wallet implements the durable paper-trading ledger: cash,
// holdings with weighted-average cost basis, and an append-only
// transaction history persisted after every mutation.
package wallet

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/7272yusuke-design/openclaw/internal/domain"
)

var (
	// ErrInsufficientFunds a buy exceeds the available cash balance.
	ErrInsufficientFunds = errors.New("insufficient USD funds")
	// ErrNoHoldings a sell targets a symbol with nothing held.
	ErrNoHoldings = errors.New("no holdings to sell")
)

// LoadOutcome tells the caller how the account came into being, so a
// reinitialization after corruption can be alerted on instead of
// passing silently.
type LoadOutcome int

const (
	// OutcomeFresh no prior state existed, a new account was created.
	OutcomeFresh LoadOutcome = iota
	// OutcomeLoaded prior state was restored intact.
	OutcomeLoaded
	// OutcomeReinitialized prior state was corrupt, quarantined, and a
	// fresh account created in its place.
	OutcomeReinitialized
)

// String returns the outcome name.
func (o LoadOutcome) String() string {
	switch o {
	case OutcomeLoaded:
		return "loaded"
	case OutcomeReinitialized:
		return "reinitialized"
	default:
		return "fresh"
	}
}

// Auditor mirrors executed transactions into an append-only audit sink.
type Auditor interface {
	Append(tx domain.TransactionRecord) error
}

// Wallet is the single shared mutable ledger. Every read-modify-write
// runs under the mutex; ApplyTrade is the only mutator of balances.
type Wallet struct {
	mu      sync.Mutex
	store   *Store
	logger  *zap.Logger
	auditor Auditor
	now     func() time.Time

	cash      decimal.Decimal
	holdings  map[string]domain.Position
	history   []domain.TransactionRecord
	createdAt time.Time
	updatedAt time.Time
}

// Option configures a Wallet.
type Option func(*Wallet)

// WithAuditor attaches an append-only audit sink for executed trades.
func WithAuditor(a Auditor) Option {
	return func(w *Wallet) {
		w.auditor = a
	}
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(w *Wallet) {
		w.now = now
	}
}

// Open loads the wallet from its store or initializes a fresh account
// with the given starting balance. A corrupt state file is quarantined
// next to the original and the outcome reported as OutcomeReinitialized.
func Open(store *Store, initialBalance decimal.Decimal, logger *zap.Logger, opts ...Option) (*Wallet, LoadOutcome, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if initialBalance.LessThan(decimal.Zero) {
		return nil, OutcomeFresh, errors.Errorf("initial balance must not be negative, got %s", initialBalance.String())
	}

	w := &Wallet{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}

	state, err := store.Load()
	outcome := OutcomeLoaded
	switch {
	case err == nil && state == nil:
		outcome = OutcomeFresh
	case errors.Is(err, ErrCorrupt):
		backup, qerr := store.Quarantine(w.now())
		if qerr != nil {
			return nil, OutcomeFresh, qerr
		}
		logger.Error("wallet state corrupt, quarantined and reinitializing",
			zap.String("backup", backup),
			zap.Error(err))
		outcome = OutcomeReinitialized
	case err != nil:
		return nil, OutcomeFresh, err
	}

	if outcome == OutcomeLoaded {
		w.cash = state.CashBalance
		w.holdings = state.Holdings
		if w.holdings == nil {
			w.holdings = make(map[string]domain.Position)
		}
		w.history = state.History
		w.createdAt = state.CreatedAt
		w.updatedAt = state.LastUpdatedAt
	} else {
		w.initFresh(initialBalance)
		if err := w.persistLocked(); err != nil {
			return nil, outcome, err
		}
	}

	logger.Info("wallet open",
		zap.String("outcome", outcome.String()),
		zap.String("cash", w.cash.String()),
		zap.Int("holdings", len(w.holdings)),
		zap.Int("history", len(w.history)))

	return w, outcome, nil
}

func (w *Wallet) initFresh(initialBalance decimal.Decimal) {
	now := w.now()
	w.cash = initialBalance
	w.holdings = make(map[string]domain.Position)
	w.history = nil
	w.createdAt = now
	w.updatedAt = now
}

// Balance returns the current cash balance.
func (w *Wallet) Balance() decimal.Decimal {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cash
}

// Holding returns the position for a symbol. An absent symbol is a zero
// position.
func (w *Wallet) Holding(symbol string) (domain.Position, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	pos, ok := w.holdings[symbol]
	return pos, ok
}

// History returns a copy of the transaction history in insertion order.
func (w *Wallet) History() []domain.TransactionRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]domain.TransactionRecord, len(w.history))
	copy(out, w.history)
	return out
}

// PortfolioValue returns cash plus the market value of all holdings.
// A symbol missing from the snapshot contributes zero, which keeps the
// valuation a conservative floor rather than masking risk.
func (w *Wallet) PortfolioValue(snapshot domain.MarketSnapshot) decimal.Decimal {
	w.mu.Lock()
	defer w.mu.Unlock()

	total := w.cash
	for symbol, pos := range w.holdings {
		if price, ok := snapshot.Price(symbol); ok {
			total = total.Add(pos.Value(price))
		}
	}
	return total
}

// ApplyTrade is the only ledger mutator. On success it appends exactly
// one transaction record and persists the full snapshot before
// returning. On any failure the ledger is left unmodified.
func (w *Wallet) ApplyTrade(symbol string, action domain.Action, usdAmount, price decimal.Decimal, reason string) (*domain.TransactionRecord, error) {
	if !action.Valid() {
		return nil, errors.Wrapf(domain.ErrInvalidAction, "%d", int(action))
	}
	if symbol == "" {
		return nil, errors.New("symbol is required")
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return nil, errors.Errorf("price must be positive, got %s", price.String())
	}
	if usdAmount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.Errorf("usd amount must be positive, got %s", usdAmount.String())
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	// Captured so a failed persist can roll the in-memory ledger back:
	// disk and memory must never diverge.
	prevCash := w.cash
	prevPos, prevHeld := w.holdings[symbol]
	prevUpdated := w.updatedAt

	tokenAmount := usdAmount.Div(price)

	switch action {
	case domain.ActionBuy:
		if w.cash.LessThan(usdAmount) {
			return nil, errors.Wrapf(ErrInsufficientFunds, "have %s need %s", w.cash.String(), usdAmount.String())
		}

		w.cash = w.cash.Sub(usdAmount)

		pos := w.holdings[symbol]
		totalCost := pos.Amount.Mul(pos.AvgCostBasis).Add(usdAmount)
		newAmount := pos.Amount.Add(tokenAmount)
		pos.AvgCostBasis = totalCost.Div(newAmount)
		pos.Amount = newAmount
		w.holdings[symbol] = pos

	case domain.ActionSell:
		pos, ok := w.holdings[symbol]
		if !ok || pos.IsDust() {
			return nil, errors.Wrapf(ErrNoHoldings, "%s", symbol)
		}

		// Never oversell: clamp to what is actually held and recompute
		// the USD proceeds from the clamped quantity.
		if tokenAmount.GreaterThan(pos.Amount) {
			tokenAmount = pos.Amount
			usdAmount = tokenAmount.Mul(price)
			w.logger.Warn("sell clamped to held amount",
				zap.String("symbol", symbol),
				zap.String("held", pos.Amount.String()))
		}

		w.cash = w.cash.Add(usdAmount)
		pos.Amount = pos.Amount.Sub(tokenAmount)
		if pos.IsDust() {
			delete(w.holdings, symbol)
		} else {
			w.holdings[symbol] = pos
		}
	}

	tx := domain.TransactionRecord{
		ID:          uuid.NewString(),
		Timestamp:   w.now().UTC(),
		Symbol:      symbol,
		Action:      action,
		Price:       price,
		TokenAmount: tokenAmount,
		UsdAmount:   usdAmount,
		Reason:      reason,
	}
	w.history = append(w.history, tx)
	w.updatedAt = tx.Timestamp

	if err := w.persistLocked(); err != nil {
		w.cash = prevCash
		if prevHeld {
			w.holdings[symbol] = prevPos
		} else {
			delete(w.holdings, symbol)
		}
		w.history = w.history[:len(w.history)-1]
		w.updatedAt = prevUpdated
		return nil, err
	}

	if w.auditor != nil {
		if err := w.auditor.Append(tx); err != nil {
			w.logger.Warn("failed to append trade to audit log", zap.Error(err))
		}
	}

	w.logger.Info("trade applied",
		zap.String("symbol", symbol),
		zap.String("action", action.String()),
		zap.String("usd", usdAmount.String()),
		zap.String("tokens", tokenAmount.String()),
		zap.String("cash", w.cash.String()))

	return &tx, nil
}

// Reset discards the account and starts over with the given balance.
// Explicit operator action only; nothing inside the core calls this.
func (w *Wallet) Reset(initialBalance decimal.Decimal) error {
	if initialBalance.LessThan(decimal.Zero) {
		return errors.Errorf("initial balance must not be negative, got %s", initialBalance.String())
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.initFresh(initialBalance)
	return w.persistLocked()
}

// Snapshot returns a deep copy of the full account state.
func (w *Wallet) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *Wallet) snapshotLocked() State {
	holdings := make(map[string]domain.Position, len(w.holdings))
	for symbol, pos := range w.holdings {
		holdings[symbol] = pos
	}
	history := make([]domain.TransactionRecord, len(w.history))
	copy(history, w.history)

	return State{
		CashBalance:   w.cash,
		Holdings:      holdings,
		History:       history,
		CreatedAt:     w.createdAt,
		LastUpdatedAt: w.updatedAt,
	}
}

func (w *Wallet) persistLocked() error {
	return w.store.Save(w.snapshotLocked())
}
