// Package guard gates every ledger mutation behind session-scoped
// safety policy: stop-loss latch, daily spend cap, liquidity floor and
// confidence-driven position sizing.
package guard

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/7272yusuke-design/openclaw/internal/domain"
	"github.com/7272yusuke-design/openclaw/internal/wallet"
)

// Rejection reason codes reported in TradeResult.Reason.
const (
	ReasonTradingHalted         = "TradingHalted"
	ReasonStopLossTriggered     = "StopLossTriggered"
	ReasonDailyLimitReached     = "DailyLimitReached"
	ReasonDailyBudgetExhausted  = "DailyBudgetExhausted"
	ReasonInsufficientLiquidity = "InsufficientLiquidity"
	ReasonInsufficientFunds     = "InsufficientFunds"
	ReasonNoHoldings            = "NoHoldings"
	ReasonInvalidSignal         = "InvalidSignal"
	ReasonPriceUnknown          = "PriceUnknown"
)

const dailyWindow = 24 * time.Hour

// Config is the per-session guard policy.
type Config struct {
	// MaxDailySpend rolling 24h ceiling on buy-side USD outlay.
	MaxDailySpend decimal.Decimal
	// StopLossThreshold portfolio-value floor that latches the halt.
	StopLossThreshold decimal.Decimal
	// MinLiquidity pool-liquidity floor per symbol.
	MinLiquidity decimal.Decimal
	// BaseAmount trade size at zero confidence.
	BaseAmount decimal.Decimal
	// MaxAmount trade size at full confidence.
	MaxAmount decimal.Decimal
}

// Validate sanity-checks the policy.
func (c Config) Validate() error {
	if c.MaxDailySpend.LessThanOrEqual(decimal.Zero) {
		return errors.New("max daily spend must be positive")
	}
	if c.BaseAmount.LessThan(decimal.Zero) {
		return errors.New("base amount must not be negative")
	}
	if c.MaxAmount.LessThan(c.BaseAmount) {
		return errors.New("max amount must not be below base amount")
	}
	return nil
}

// ExecutionGuard holds the mutable guard state for one trading session.
// Construct one guard per session/account; the halt latch is scoped
// here, never process-wide.
type ExecutionGuard struct {
	cfg    Config
	wallet *wallet.Wallet
	logger *zap.Logger
	now    func() time.Time

	// mu protects the guard state: cycles run one at a time, but the
	// dashboard reads state concurrently.
	mu            sync.Mutex
	dailySpend    decimal.Decimal
	lastReset     time.Time
	tradingActive bool
}

// Option configures an ExecutionGuard.
type Option func(*ExecutionGuard)

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(g *ExecutionGuard) {
		g.now = now
	}
}

// New creates an execution guard bound to a wallet.
func New(cfg Config, w *wallet.Wallet, logger *zap.Logger, opts ...Option) (*ExecutionGuard, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid guard config")
	}
	if w == nil {
		return nil, errors.New("wallet is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	g := &ExecutionGuard{
		cfg:           cfg,
		wallet:        w,
		logger:        logger,
		now:           time.Now,
		dailySpend:    decimal.Zero,
		tradingActive: true,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.lastReset = g.now()

	return g, nil
}

// ProcessSignal evaluates one trade signal against the safety policy in
// strict order and, only when every check passes, delegates to the
// ledger. All rejections are reported results; the ledger stays
// untouched. The single hard error path is an unrecognized action.
func (g *ExecutionGuard) ProcessSignal(signal domain.TradeSignal, snapshot domain.MarketSnapshot) (domain.TradeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !signal.Action.Valid() {
		return domain.TradeResult{}, errors.Wrapf(domain.ErrInvalidAction, "%d", int(signal.Action))
	}
	if err := signal.Validate(); err != nil {
		g.logger.Warn("rejecting malformed signal", zap.Error(err))
		return domain.Failed(ReasonInvalidSignal), nil
	}

	// 1. Sticky halt: once latched, only ResumeTrading clears it.
	if !g.tradingActive {
		return domain.Failed(ReasonTradingHalted), nil
	}

	// 2. Stop-loss: latches the halt and rejects in the same evaluation.
	portfolioValue := g.wallet.PortfolioValue(snapshot)
	if portfolioValue.LessThan(g.cfg.StopLossThreshold) {
		g.tradingActive = false
		g.logger.Error("stop-loss triggered, halting trading",
			zap.String("portfolio_value", portfolioValue.String()),
			zap.String("threshold", g.cfg.StopLossThreshold.String()))
		return domain.Failed(ReasonStopLossTriggered), nil
	}

	// 3. Daily window roll-over, then cap check.
	now := g.now()
	if now.Sub(g.lastReset) >= dailyWindow {
		g.dailySpend = decimal.Zero
		g.lastReset = now
	}
	if g.dailySpend.GreaterThanOrEqual(g.cfg.MaxDailySpend) {
		return domain.Failed(ReasonDailyLimitReached), nil
	}

	// 4. Liquidity floor. Unknown liquidity counts as below the floor.
	liquidity, known := snapshot.Liquidity(signal.Symbol)
	if !known || liquidity.LessThan(g.cfg.MinLiquidity) {
		return domain.Failed(ReasonInsufficientLiquidity), nil
	}

	price, known := snapshot.Price(signal.Symbol)
	if !known || price.LessThanOrEqual(decimal.Zero) {
		return domain.Failed(ReasonPriceUnknown), nil
	}

	// 5. Linear interpolation between base and max by confidence.
	tradeSize := g.cfg.BaseAmount.Add(g.cfg.MaxAmount.Sub(g.cfg.BaseAmount).Mul(signal.Confidence))

	// 6. Buys are clamped to the remaining daily budget.
	if signal.Action == domain.ActionBuy {
		remaining := g.cfg.MaxDailySpend.Sub(g.dailySpend)
		if tradeSize.GreaterThan(remaining) {
			tradeSize = remaining
		}
		if tradeSize.LessThanOrEqual(decimal.Zero) {
			return domain.Failed(ReasonDailyBudgetExhausted), nil
		}
	}

	// 7. Delegate to the ledger.
	tx, err := g.wallet.ApplyTrade(signal.Symbol, signal.Action, tradeSize, price, "execution guard approved signal")
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrInsufficientFunds):
			return domain.Failed(ReasonInsufficientFunds), nil
		case errors.Is(err, wallet.ErrNoHoldings):
			return domain.Failed(ReasonNoHoldings), nil
		default:
			return domain.TradeResult{}, err
		}
	}

	// SELL does not consume daily budget; buys count what was actually
	// spent, which the clamp above may have reduced.
	if signal.Action == domain.ActionBuy {
		g.dailySpend = g.dailySpend.Add(tx.UsdAmount)
	}

	g.logger.Info("signal approved",
		zap.String("symbol", signal.Symbol),
		zap.String("action", signal.Action.String()),
		zap.String("size", tx.UsdAmount.String()),
		zap.String("daily_spend", g.dailySpend.String()))

	return domain.Executed(tx), nil
}

// Halted reports whether the stop-loss latch is engaged.
func (g *ExecutionGuard) Halted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.tradingActive
}

// DailySpend returns the buy-side USD consumed in the current window.
func (g *ExecutionGuard) DailySpend() decimal.Decimal {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dailySpend
}

// ResumeTrading clears the stop-loss latch. This is the only way to
// resume after a halt; the guard never retries internally.
func (g *ExecutionGuard) ResumeTrading() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tradingActive = true
	g.logger.Info("trading resumed by explicit reset")
}
