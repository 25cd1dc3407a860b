package guard

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/7272yusuke-design/openclaw/internal/domain"
	"github.com/7272yusuke-design/openclaw/internal/wallet"
)

func testConfig() Config {
	return Config{
		MaxDailySpend:     decimal.NewFromInt(1000),
		StopLossThreshold: decimal.NewFromInt(500),
		MinLiquidity:      decimal.NewFromInt(10000),
		BaseAmount:        decimal.NewFromInt(100),
		MaxAmount:         decimal.NewFromInt(1000),
	}
}

func testSnapshot() domain.MarketSnapshot {
	return domain.MarketSnapshot{
		"VIRTUAL": {
			PriceUsd:       decimal.NewFromInt(2),
			Liquidity:      decimal.NewFromInt(50000),
			LiquidityKnown: true,
			Volume:         decimal.NewFromInt(20000),
		},
	}
}

func newTestGuard(t *testing.T, cfg Config, balance int64, clock *fakeClock) (*ExecutionGuard, *wallet.Wallet) {
	t.Helper()
	store, err := wallet.NewStore(t.TempDir(), "wallet")
	require.NoError(t, err)
	w, _, err := wallet.Open(store, decimal.NewFromInt(balance), zap.NewNop())
	require.NoError(t, err)

	opts := []Option{}
	if clock != nil {
		opts = append(opts, WithClock(clock.Now))
	}
	g, err := New(cfg, w, zap.NewNop(), opts...)
	require.NoError(t, err)
	return g, w
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func buySignal(confidence string) domain.TradeSignal {
	return domain.TradeSignal{
		Symbol:     "VIRTUAL",
		Action:     domain.ActionBuy,
		Confidence: decimal.RequireFromString(confidence),
	}
}

func TestProcessSignal_ApprovedBuy(t *testing.T) {
	g, w := newTestGuard(t, testConfig(), 100000, nil)

	result, err := g.ProcessSignal(buySignal("0.5"), testSnapshot())
	require.NoError(t, err)
	require.Equal(t, domain.StatusSuccess, result.Status)
	require.NotNil(t, result.Transaction)

	// size = 100 + (1000-100)*0.5 = 550
	assert.True(t, result.Transaction.UsdAmount.Equal(decimal.NewFromInt(550)))
	assert.True(t, g.DailySpend().Equal(decimal.NewFromInt(550)))
	assert.True(t, w.Balance().Equal(decimal.NewFromInt(99450)))
}

func TestProcessSignal_StopLossLatchesAndStays(t *testing.T) {
	cfg := testConfig()
	cfg.StopLossThreshold = decimal.NewFromInt(200000) // above the portfolio
	g, _ := newTestGuard(t, cfg, 100000, nil)

	result, err := g.ProcessSignal(buySignal("0.5"), testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, result.Status)
	assert.Equal(t, ReasonStopLossTriggered, result.Reason)
	assert.True(t, g.Halted())

	// Later recovery does not matter: the latch is sticky.
	rich := domain.MarketSnapshot{
		"VIRTUAL": {
			PriceUsd:       decimal.NewFromInt(1000000),
			Liquidity:      decimal.NewFromInt(1000000),
			LiquidityKnown: true,
		},
	}
	result, err = g.ProcessSignal(buySignal("0.5"), rich)
	require.NoError(t, err)
	assert.Equal(t, ReasonTradingHalted, result.Reason)

	// Explicit reset is the only way back.
	g.ResumeTrading()
	assert.False(t, g.Halted())
}

func TestProcessSignal_DailyClamp(t *testing.T) {
	g, _ := newTestGuard(t, testConfig(), 100000, nil)

	// Confidence choosing a 600 USD size: 100 + 900*x = 600 -> x = 5/9.
	confidence := decimal.NewFromInt(5).Div(decimal.NewFromInt(9))
	signal := domain.TradeSignal{Symbol: "VIRTUAL", Action: domain.ActionBuy, Confidence: confidence}

	first, err := g.ProcessSignal(signal, testSnapshot())
	require.NoError(t, err)
	require.Equal(t, domain.StatusSuccess, first.Status)
	assert.True(t, first.Transaction.UsdAmount.Round(6).Equal(decimal.NewFromInt(600)))

	// Second 600 USD buy the same day clamps to the remaining 400.
	second, err := g.ProcessSignal(signal, testSnapshot())
	require.NoError(t, err)
	require.Equal(t, domain.StatusSuccess, second.Status)
	assert.True(t, second.Transaction.UsdAmount.Round(6).Equal(decimal.NewFromInt(400)))

	// Budget is now exhausted.
	third, err := g.ProcessSignal(signal, testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, third.Status)
	assert.Equal(t, ReasonDailyLimitReached, third.Reason)
}

func TestProcessSignal_DailyWindowResets(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	g, _ := newTestGuard(t, testConfig(), 100000, clock)

	result, err := g.ProcessSignal(buySignal("1"), testSnapshot())
	require.NoError(t, err)
	require.Equal(t, domain.StatusSuccess, result.Status)
	assert.True(t, g.DailySpend().Equal(decimal.NewFromInt(1000)))

	blocked, err := g.ProcessSignal(buySignal("1"), testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, ReasonDailyLimitReached, blocked.Reason)

	clock.Advance(24 * time.Hour)

	resumed, err := g.ProcessSignal(buySignal("0"), testSnapshot())
	require.NoError(t, err)
	require.Equal(t, domain.StatusSuccess, resumed.Status)
	assert.True(t, g.DailySpend().Equal(decimal.NewFromInt(100)))
}

func TestProcessSignal_LiquidityFloor(t *testing.T) {
	g, _ := newTestGuard(t, testConfig(), 100000, nil)

	thin := domain.MarketSnapshot{
		"VIRTUAL": {
			PriceUsd:       decimal.NewFromInt(2),
			Liquidity:      decimal.NewFromInt(500),
			LiquidityKnown: true,
		},
	}
	result, err := g.ProcessSignal(buySignal("0.5"), thin)
	require.NoError(t, err)
	assert.Equal(t, ReasonInsufficientLiquidity, result.Reason)

	// Unknown liquidity counts as below the floor, never as free.
	cfg := testConfig()
	cfg.StopLossThreshold = decimal.Zero
	g2, _ := newTestGuard(t, cfg, 100000, nil)
	result, err = g2.ProcessSignal(domain.TradeSignal{
		Symbol:     "UNLISTED",
		Action:     domain.ActionBuy,
		Confidence: decimal.RequireFromString("0.5"),
	}, testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, ReasonInsufficientLiquidity, result.Reason)
}

func TestProcessSignal_PriceOnlyVenueRejectedEvenAtZeroFloor(t *testing.T) {
	cfg := testConfig()
	cfg.MinLiquidity = decimal.Zero

	g, _ := newTestGuard(t, cfg, 100000, nil)

	// A venue reporting only a price (no depth data) must not slip past
	// a zero liquidity floor: unreported is unknown, not known-zero.
	priceOnly := domain.MarketSnapshot{
		"VIRTUAL": {PriceUsd: decimal.NewFromInt(50000)},
	}
	result, err := g.ProcessSignal(buySignal("0.5"), priceOnly)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, result.Status)
	assert.Equal(t, ReasonInsufficientLiquidity, result.Reason)

	// A genuinely reported zero clears a zero floor; the distinction is
	// carried per field, not inferred from the value.
	reportedZero := domain.MarketSnapshot{
		"VIRTUAL": {PriceUsd: decimal.NewFromInt(2), LiquidityKnown: true},
	}
	result, err = g.ProcessSignal(buySignal("0.5"), reportedZero)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, result.Status)
}

func TestProcessSignal_InvalidConfidence(t *testing.T) {
	g, _ := newTestGuard(t, testConfig(), 100000, nil)

	result, err := g.ProcessSignal(domain.TradeSignal{
		Symbol:     "VIRTUAL",
		Action:     domain.ActionBuy,
		Confidence: decimal.RequireFromString("1.5"),
	}, testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, result.Status)
	assert.Equal(t, ReasonInvalidSignal, result.Reason)
}

func TestProcessSignal_UnknownActionIsFatal(t *testing.T) {
	g, _ := newTestGuard(t, testConfig(), 100000, nil)

	_, err := g.ProcessSignal(domain.TradeSignal{
		Symbol:     "VIRTUAL",
		Action:     domain.Action(99),
		Confidence: decimal.RequireFromString("0.5"),
	}, testSnapshot())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidAction)
}

func TestProcessSignal_SellDoesNotConsumeBudget(t *testing.T) {
	g, w := newTestGuard(t, testConfig(), 100000, nil)

	// Acquire a position first.
	_, err := w.ApplyTrade("VIRTUAL", domain.ActionBuy, decimal.NewFromInt(2000), decimal.NewFromInt(2), "setup")
	require.NoError(t, err)

	result, err := g.ProcessSignal(domain.TradeSignal{
		Symbol:     "VIRTUAL",
		Action:     domain.ActionSell,
		Confidence: decimal.RequireFromString("0.5"),
	}, testSnapshot())
	require.NoError(t, err)
	require.Equal(t, domain.StatusSuccess, result.Status)

	assert.True(t, g.DailySpend().Equal(decimal.Zero))
}

func TestProcessSignal_SellWithNothingHeld(t *testing.T) {
	g, _ := newTestGuard(t, testConfig(), 100000, nil)

	result, err := g.ProcessSignal(domain.TradeSignal{
		Symbol:     "VIRTUAL",
		Action:     domain.ActionSell,
		Confidence: decimal.RequireFromString("0.5"),
	}, testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, result.Status)
	assert.Equal(t, ReasonNoHoldings, result.Reason)
}

func TestProcessSignal_InsufficientFundsReported(t *testing.T) {
	cfg := testConfig()
	cfg.StopLossThreshold = decimal.Zero
	g, _ := newTestGuard(t, cfg, 50, nil)

	result, err := g.ProcessSignal(buySignal("0.5"), testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, result.Status)
	assert.Equal(t, ReasonInsufficientFunds, result.Reason)
}

func TestConfigValidate(t *testing.T) {
	cfg := testConfig()
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.MaxDailySpend = decimal.Zero
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.MaxAmount = decimal.NewFromInt(10)
	assert.Error(t, bad.Validate())
}
