package internal

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/7272yusuke-design/openclaw/internal/credit"
	"github.com/7272yusuke-design/openclaw/internal/domain"
	"github.com/7272yusuke-design/openclaw/internal/guard"
	"github.com/7272yusuke-design/openclaw/internal/services/marketdata"
	"github.com/7272yusuke-design/openclaw/internal/wallet"
)

type stubPlanner struct {
	directive domain.StrategyDirective
	ok        bool
	err       error
}

func (p *stubPlanner) Plan(context.Context) (domain.StrategyDirective, bool, error) {
	return p.directive, p.ok, p.err
}

func testProfile() credit.Profile {
	return credit.Profile{
		RepaymentHistory:      95,
		CollateralValue:       80,
		ExternalData:          70,
		CommunityRating:       85,
		TransactionCompletion: 90,
		ActivityLevel:         60,
	}
}

func testDirective(action string) domain.StrategyDirective {
	return domain.StrategyDirective{
		RiskPolicy: domain.RiskPolicy{RiskAppetite: "balanced", MinRating: "BBB"},
		Strategy: domain.Strategy{
			TargetSectors:   []string{"VIRTUAL"},
			ActionDirective: action,
		},
	}
}

func newTestEngine(t *testing.T, planner Planner) (*Engine, *wallet.Wallet) {
	t.Helper()

	store, err := wallet.NewStore(t.TempDir(), "wallet")
	require.NoError(t, err)
	w, _, err := wallet.Open(store, decimal.NewFromInt(100000), zap.NewNop())
	require.NoError(t, err)

	g, err := guard.New(guard.Config{
		MaxDailySpend:     decimal.NewFromInt(10000),
		StopLossThreshold: decimal.NewFromInt(500),
		MinLiquidity:      decimal.NewFromInt(10000),
		BaseAmount:        decimal.NewFromInt(100),
		MaxAmount:         decimal.NewFromInt(1000),
	}, w, zap.NewNop())
	require.NoError(t, err)

	source := &marketdata.StaticSource{Snapshot: domain.MarketSnapshot{
		"VIRTUAL": {
			PriceUsd:       decimal.NewFromInt(2),
			Liquidity:      decimal.NewFromInt(50000),
			LiquidityKnown: true,
			Volume:         decimal.NewFromInt(20000),
		},
	}}
	fetcher, err := marketdata.NewFetcher(source, zap.NewNop())
	require.NoError(t, err)

	engine, err := NewEngine(EngineParams{
		Logger:  zap.NewNop(),
		Fetcher: fetcher,
		Planner: planner,
		Guard:   g,
		Wallet:  w,
		Symbols: []string{"VIRTUAL"},
		Profile: testProfile(),
	})
	require.NoError(t, err)
	return engine, w
}

func TestRunCycleExecutesBuy(t *testing.T) {
	planner := &stubPlanner{directive: testDirective("accumulate on dips"), ok: true}
	engine, w := newTestEngine(t, planner)

	result, err := engine.RunCycle(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.StatusSuccess, result.Status)
	require.NotNil(t, result.Transaction)

	// Profile scores 82.75 -> AA (tier 1); balanced baseline 0.5 scales
	// to 0.45, so size = 100 + 900*0.45 = 505.
	assert.True(t, result.Transaction.UsdAmount.Equal(decimal.RequireFromString("505")),
		"got %s", result.Transaction.UsdAmount)
	assert.True(t, w.Balance().Equal(decimal.RequireFromString("99495")))
}

func TestRunCycleSkipsWithoutDirective(t *testing.T) {
	engine, w := newTestEngine(t, &stubPlanner{ok: false})

	result, err := engine.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSkipped, result.Status)
	assert.True(t, w.Balance().Equal(decimal.NewFromInt(100000)))
}

func TestRunCycleSkipsNonActionableDirective(t *testing.T) {
	planner := &stubPlanner{directive: testDirective("hold and observe"), ok: true}
	engine, _ := newTestEngine(t, planner)

	result, err := engine.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSkipped, result.Status)
	assert.Equal(t, "directive not actionable", result.Reason)
}

func TestRunCyclePropagatesPlannerError(t *testing.T) {
	planner := &stubPlanner{err: errors.New("planner offline")}
	engine, _ := newTestEngine(t, planner)

	_, err := engine.RunCycle(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "planner offline")
}

func TestRunCycleGuardRejectionIsAResult(t *testing.T) {
	planner := &stubPlanner{directive: func() domain.StrategyDirective {
		d := testDirective("accumulate")
		d.Strategy.TargetSectors = []string{"UNLISTED"}
		return d
	}(), ok: true}
	engine, _ := newTestEngine(t, planner)

	result, err := engine.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, result.Status)
	assert.Equal(t, guard.ReasonInsufficientLiquidity, result.Reason)
}

func TestFilePlanner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "directive.json")
	planner := &FilePlanner{Path: path}

	// Missing file is a legitimate "no directive yet".
	_, ok, err := planner.Plan(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	payload, err := json.Marshal(testDirective("accumulate VIRTUAL on dips"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, payload, 0o644))

	directive, ok, err := planner.Plan(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"VIRTUAL"}, directive.Strategy.TargetSectors)
	assert.Equal(t, "balanced", directive.RiskPolicy.RiskAppetite)

	// Corrupt payloads surface as errors, never as silent skips.
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, _, err = planner.Plan(context.Background())
	assert.Error(t, err)
}

func TestNewEngineValidation(t *testing.T) {
	_, err := NewEngine(EngineParams{})
	assert.Error(t, err)
}
