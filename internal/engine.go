// Package internal wires the trading cycle: directive intake, credit
// scoring, signal translation, guarded execution and audit.
package internal

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/7272yusuke-design/openclaw/internal/credit"
	"github.com/7272yusuke-design/openclaw/internal/domain"
	"github.com/7272yusuke-design/openclaw/internal/guard"
	"github.com/7272yusuke-design/openclaw/internal/services/advisor"
	"github.com/7272yusuke-design/openclaw/internal/services/marketdata"
	"github.com/7272yusuke-design/openclaw/internal/services/translator"
	"github.com/7272yusuke-design/openclaw/internal/wallet"
	"github.com/7272yusuke-design/openclaw/pkg/callguard"
)

// priceWindow closes kept per symbol for the fallback advisor.
const priceWindow = 120

// Planner supplies the next strategy directive. ok=false means no
// directive is available this cycle, which is a legitimate skip.
type Planner interface {
	Plan(ctx context.Context) (directive domain.StrategyDirective, ok bool, err error)
}

// FilePlanner reads a directive document dropped by an external
// planning collaborator. A missing file means no directive yet.
type FilePlanner struct {
	Path string
}

// Plan reads and decodes the directive file.
func (p *FilePlanner) Plan(_ context.Context) (domain.StrategyDirective, bool, error) {
	payload, err := os.ReadFile(p.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.StrategyDirective{}, false, nil
		}
		return domain.StrategyDirective{}, false, errors.Wrap(err, "read directive file")
	}

	var directive domain.StrategyDirective
	if err := json.Unmarshal(payload, &directive); err != nil {
		return domain.StrategyDirective{}, false, errors.Wrap(err, "decode directive file")
	}
	return directive, true, nil
}

// Engine runs the sequential trading loop. One logical cycle executes
// at a time; the mutex enforces that even if RunCycle is called from
// outside the loop.
type Engine struct {
	mu sync.Mutex

	logger     *zap.Logger
	fetcher    *marketdata.Fetcher
	planner    Planner
	advisor    *advisor.Advisor
	translator *translator.Translator
	guard      *guard.ExecutionGuard
	wallet     *wallet.Wallet
	callGuard  *callguard.Guard

	symbols      []string
	profile      credit.Profile
	pollInterval time.Duration

	closes map[string][]decimal.Decimal
}

// EngineParams collects the collaborators an Engine needs.
type EngineParams struct {
	Logger       *zap.Logger
	Fetcher      *marketdata.Fetcher
	Planner      Planner // optional, advisor fallback used when nil or empty
	Guard        *guard.ExecutionGuard
	Wallet       *wallet.Wallet
	CallGuard    *callguard.Guard
	Symbols      []string
	Profile      credit.Profile
	PollInterval time.Duration
}

// NewEngine validates params and builds an Engine.
func NewEngine(p EngineParams) (*Engine, error) {
	if p.Fetcher == nil {
		return nil, errors.New("market data fetcher is required")
	}
	if p.Guard == nil {
		return nil, errors.New("execution guard is required")
	}
	if p.Wallet == nil {
		return nil, errors.New("wallet is required")
	}
	if len(p.Symbols) == 0 {
		return nil, errors.New("at least one symbol is required")
	}
	if err := p.Profile.Validate(); err != nil {
		return nil, errors.Wrap(err, "credit profile")
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.CallGuard == nil {
		p.CallGuard = callguard.New(p.Logger)
	}
	if p.PollInterval <= 0 {
		p.PollInterval = 5 * time.Minute
	}

	return &Engine{
		logger:       p.Logger,
		fetcher:      p.Fetcher,
		planner:      p.Planner,
		advisor:      advisor.New(p.Logger),
		translator:   translator.New(p.Logger),
		guard:        p.Guard,
		wallet:       p.Wallet,
		callGuard:    p.CallGuard,
		symbols:      p.Symbols,
		profile:      p.Profile,
		pollInterval: p.PollInterval,
		closes:       make(map[string][]decimal.Decimal),
	}, nil
}

// Run executes trading cycles until the context is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	e.logger.Info("starting trading loop",
		zap.Strings("symbols", e.symbols),
		zap.Duration("poll_interval", e.pollInterval))

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("context done, stopping trading loop")
			return ctx.Err()
		case <-ticker.C:
			result, err := e.RunCycle(ctx)
			if err != nil {
				e.logger.Error("trading cycle failed", zap.Error(err))
				continue
			}
			if result.Status != domain.StatusSkipped {
				e.logger.Info("cycle result",
					zap.String("status", string(result.Status)),
					zap.String("reason", result.Reason))
			}
		}
	}
}

// RunCycle runs one full evaluation: snapshot, directive, score,
// translate, guard. Rejections and skips come back as results.
func (e *Engine) RunCycle(ctx context.Context) (domain.TradeResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot, err := e.fetcher.Fetch(ctx, e.symbols)
	if err != nil {
		return domain.TradeResult{}, err
	}
	e.recordCloses(snapshot)

	directive, ok, err := e.nextDirective(ctx)
	if err != nil {
		return domain.TradeResult{}, err
	}
	if !ok {
		return domain.Skipped("no directive available"), nil
	}

	scored, err := credit.Score(e.profile)
	if err != nil {
		return domain.TradeResult{}, errors.Wrap(err, "score credit profile")
	}

	signal, ok := e.translator.Translate(directive, scored.Rating)
	if !ok {
		return domain.Skipped("directive not actionable"), nil
	}

	result, err := e.guard.ProcessSignal(signal, snapshot)
	if err != nil {
		return domain.TradeResult{}, err
	}

	return result, nil
}

// ResumeTrading clears the guard's stop-loss latch, operator action.
func (e *Engine) ResumeTrading() {
	e.guard.ResumeTrading()
}

// nextDirective asks the external planner first, guarded against
// runaway re-entrant invocation, and falls back to the local momentum
// advisor when no external directive is available.
func (e *Engine) nextDirective(ctx context.Context) (domain.StrategyDirective, bool, error) {
	if e.planner != nil {
		type planOutcome struct {
			directive domain.StrategyDirective
			ok        bool
		}
		outcome, err := callguard.DoWithData(e.callGuard, ctx, "planner.plan", "external directive intake",
			func(ctx context.Context) (planOutcome, error) {
				directive, ok, err := e.planner.Plan(ctx)
				return planOutcome{directive: directive, ok: ok}, err
			})
		if err != nil {
			return domain.StrategyDirective{}, false, err
		}
		if outcome.ok {
			return outcome.directive, true, nil
		}
	}

	// Advisor fallback over the first symbol with enough history.
	for _, symbol := range e.symbols {
		closes := e.closes[symbol]
		directive, err := e.advisor.Advise(symbol, closes)
		if err != nil {
			continue
		}
		return directive, true, nil
	}

	return domain.StrategyDirective{}, false, nil
}

// recordCloses extends the per-symbol close history from the snapshot.
func (e *Engine) recordCloses(snapshot domain.MarketSnapshot) {
	for _, symbol := range e.symbols {
		price, ok := snapshot.Price(symbol)
		if !ok || price.LessThanOrEqual(decimal.Zero) {
			continue
		}
		window := append(e.closes[symbol], price)
		if len(window) > priceWindow {
			window = window[len(window)-priceWindow:]
		}
		e.closes[symbol] = window
	}
}
