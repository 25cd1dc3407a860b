// Command openclaw runs the risk-controlled paper-trading agent.
// It keeps a durable simulated ledger, gates every trade behind an
// execution guard, and consumes strategy directives produced by an
// external planner (or a local momentum advisor as fallback).
//
// Usage:
//
//	openclaw --setup             interactive configuration wizard
//	openclaw --config config.yaml
//	openclaw                     (uses CLI arguments)
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/adshao/go-binance/v2"
	bybit "github.com/hirokisan/bybit/v2"
	"github.com/shopspring/decimal"
	hyperliquid "github.com/sonirico/go-hyperliquid"
	"go.uber.org/zap"

	"github.com/7272yusuke-design/openclaw/config"
	"github.com/7272yusuke-design/openclaw/dashboard"
	"github.com/7272yusuke-design/openclaw/internal"
	"github.com/7272yusuke-design/openclaw/internal/domain"
	"github.com/7272yusuke-design/openclaw/internal/guard"
	"github.com/7272yusuke-design/openclaw/internal/services/marketdata"
	"github.com/7272yusuke-design/openclaw/internal/setup"
	"github.com/7272yusuke-design/openclaw/internal/storage/tradelog"
	"github.com/7272yusuke-design/openclaw/internal/wallet"
	"github.com/7272yusuke-design/openclaw/pkg/callguard"
)

func main() {
	runSetup := flag.Bool("setup", false, "run the interactive configuration wizard")

	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	if *runSetup {
		if err := setup.RunTUI("config.yaml"); err != nil {
			log.Fatal(err)
		}
		return
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	tradeLog, err := tradelog.NewWALStore(filepath.Join(cfg.StateDir, "wal", "trades"))
	if err != nil {
		logger.Fatal("failed to open trade log", zap.Error(err))
	}
	defer tradeLog.Close()

	store, err := wallet.NewStore(cfg.StateDir, "paper_wallet")
	if err != nil {
		logger.Fatal("failed to create wallet store", zap.Error(err))
	}

	w, outcome, err := wallet.Open(store, cfg.InitialBalance, logger, wallet.WithAuditor(tradeLog))
	if err != nil {
		logger.Fatal("failed to open wallet", zap.Error(err))
	}
	if outcome == wallet.OutcomeReinitialized {
		logger.Error("wallet was reinitialized after corruption, prior history quarantined")
	}

	execGuard, err := guard.New(cfg.Guard, w, logger)
	if err != nil {
		logger.Fatal("failed to create execution guard", zap.Error(err))
	}

	source, err := buildSource(cfg)
	if err != nil {
		logger.Fatal("failed to build market data source", zap.Error(err))
	}

	fetcher, err := marketdata.NewFetcher(source, logger)
	if err != nil {
		logger.Fatal("failed to create market data fetcher", zap.Error(err))
	}

	var callGuardOpts []callguard.Option
	if cfg.CallGuardMaxDepth > 0 {
		callGuardOpts = append(callGuardOpts, callguard.WithMaxDepth(cfg.CallGuardMaxDepth))
	}
	if cfg.CallGuardSafetyMargin > 0 {
		callGuardOpts = append(callGuardOpts, callguard.WithSafetyMargin(cfg.CallGuardSafetyMargin))
	}

	var planner internal.Planner
	if cfg.DirectivePath != "" {
		planner = &internal.FilePlanner{Path: cfg.DirectivePath}
	}

	engine, err := internal.NewEngine(internal.EngineParams{
		Logger:       logger,
		Fetcher:      fetcher,
		Planner:      planner,
		Guard:        execGuard,
		Wallet:       w,
		CallGuard:    callguard.New(logger, callGuardOpts...),
		Symbols:      cfg.Symbols,
		Profile:      cfg.Profile,
		PollInterval: cfg.PollInterval,
	})
	if err != nil {
		logger.Fatal("failed to create engine", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DashboardAddr != "" {
		server := &dashboard.Server{
			Addr:     cfg.DashboardAddr,
			Domain:   cfg.DashboardDomain,
			Wallet:   w,
			Guard:    guardStatus{execGuard},
			TradeLog: tradeLog,
			Logger:   logger,
		}
		go func() {
			if err := server.Start(ctx); err != nil {
				logger.Error("dashboard stopped", zap.Error(err))
			}
		}()
	}

	if err := engine.Run(ctx); err != nil && err != context.Canceled {
		logger.Fatal("engine stopped", zap.Error(err))
	}
}

// guardStatus adapts the execution guard to the dashboard view.
type guardStatus struct {
	guard *guard.ExecutionGuard
}

func (g guardStatus) Status() dashboard.GuardStatus {
	return dashboard.GuardStatus{
		Halted:     g.guard.Halted(),
		DailySpend: g.guard.DailySpend().String(),
	}
}

// buildSource selects the market data venue for the session.
func buildSource(cfg config.Config) (marketdata.Source, error) {
	switch cfg.Platform {
	case "binance":
		return marketdata.NewBinanceSource(binance.NewClient("", "")), nil
	case "bybit":
		return marketdata.NewBybitSource(bybit.NewClient()), nil
	case "hyperliquid":
		info := hyperliquid.NewInfo(context.Background(), hyperliquid.MainnetAPIURL, true, nil, nil)
		return marketdata.NewHyperliquidSource(info), nil
	default:
		// Offline dry run with fixed quotes for the configured symbols.
		snapshot := make(domain.MarketSnapshot, len(cfg.Symbols))
		for _, symbol := range cfg.Symbols {
			snapshot[symbol] = domain.MarketData{
				PriceUsd:       decimal.NewFromInt(1),
				Liquidity:      decimal.NewFromInt(1000000),
				LiquidityKnown: true,
				Volume:         decimal.NewFromInt(500000),
			}
		}
		return &marketdata.StaticSource{Snapshot: snapshot}, nil
	}
}
