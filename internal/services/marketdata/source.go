// Package marketdata collects per-symbol price, liquidity and volume
// from external venues before a trading cycle runs. The core consumes
// the resulting snapshot as already-resolved values and never fetches.
package marketdata

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/7272yusuke-design/openclaw/internal/domain"
	"github.com/7272yusuke-design/openclaw/pkg/retrier"
)

// Source fetches market data for a set of symbols. Symbols the venue
// cannot resolve are simply absent from the snapshot: unknown, not free.
type Source interface {
	Fetch(ctx context.Context, symbols []string) (domain.MarketSnapshot, error)
}

// Fetcher wraps a Source with retries so transient venue hiccups do not
// abort a cycle.
type Fetcher struct {
	source  Source
	retrier *retrier.Retrier
	logger  *zap.Logger
}

// NewFetcher creates a retrying fetcher around a source.
func NewFetcher(source Source, logger *zap.Logger) (*Fetcher, error) {
	if source == nil {
		return nil, errors.New("market data source is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		source:  source,
		retrier: retrier.New(),
		logger:  logger,
	}, nil
}

// Fetch returns a snapshot for the symbols, retrying on failure.
func (f *Fetcher) Fetch(ctx context.Context, symbols []string) (domain.MarketSnapshot, error) {
	snapshot, err := retrier.DoWithData(f.retrier, ctx, func(ctx context.Context) (domain.MarketSnapshot, error) {
		return f.source.Fetch(ctx, symbols)
	})
	if err != nil {
		return nil, errors.Wrap(err, "fetch market data")
	}

	for _, symbol := range symbols {
		if _, ok := snapshot[symbol]; !ok {
			f.logger.Warn("market data unavailable for symbol, treating as unknown",
				zap.String("symbol", symbol))
		}
	}

	return snapshot, nil
}

// StaticSource serves a fixed snapshot, used for offline runs and tests.
type StaticSource struct {
	Snapshot domain.MarketSnapshot
}

// Fetch returns the subset of the fixed snapshot covering symbols.
func (s *StaticSource) Fetch(_ context.Context, symbols []string) (domain.MarketSnapshot, error) {
	out := make(domain.MarketSnapshot, len(symbols))
	for _, symbol := range symbols {
		if data, ok := s.Snapshot[symbol]; ok {
			out[symbol] = data
		}
	}
	return out, nil
}
