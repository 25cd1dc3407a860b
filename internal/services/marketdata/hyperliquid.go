package marketdata

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	hyperliquid "github.com/sonirico/go-hyperliquid"

	"github.com/7272yusuke-design/openclaw/internal/domain"
)

// HyperliquidSource fetches mid prices from the Hyperliquid public Info
// API. The endpoint carries no depth or volume data, so only the price
// is populated; downstream liquidity checks treat the rest as unknown.
type HyperliquidSource struct {
	info *hyperliquid.Info
}

// NewHyperliquidSource creates a Hyperliquid market data source.
func NewHyperliquidSource(info *hyperliquid.Info) *HyperliquidSource {
	return &HyperliquidSource{info: info}
}

// Fetch resolves mid prices for the symbols. Mids are keyed by base
// coin, e.g. "BTC".
func (s *HyperliquidSource) Fetch(ctx context.Context, symbols []string) (domain.MarketSnapshot, error) {
	if s.info == nil {
		return nil, errors.New("hyperliquid info client is nil")
	}

	mids, err := s.info.AllMids(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetch hyperliquid mids")
	}

	snapshot := make(domain.MarketSnapshot, len(symbols))
	for _, symbol := range symbols {
		mid, ok := mids[strings.ToUpper(symbol)]
		if !ok || mid == "" {
			continue
		}

		price, err := decimal.NewFromString(mid)
		if err != nil {
			return nil, errors.Wrapf(err, "parse hyperliquid mid for %s", symbol)
		}

		snapshot[symbol] = domain.MarketData{PriceUsd: price}
	}

	return snapshot, nil
}
