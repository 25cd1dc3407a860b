package marketdata

import (
	"context"
	"strings"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/7272yusuke-design/openclaw/internal/domain"
)

// quoteSuffix appended to bare symbols when querying the exchange.
const quoteSuffix = "USDT"

// BinanceSource fetches market data from Binance 24h ticker statistics.
// Quote volume stands in for pool liquidity: CEX order books have no
// pool, and 24h quote turnover is the closest depth proxy available.
type BinanceSource struct {
	client *binance.Client
}

// NewBinanceSource creates a Binance market data source.
func NewBinanceSource(client *binance.Client) *BinanceSource {
	return &BinanceSource{client: client}
}

// Fetch resolves each symbol's last price, quote volume and base volume.
func (s *BinanceSource) Fetch(ctx context.Context, symbols []string) (domain.MarketSnapshot, error) {
	snapshot := make(domain.MarketSnapshot, len(symbols))

	for _, symbol := range symbols {
		stats, err := s.client.NewListPriceChangeStatsService().
			Symbol(exchangeSymbol(symbol)).
			Do(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "fetch binance ticker stats for %s", symbol)
		}
		if len(stats) == 0 {
			continue
		}

		price, err := decimal.NewFromString(stats[0].LastPrice)
		if err != nil {
			return nil, errors.Wrapf(err, "parse binance last price for %s", symbol)
		}
		quoteVolume, err := decimal.NewFromString(stats[0].QuoteVolume)
		if err != nil {
			return nil, errors.Wrapf(err, "parse binance quote volume for %s", symbol)
		}
		volume, err := decimal.NewFromString(stats[0].Volume)
		if err != nil {
			return nil, errors.Wrapf(err, "parse binance volume for %s", symbol)
		}

		snapshot[symbol] = domain.MarketData{
			PriceUsd:       price,
			Liquidity:      quoteVolume,
			LiquidityKnown: true,
			Volume:         volume,
		}
	}

	return snapshot, nil
}

// exchangeSymbol maps a bare asset symbol to the exchange pair symbol.
func exchangeSymbol(symbol string) string {
	upper := strings.ToUpper(symbol)
	if strings.HasSuffix(upper, quoteSuffix) {
		return upper
	}
	return upper + quoteSuffix
}
