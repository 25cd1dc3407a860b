package marketdata

import (
	"context"

	bybit "github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/7272yusuke-design/openclaw/internal/domain"
)

// BybitSource fetches market data from Bybit V5 spot tickers. As with
// Binance, 24h quote turnover stands in for pool liquidity.
type BybitSource struct {
	client *bybit.Client
}

// NewBybitSource creates a Bybit market data source.
func NewBybitSource(client *bybit.Client) *BybitSource {
	return &BybitSource{client: client}
}

// Fetch resolves each symbol's last price, turnover and volume.
func (s *BybitSource) Fetch(ctx context.Context, symbols []string) (domain.MarketSnapshot, error) {
	snapshot := make(domain.MarketSnapshot, len(symbols))

	for _, symbol := range symbols {
		pairSymbol := bybit.SymbolV5(exchangeSymbol(symbol))

		result, err := s.client.V5().Market().GetTickers(bybit.V5GetTickersParam{
			Category: "spot",
			Symbol:   &pairSymbol,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "fetch bybit tickers for %s", symbol)
		}
		if len(result.Result.Spot.List) == 0 {
			continue
		}

		item := result.Result.Spot.List[0]

		price, err := decimal.NewFromString(item.LastPrice)
		if err != nil {
			return nil, errors.Wrapf(err, "parse bybit last price for %s", symbol)
		}
		turnover, err := decimal.NewFromString(item.Turnover24H)
		if err != nil {
			return nil, errors.Wrapf(err, "parse bybit turnover for %s", symbol)
		}
		volume, err := decimal.NewFromString(item.Volume24H)
		if err != nil {
			return nil, errors.Wrapf(err, "parse bybit volume for %s", symbol)
		}

		snapshot[symbol] = domain.MarketData{
			PriceUsd:       price,
			Liquidity:      turnover,
			LiquidityKnown: true,
			Volume:         volume,
		}
	}

	return snapshot, nil
}
