package clients

import (
	"context"
	"strconv"
	"strings"

	"github.com/adshao/go-binance/v2"
	"github.com/antonkh/paperdesk/internal/domain"
	"github.com/pkg/errors"
)

const providerBinance = "binance"

// BinanceMarkets adapts Binance spot 24h ticker statistics to market
// records. Binance reports no market capitalization, so Rank and MarketCap
// stay at their zero defaults.
type BinanceMarkets struct {
	client *binance.Client
}

// NewBinanceMarkets wraps a binance client. Public market data needs no API
// credentials, so the client may be constructed with empty keys.
func NewBinanceMarkets(client *binance.Client) *BinanceMarkets {
	return &BinanceMarkets{client: client}
}

// Name identifies the provider in logs and error messages.
func (b *BinanceMarkets) Name() string { return providerBinance }

// FetchMarkets lists USDT spot pairs from the 24h ticker statistics
// endpoint, up to limit records. Tickers with unparseable prices are
// skipped.
func (b *BinanceMarkets) FetchMarkets(ctx context.Context, limit int) ([]domain.MarketRecord, error) {
	stats, err := b.client.NewListPriceChangeStatsService().Do(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "binance 24h ticker stats")
	}

	records := make([]domain.MarketRecord, 0, limit)
	for _, st := range stats {
		base, ok := strings.CutSuffix(st.Symbol, "USDT")
		if !ok || base == "" {
			continue
		}

		price, err := strconv.ParseFloat(st.LastPrice, 64)
		if err != nil {
			continue
		}
		change, _ := strconv.ParseFloat(st.PriceChangePercent, 64)

		records = append(records, domain.MarketRecord{
			ID:        strings.ToLower(base),
			Symbol:    base,
			Name:      base,
			Price:     price,
			Change24h: change,
		})
		if limit > 0 && len(records) >= limit {
			break
		}
	}
	return records, nil
}
