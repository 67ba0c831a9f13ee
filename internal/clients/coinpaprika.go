package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/antonkh/paperdesk/internal/domain"
	"github.com/pkg/errors"
)

const (
	coinpaprikaBaseURL  = "https://api.coinpaprika.com/v1"
	providerCoinPaprika = "coinpaprika"
)

// CoinPaprika is a client for the public CoinPaprika v1 REST API. It serves
// as the mirror market-listing source: the tickers endpoint takes no page
// size, so results are truncated client-side.
type CoinPaprika struct {
	baseURL string
	httpc   *http.Client
}

// NewCoinPaprika creates a CoinPaprika client. An empty baseURL selects the
// public API.
func NewCoinPaprika(baseURL string, timeout time.Duration) *CoinPaprika {
	if baseURL == "" {
		baseURL = coinpaprikaBaseURL
	}
	return &CoinPaprika{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

// Name identifies the provider in logs and error messages.
func (c *CoinPaprika) Name() string { return providerCoinPaprika }

type paprikaTicker struct {
	ID     string `json:"id"`
	Rank   int    `json:"rank"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Quotes struct {
		USD struct {
			Price            float64 `json:"price"`
			PercentChange24h float64 `json:"percent_change_24h"`
			MarketCap        float64 `json:"market_cap"`
		} `json:"USD"`
	} `json:"quotes"`
}

// FetchMarkets returns up to limit tickers. CoinPaprika answers 402 when the
// request quota is exhausted; that surfaces as a rate-limited FetchError.
func (c *CoinPaprika) FetchMarkets(ctx context.Context, limit int) ([]domain.MarketRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/tickers", nil)
	if err != nil {
		return nil, errors.Wrap(err, "build coinpaprika request")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "coinpaprika request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newFetchError(providerCoinPaprika, resp)
	}

	var raw []paprikaTicker
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decode coinpaprika response")
	}

	if limit > 0 && len(raw) > limit {
		raw = raw[:limit]
	}

	records := make([]domain.MarketRecord, 0, len(raw))
	for _, t := range raw {
		records = append(records, domain.MarketRecord{
			ID:        t.ID,
			Rank:      t.Rank,
			Symbol:    t.Symbol,
			Name:      t.Name,
			Price:     t.Quotes.USD.Price,
			Change24h: t.Quotes.USD.PercentChange24h,
			MarketCap: t.Quotes.USD.MarketCap,
		})
	}
	return records, nil
}
