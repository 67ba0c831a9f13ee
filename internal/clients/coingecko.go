// Package clients contains thin REST clients for public market-data
// providers. Clients decode provider payloads into domain types and convert
// non-success responses into domain.FetchError; all normalization policy
// lives in the services that consume them.
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/antonkh/paperdesk/internal/domain"
	"github.com/pkg/errors"
)

const (
	coingeckoBaseURL  = "https://api.coingecko.com/api/v3"
	providerCoinGecko = "coingecko"

	chartDays = 30
)

// Granularity selects the sampling interval of a market chart request.
type Granularity string

const (
	GranularityHourly Granularity = "hourly"
	GranularityDaily  Granularity = "daily"
)

// CoinGecko is a client for the public CoinGecko v3 REST API.
type CoinGecko struct {
	baseURL string
	httpc   *http.Client
}

// NewCoinGecko creates a CoinGecko client. An empty baseURL selects the
// public API.
func NewCoinGecko(baseURL string, timeout time.Duration) *CoinGecko {
	if baseURL == "" {
		baseURL = coingeckoBaseURL
	}
	return &CoinGecko{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

// Name identifies the provider in logs and error messages.
func (c *CoinGecko) Name() string { return providerCoinGecko }

type geckoMarket struct {
	ID             string  `json:"id"`
	Symbol         string  `json:"symbol"`
	Name           string  `json:"name"`
	Image          string  `json:"image"`
	CurrentPrice   float64 `json:"current_price"`
	MarketCapRank  int     `json:"market_cap_rank"`
	MarketCap      float64 `json:"market_cap"`
	PriceChange24h float64 `json:"price_change_percentage_24h"`
}

// FetchMarkets returns up to limit market listings ordered by market cap
// descending. Missing numeric fields decode to zero.
func (c *CoinGecko) FetchMarkets(ctx context.Context, limit int) ([]domain.MarketRecord, error) {
	u := fmt.Sprintf("%s/coins/markets?vs_currency=usd&order=market_cap_desc&per_page=%d&page=1&sparkline=false&price_change_percentage=24h",
		c.baseURL, limit)

	var raw []geckoMarket
	if err := c.getJSON(ctx, u, &raw); err != nil {
		return nil, err
	}

	records := make([]domain.MarketRecord, 0, len(raw))
	for _, m := range raw {
		records = append(records, domain.MarketRecord{
			ID:        m.ID,
			Rank:      m.MarketCapRank,
			Symbol:    m.Symbol,
			Name:      m.Name,
			Image:     m.Image,
			Price:     m.CurrentPrice,
			Change24h: m.PriceChange24h,
			MarketCap: m.MarketCap,
		})
	}
	return records, nil
}

// Search queries the coin search endpoint and returns matches in provider
// relevance order.
func (c *CoinGecko) Search(ctx context.Context, query string) ([]domain.CoinMatch, error) {
	u := fmt.Sprintf("%s/search?query=%s", c.baseURL, url.QueryEscape(query))

	var raw struct {
		Coins []domain.CoinMatch `json:"coins"`
	}
	if err := c.getJSON(ctx, u, &raw); err != nil {
		return nil, err
	}
	return raw.Coins, nil
}

// MarketChart fetches 30 days of price history for the coin id at the given
// granularity. Malformed pairs are skipped.
func (c *CoinGecko) MarketChart(ctx context.Context, id string, g Granularity) ([]domain.PricePoint, error) {
	u := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=usd&days=%d", c.baseURL, url.PathEscape(id), chartDays)
	if g == GranularityDaily {
		u += "&interval=daily"
	}

	var raw struct {
		Prices [][]float64 `json:"prices"`
	}
	if err := c.getJSON(ctx, u, &raw); err != nil {
		return nil, err
	}

	points := make([]domain.PricePoint, 0, len(raw.Prices))
	for _, p := range raw.Prices {
		if len(p) < 2 {
			continue
		}
		points = append(points, domain.PricePoint{Timestamp: int64(p[0]), Price: p[1]})
	}
	return points, nil
}

type geckoUSD struct {
	USD *float64 `json:"usd"`
}

type geckoCoinDetail struct {
	ID         string `json:"id"`
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	MarketData struct {
		MarketCap         geckoUSD `json:"market_cap"`
		TotalVolume       geckoUSD `json:"total_volume"`
		PriceChange24h    *float64 `json:"price_change_percentage_24h"`
		CirculatingSupply *float64 `json:"circulating_supply"`
		MaxSupply         *float64 `json:"max_supply"`
	} `json:"market_data"`
}

// CoinDetail fetches supplementary market statistics for the coin id.
// Absent numeric fields come back as nil pointers.
func (c *CoinGecko) CoinDetail(ctx context.Context, id string) (domain.CoinInfo, error) {
	u := fmt.Sprintf("%s/coins/%s?localization=false&tickers=false&market_data=true&community_data=false&developer_data=false&sparkline=false",
		c.baseURL, url.PathEscape(id))

	var raw geckoCoinDetail
	if err := c.getJSON(ctx, u, &raw); err != nil {
		return domain.CoinInfo{}, err
	}

	return domain.CoinInfo{
		ID:          raw.ID,
		Symbol:      raw.Symbol,
		Name:        raw.Name,
		MarketCap:   raw.MarketData.MarketCap.USD,
		Volume24h:   raw.MarketData.TotalVolume.USD,
		Change24h:   raw.MarketData.PriceChange24h,
		Circulating: raw.MarketData.CirculatingSupply,
		MaxSupply:   raw.MarketData.MaxSupply,
	}, nil
}

func (c *CoinGecko) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Wrap(err, "build coingecko request")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return errors.Wrap(err, "coingecko request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return newFetchError(providerCoinGecko, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode coingecko response")
	}
	return nil
}
