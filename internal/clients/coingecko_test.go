package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antonkh/paperdesk/internal/domain"
)

func TestCoinGecko_FetchMarkets(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/markets", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "usd", q.Get("vs_currency"))
		assert.Equal(t, "market_cap_desc", q.Get("order"))
		assert.Equal(t, "5", q.Get("per_page"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"bitcoin","symbol":"btc","name":"Bitcoin","image":"https://img/btc.png",
			 "current_price":50000.5,"market_cap_rank":1,"market_cap":980000000000,
			 "price_change_percentage_24h":-1.2},
			{"id":"ethereum","symbol":"eth","name":"Ethereum"}
		]`))
	}))
	defer ts.Close()

	c := NewCoinGecko(ts.URL, 5*time.Second)
	records, err := c.FetchMarkets(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, domain.MarketRecord{
		ID:        "bitcoin",
		Rank:      1,
		Symbol:    "btc",
		Name:      "Bitcoin",
		Image:     "https://img/btc.png",
		Price:     50000.5,
		Change24h: -1.2,
		MarketCap: 980000000000,
	}, records[0])

	// absent numeric fields decode to zero
	assert.Equal(t, 0.0, records[1].Price)
}

func TestCoinGecko_FetchMarkets_RateLimited(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := NewCoinGecko(ts.URL, 5*time.Second)
	_, err := c.FetchMarkets(context.Background(), 5)
	require.Error(t, err)

	var fe *domain.FetchError
	require.ErrorAs(t, err, &fe)
	assert.True(t, fe.RateLimited)
	assert.Equal(t, http.StatusTooManyRequests, fe.Status)
	assert.Equal(t, "API limit reached. Please wait before next request.", fe.Message)
}

func TestCoinGecko_FetchMarkets_ProviderMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"status":{"error_message":"upstream exploded"}}`))
	}))
	defer ts.Close()

	c := NewCoinGecko(ts.URL, 5*time.Second)
	_, err := c.FetchMarkets(context.Background(), 5)

	var fe *domain.FetchError
	require.ErrorAs(t, err, &fe)
	assert.False(t, fe.RateLimited)
	assert.Equal(t, "upstream exploded", fe.Message)
	assert.Equal(t, "upstream exploded", fe.Error())
}

func TestCoinGecko_Search(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "BTC", r.URL.Query().Get("query"))
		w.Write([]byte(`{"coins":[{"id":"bitcoin","symbol":"BTC","name":"Bitcoin"}]}`))
	}))
	defer ts.Close()

	c := NewCoinGecko(ts.URL, 5*time.Second)
	coins, err := c.Search(context.Background(), "BTC")
	require.NoError(t, err)
	require.Len(t, coins, 1)
	assert.Equal(t, "bitcoin", coins[0].ID)
}

func TestCoinGecko_MarketChart(t *testing.T) {
	var gotRawQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/bitcoin/market_chart", r.URL.Path)
		gotRawQuery = r.URL.RawQuery
		w.Write([]byte(`{"prices":[[1700000000000,50000.1],[1700003600000],[1700007200000,50100.9]]}`))
	}))
	defer ts.Close()

	c := NewCoinGecko(ts.URL, 5*time.Second)

	points, err := c.MarketChart(context.Background(), "bitcoin", GranularityHourly)
	require.NoError(t, err)
	assert.NotContains(t, gotRawQuery, "interval=daily")

	// the malformed one-element pair is skipped
	require.Len(t, points, 2)
	assert.Equal(t, int64(1700000000000), points[0].Timestamp)
	assert.Equal(t, 50000.1, points[0].Price)

	_, err = c.MarketChart(context.Background(), "bitcoin", GranularityDaily)
	require.NoError(t, err)
	assert.Contains(t, gotRawQuery, "interval=daily")
}

func TestCoinGecko_CoinDetail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/bitcoin", r.URL.Path)
		w.Write([]byte(`{
			"id":"bitcoin","symbol":"btc","name":"Bitcoin",
			"market_data":{
				"market_cap":{"usd":980000000000},
				"total_volume":{"usd":25000000000},
				"price_change_percentage_24h":-1.2,
				"circulating_supply":19600000,
				"max_supply":null
			}
		}`))
	}))
	defer ts.Close()

	c := NewCoinGecko(ts.URL, 5*time.Second)
	info, err := c.CoinDetail(context.Background(), "bitcoin")
	require.NoError(t, err)

	assert.Equal(t, "bitcoin", info.ID)
	require.NotNil(t, info.MarketCap)
	assert.Equal(t, 980000000000.0, *info.MarketCap)
	require.NotNil(t, info.Change24h)
	assert.Equal(t, -1.2, *info.Change24h)
	assert.Nil(t, info.MaxSupply)
}
