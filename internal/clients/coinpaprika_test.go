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

func TestCoinPaprika_FetchMarkets(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tickers", r.URL.Path)
		w.Write([]byte(`[
			{"id":"btc-bitcoin","rank":1,"symbol":"BTC","name":"Bitcoin",
			 "quotes":{"USD":{"price":50000.5,"percent_change_24h":2.1,"market_cap":980000000000}}},
			{"id":"eth-ethereum","rank":2,"symbol":"ETH","name":"Ethereum",
			 "quotes":{"USD":{"price":3000,"percent_change_24h":-0.4,"market_cap":360000000000}}},
			{"id":"usdt-tether","rank":3,"symbol":"USDT","name":"Tether",
			 "quotes":{"USD":{"price":1,"percent_change_24h":0,"market_cap":90000000000}}}
		]`))
	}))
	defer ts.Close()

	c := NewCoinPaprika(ts.URL, 5*time.Second)

	// the tickers endpoint takes no limit, so truncation is client-side
	records, err := c.FetchMarkets(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "btc-bitcoin", records[0].ID)
	assert.Equal(t, 1, records[0].Rank)
	assert.Equal(t, 50000.5, records[0].Price)
	assert.Equal(t, 2.1, records[0].Change24h)
}

func TestCoinPaprika_FetchMarkets_QuotaExhausted(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":"payment required to continue"}`))
	}))
	defer ts.Close()

	c := NewCoinPaprika(ts.URL, 5*time.Second)
	_, err := c.FetchMarkets(context.Background(), 10)
	require.Error(t, err)

	var fe *domain.FetchError
	require.ErrorAs(t, err, &fe)
	assert.True(t, fe.RateLimited)
	assert.Equal(t, "payment required to continue", fe.Message)
}
