package lookup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antonkh/paperdesk/internal/domain"
)

type fakeSearcher struct {
	coins []domain.CoinMatch
	err   error
	query string
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]domain.CoinMatch, error) {
	f.query = query
	return f.coins, f.err
}

func TestResolve_ExactSymbolWins(t *testing.T) {
	api := &fakeSearcher{coins: []domain.CoinMatch{
		{ID: "wrapped-bitcoin", Symbol: "WBTC", Name: "Wrapped Bitcoin"},
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin"},
	}}

	match, err := Resolve(context.Background(), api, " btc ")
	require.NoError(t, err)
	assert.Equal(t, "bitcoin", match.ID)
	// the query reaching the provider is trimmed and upper-cased
	assert.Equal(t, "BTC", api.query)
}

func TestResolve_FallsBackToFirstResult(t *testing.T) {
	api := &fakeSearcher{coins: []domain.CoinMatch{
		{ID: "bitcoin-cash", Symbol: "BCH", Name: "Bitcoin Cash"},
		{ID: "bitcoin-gold", Symbol: "BTG", Name: "Bitcoin Gold"},
	}}

	match, err := Resolve(context.Background(), api, "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, "bitcoin-cash", match.ID)
}

func TestResolve_EmptySymbol(t *testing.T) {
	_, err := Resolve(context.Background(), &fakeSearcher{}, "   ")
	require.Error(t, err)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Symbol is required.", ve.Reason)
}

func TestResolve_NoResults(t *testing.T) {
	_, err := Resolve(context.Background(), &fakeSearcher{}, "zzz")
	require.Error(t, err)

	var nfe *domain.NotFoundError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, "ZZZ", nfe.Symbol)
}

func TestResolve_MatchWithoutID(t *testing.T) {
	api := &fakeSearcher{coins: []domain.CoinMatch{{Symbol: "BTC", Name: "Bitcoin"}}}

	_, err := Resolve(context.Background(), api, "BTC")
	var nfe *domain.NotFoundError
	assert.ErrorAs(t, err, &nfe)
}

func TestResolve_SearchErrorPassesThrough(t *testing.T) {
	api := &fakeSearcher{err: assert.AnError}

	_, err := Resolve(context.Background(), api, "BTC")
	assert.ErrorIs(t, err, assert.AnError)
}
