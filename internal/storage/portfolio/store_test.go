package portfolio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antonkh/paperdesk/internal/domain"
)

func TestStore_LoadMissing(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	snapshot, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, snapshot)
}

func TestStore_LoadEmptyFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "portfolio.json"), nil, 0o644))

	snapshot, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, snapshot)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	trade := domain.Trade{
		ID:        42,
		Symbol:    "BTC",
		Side:      domain.SideBuy,
		Price:     decimal.NewFromInt(30000),
		Amount:    decimal.NewFromFloat(0.2),
		Total:     decimal.NewFromInt(6000),
		CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	in := Snapshot{
		Balances: map[string]string{"USDT": "4000", "BTC": "0.2"},
		Trades:   []StoredTrade{NewStoredTrade(trade)},
	}
	require.NoError(t, store.Save(in))

	out, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, in.Balances, out.Balances)
	require.Len(t, out.Trades, 1)

	got, err := out.Trades[0].ToTrade()
	require.NoError(t, err)
	assert.Equal(t, trade.ID, got.ID)
	assert.Equal(t, trade.Symbol, got.Symbol)
	assert.Equal(t, trade.Side, got.Side)
	assert.True(t, got.Price.Equal(trade.Price))
	assert.True(t, got.Amount.Equal(trade.Amount))
	assert.True(t, got.Total.Equal(trade.Total))
	assert.True(t, got.CreatedAt.Equal(trade.CreatedAt))
}

func TestStore_LoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "portfolio.json"), []byte("{not json"), 0o644))

	_, err = store.Load()
	assert.Error(t, err)
}

func TestStoredTrade_ToTradeBadDecimal(t *testing.T) {
	st := StoredTrade{Price: "abc", Amount: "1", Total: "1"}
	_, err := st.ToTrade()
	assert.Error(t, err)
}
