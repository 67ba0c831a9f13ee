package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TradeSide is the direction of a paper trade.
type TradeSide string

const (
	SideBuy  TradeSide = "BUY"
	SideSell TradeSide = "SELL"
)

// Valid reports whether the side is one of the known values.
func (s TradeSide) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Trade is one executed paper trade. Trades are immutable once appended to
// the ledger.
type Trade struct {
	// ID is derived from the creation timestamp (epoch milliseconds) and is
	// monotonically non-decreasing within a session.
	ID        int64           `json:"id"`
	Symbol    string          `json:"symbol"`
	Side      TradeSide       `json:"type"`
	Price     decimal.Decimal `json:"price"`
	Amount    decimal.Decimal `json:"amount"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
}

// String returns a human-readable representation.
func (t *Trade) String() string {
	return fmt.Sprintf("%s %s %s @ %s", t.Side, t.Amount.String(), t.Symbol, t.Price.String())
}

// TradeRecord couples a trade with its journal index so consumers can resume
// reading the journal from a known position.
type TradeRecord struct {
	Trade
	Index uint64 `json:"index"`
}
