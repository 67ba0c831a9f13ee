// Package ledger implements the paper-trading ledger: a balances map keyed
// by asset symbol, an append-only trade log, and durable snapshots so
// restarts keep the portfolio.
package ledger

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/antonkh/paperdesk/internal/domain"
	"github.com/antonkh/paperdesk/internal/storage/portfolio"
	"github.com/antonkh/paperdesk/internal/storage/tradelog"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// QuoteAsset is the settlement currency of every trade.
const QuoteAsset = "USDT"

// seedBalance is the starting quote amount for a fresh portfolio.
var seedBalance = decimal.NewFromInt(10000)

// Pricer returns the current quote price of a base asset.
type Pricer interface {
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// Ledger owns the portfolio state. All mutations go through PlaceOrder.
type Ledger struct {
	mu       sync.RWMutex
	balances map[string]decimal.Decimal
	trades   []domain.Trade
	store    *portfolio.Store
	journal  *tradelog.WALStore
	logger   *zap.Logger
	lastID   int64
}

// New creates a ledger, restoring a prior snapshot when one exists. An
// absent, empty or malformed snapshot seeds the portfolio with the default
// quote balance and an empty trade log. Both store and journal may be nil,
// in which case the ledger runs in memory only.
func New(store *portfolio.Store, journal *tradelog.WALStore, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Ledger{
		balances: map[string]decimal.Decimal{QuoteAsset: seedBalance},
		store:    store,
		journal:  journal,
		logger:   logger,
	}
	if err := l.restore(); err != nil {
		logger.Warn("failed to restore portfolio snapshot", zap.Error(err))
	}
	logger.Info("ledger init",
		zap.String("quote", l.balances[QuoteAsset].String()),
		zap.Int("trades", len(l.trades)))
	return l
}

func (l *Ledger) restore() error {
	if l.store == nil {
		return nil
	}
	snapshot, err := l.store.Load()
	if err != nil || snapshot == nil {
		return err
	}
	if len(snapshot.Balances) == 0 {
		// an empty snapshot keeps the seed
		return nil
	}

	balances := make(map[string]decimal.Decimal, len(snapshot.Balances))
	for symbol, raw := range snapshot.Balances {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return errors.Wrapf(err, "decode %s balance", symbol)
		}
		balances[strings.ToUpper(symbol)] = v
	}

	trades := make([]domain.Trade, 0, len(snapshot.Trades))
	var lastID int64
	for _, st := range snapshot.Trades {
		trade, err := st.ToTrade()
		if err != nil {
			return err
		}
		trades = append(trades, trade)
		if trade.ID > lastID {
			lastID = trade.ID
		}
	}

	l.balances = balances
	l.trades = trades
	l.lastID = lastID
	return nil
}

// PlaceOrder validates and executes one paper trade. Rejections come back as
// typed errors (never panics) and leave balances, trades and storage
// untouched. On success both balance legs are applied within one critical
// section, the trade is appended, and the full snapshot is persisted before
// returning; storage failures degrade to in-memory operation.
func (l *Ledger) PlaceOrder(symbol string, side domain.TradeSide, price, amount decimal.Decimal) (domain.Trade, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return domain.Trade{}, &domain.ValidationError{Reason: "Symbol is required."}
	}
	if !side.Valid() {
		return domain.Trade{}, &domain.ValidationError{Reason: "Order type must be BUY or SELL."}
	}
	if !price.IsPositive() || !amount.IsPositive() {
		return domain.Trade{}, &domain.ValidationError{Reason: "Price and amount must be greater than zero."}
	}

	total := price.Mul(amount)

	l.mu.Lock()
	defer l.mu.Unlock()

	switch side {
	case domain.SideBuy:
		quote := l.balances[QuoteAsset]
		if quote.LessThan(total) {
			return domain.Trade{}, &domain.InsufficientFundsError{Asset: QuoteAsset, Side: side}
		}
		l.balances[QuoteAsset] = quote.Sub(total)
		l.balances[symbol] = l.balances[symbol].Add(amount)
	case domain.SideSell:
		held := l.balances[symbol]
		if held.LessThan(amount) {
			return domain.Trade{}, &domain.InsufficientFundsError{Asset: symbol, Side: side}
		}
		l.balances[symbol] = held.Sub(amount)
		l.balances[QuoteAsset] = l.balances[QuoteAsset].Add(total)
	}

	// trade ids are timestamp-derived and never go backwards in a session
	id := time.Now().UnixMilli()
	if id < l.lastID {
		id = l.lastID
	}
	l.lastID = id

	trade := domain.Trade{
		ID:        id,
		Symbol:    symbol,
		Side:      side,
		Price:     price,
		Amount:    amount,
		Total:     total,
		CreatedAt: time.Now().UTC(),
	}
	l.trades = append(l.trades, trade)
	l.persist(trade)
	return trade, nil
}

func (l *Ledger) persist(trade domain.Trade) {
	if l.store != nil {
		snapshot := portfolio.Snapshot{
			Balances: make(map[string]string, len(l.balances)),
			Trades:   make([]portfolio.StoredTrade, 0, len(l.trades)),
		}
		for symbol, balance := range l.balances {
			snapshot.Balances[symbol] = balance.String()
		}
		for _, t := range l.trades {
			snapshot.Trades = append(snapshot.Trades, portfolio.NewStoredTrade(t))
		}
		if err := l.store.Save(snapshot); err != nil {
			l.logger.Warn("failed to persist portfolio snapshot", zap.Error(err))
		}
	}
	if l.journal != nil {
		if err := l.journal.Append(trade); err != nil {
			l.logger.Warn("failed to journal trade", zap.Error(err))
		}
	}
}

// SeedSymbols ensures a zero balance entry exists for every given symbol so
// fresh portfolios list all known assets.
func (l *Ledger) SeedSymbols(symbols []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, symbol := range symbols {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol == "" {
			continue
		}
		if _, ok := l.balances[symbol]; !ok {
			l.balances[symbol] = decimal.Zero
		}
	}
}

// Balance returns the held amount of one symbol.
func (l *Ledger) Balance(symbol string) decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[strings.ToUpper(symbol)]
}

// Balances returns a copy of the balances map.
func (l *Ledger) Balances() map[string]decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]decimal.Decimal, len(l.balances))
	for symbol, balance := range l.balances {
		out[symbol] = balance
	}
	return out
}

// Trades returns a copy of the trade log, oldest first.
func (l *Ledger) Trades() []domain.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Trade, len(l.trades))
	copy(out, l.trades)
	return out
}

// TotalValue prices the whole portfolio in the quote asset using the given
// pricer. Assets whose price lookup fails are skipped with a warning so one
// unknown ticker does not sink the valuation.
func (l *Ledger) TotalValue(ctx context.Context, pricer Pricer) (decimal.Decimal, error) {
	if pricer == nil {
		return decimal.Zero, errors.New("pricer is required for valuation")
	}

	total := decimal.Zero
	for symbol, amount := range l.Balances() {
		if amount.IsZero() {
			continue
		}
		if symbol == QuoteAsset {
			total = total.Add(amount)
			continue
		}
		price, err := pricer.GetPrice(ctx, symbol)
		if err != nil {
			l.logger.Warn("skipping asset in valuation",
				zap.String("symbol", symbol),
				zap.Error(err))
			continue
		}
		total = total.Add(amount.Mul(price))
	}
	return total, nil
}
