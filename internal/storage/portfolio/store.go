// Package portfolio persists the paper-trading ledger snapshot (balances and
// trade history) as a single JSON document so restarts keep the portfolio.
package portfolio

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/antonkh/paperdesk/internal/domain"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const snapshotFileName = "portfolio.json"

// Store reads and writes ledger snapshots under a fixed directory.
type Store struct {
	path string
}

// NewStore creates a snapshot store rooted at dir, creating it when needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create portfolio state dir")
	}
	return &Store{path: filepath.Join(dir, snapshotFileName)}, nil
}

// Snapshot is the persisted ledger shape. Decimal values are stored as
// strings to survive round-trips without float drift.
type Snapshot struct {
	Balances map[string]string `json:"balances"`
	Trades   []StoredTrade     `json:"trades"`
}

// StoredTrade is a serializable form of domain.Trade.
type StoredTrade struct {
	ID        int64     `json:"id"`
	Symbol    string    `json:"symbol"`
	Side      string    `json:"type"`
	Price     string    `json:"price"`
	Amount    string    `json:"amount"`
	Total     string    `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
}

// Load reads the snapshot from disk. A missing or empty file yields nil
// without error.
func (s *Store) Load() (*Snapshot, error) {
	if s == nil || s.path == "" {
		return nil, nil
	}

	payload, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read portfolio snapshot")
	}

	if len(payload) == 0 {
		return nil, nil
	}

	var snapshot Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, errors.Wrap(err, "decode portfolio snapshot")
	}
	return &snapshot, nil
}

// Save writes the snapshot to disk atomically via temp file.
func (s *Store) Save(snapshot Snapshot) error {
	if s == nil || s.path == "" {
		return nil
	}

	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode portfolio snapshot")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return errors.Wrap(err, "write portfolio snapshot temp file")
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "persist portfolio snapshot")
	}
	return nil
}

// NewStoredTrade converts a domain trade into its stored representation.
func NewStoredTrade(t domain.Trade) StoredTrade {
	return StoredTrade{
		ID:        t.ID,
		Symbol:    t.Symbol,
		Side:      string(t.Side),
		Price:     t.Price.String(),
		Amount:    t.Amount.String(),
		Total:     t.Total.String(),
		CreatedAt: t.CreatedAt,
	}
}

// ToTrade reconstructs a domain trade from stored data.
func (st StoredTrade) ToTrade() (domain.Trade, error) {
	price, err := decimal.NewFromString(st.Price)
	if err != nil {
		return domain.Trade{}, errors.Wrap(err, "decode trade price")
	}
	amount, err := decimal.NewFromString(st.Amount)
	if err != nil {
		return domain.Trade{}, errors.Wrap(err, "decode trade amount")
	}
	total, err := decimal.NewFromString(st.Total)
	if err != nil {
		return domain.Trade{}, errors.Wrap(err, "decode trade total")
	}

	return domain.Trade{
		ID:        st.ID,
		Symbol:    st.Symbol,
		Side:      domain.TradeSide(st.Side),
		Price:     price,
		Amount:    amount,
		Total:     total,
		CreatedAt: st.CreatedAt,
	}, nil
}
