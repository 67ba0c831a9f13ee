// Package coininfo loads supplementary statistics for one asset.
package coininfo

import (
	"context"
	"math"
	"strings"

	"github.com/antonkh/paperdesk/internal/domain"
	"github.com/antonkh/paperdesk/internal/services/lookup"
	"go.uber.org/zap"
)

// API is the provider surface the coin info service needs.
type API interface {
	Search(ctx context.Context, query string) ([]domain.CoinMatch, error)
	CoinDetail(ctx context.Context, id string) (domain.CoinInfo, error)
}

// Service resolves a symbol and fetches its statistics document.
type Service struct {
	api    API
	logger *zap.Logger
}

// NewService creates a coin info service.
func NewService(api API, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{api: api, logger: logger}
}

// LoadInfo resolves the symbol and returns its supplementary statistics.
// These are informational values, not tradable quantities: absent or
// non-finite numbers stay nil (unknown) instead of defaulting to zero.
func (s *Service) LoadInfo(ctx context.Context, symbol string) (domain.CoinInfo, error) {
	match, err := lookup.Resolve(ctx, s.api, symbol)
	if err != nil {
		return domain.CoinInfo{}, err
	}

	info, err := s.api.CoinDetail(ctx, match.ID)
	if err != nil {
		return domain.CoinInfo{}, err
	}

	info.MarketCap = sanitize(info.MarketCap)
	info.Volume24h = sanitize(info.Volume24h)
	info.Change24h = sanitize(info.Change24h)
	info.Circulating = sanitize(info.Circulating)
	info.MaxSupply = sanitize(info.MaxSupply)

	if info.ID == "" {
		info.ID = match.ID
	}
	if info.Symbol == "" {
		info.Symbol = match.Symbol
	}
	info.Symbol = strings.ToUpper(info.Symbol)
	if info.Name == "" {
		info.Name = match.Name
	}
	return info, nil
}

func sanitize(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}
