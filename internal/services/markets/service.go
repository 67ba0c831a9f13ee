// Package markets implements the market listing service: provider fetch with
// a single mirror fallback, normalization into MarketRecord, price-direction
// diffing across refreshes, and a windowed pagination view.
package markets

import (
	"context"
	"strings"
	"sync"

	"github.com/antonkh/paperdesk/internal/domain"
	"go.uber.org/zap"
)

const (
	// DefaultPageSize is how many records one pagination window step exposes.
	DefaultPageSize = 20
	// DefaultFetchLimit bounds how many records a refresh pulls upstream.
	DefaultFetchLimit = 220
)

// Provider supplies raw market listings. Implementations decode provider
// payloads but leave normalization to this service.
type Provider interface {
	Name() string
	FetchMarkets(ctx context.Context, limit int) ([]domain.MarketRecord, error)
}

// Service owns the market list snapshot and its pagination window.
type Service struct {
	primary    Provider
	mirror     Provider
	pageSize   int
	fetchLimit int
	logger     *zap.Logger

	mu   sync.Mutex
	all  []domain.MarketRecord
	page int
}

// NewService creates a market service. mirror may be nil; non-positive sizes
// fall back to the defaults.
func NewService(primary Provider, mirror Provider, pageSize, fetchLimit int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if fetchLimit <= 0 {
		fetchLimit = DefaultFetchLimit
	}
	return &Service{
		primary:    primary,
		mirror:     mirror,
		pageSize:   pageSize,
		fetchLimit: fetchLimit,
		logger:     logger,
		page:       1,
	}
}

// Refresh fetches a new market snapshot, replacing the previous one (no
// merge). Each record is normalized, gets a synthesized sparkline, and a
// price direction computed against the previous snapshot by id. The current
// page is clamped so it never exceeds the pages available in the new set.
// On failure the held list is cleared and the error returned for the caller
// to present.
func (s *Service) Refresh(ctx context.Context) ([]domain.MarketRecord, error) {
	records, err := s.fetch(ctx)
	if err != nil {
		s.mu.Lock()
		s.all = nil
		s.page = 1
		s.mu.Unlock()
		return nil, err
	}

	if len(records) > s.fetchLimit {
		records = records[:s.fetchLimit]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := make(map[string]float64, len(s.all))
	for _, m := range s.all {
		prev[m.ID] = m.Price
	}

	normalized := make([]domain.MarketRecord, 0, len(records))
	for _, rec := range records {
		normalized = append(normalized, normalize(rec, prev))
	}
	s.all = normalized

	if max := s.maxPage(); s.page > max {
		s.page = max
	}
	return s.visible(), nil
}

func (s *Service) fetch(ctx context.Context) ([]domain.MarketRecord, error) {
	records, err := s.primary.FetchMarkets(ctx, s.fetchLimit)
	if err == nil {
		return records, nil
	}
	if s.mirror == nil {
		return nil, err
	}

	s.logger.Warn("primary market provider failed, trying mirror",
		zap.String("primary", s.primary.Name()),
		zap.String("mirror", s.mirror.Name()),
		zap.Error(err))

	return s.mirror.FetchMarkets(ctx, s.fetchLimit)
}

func normalize(rec domain.MarketRecord, prev map[string]float64) domain.MarketRecord {
	rec.Symbol = strings.ToUpper(rec.Symbol)
	rec.History = SynthesizeHistory(rec.Price)
	rec.PriceChange = domain.PriceSame
	if p, ok := prev[rec.ID]; ok {
		switch {
		case rec.Price > p:
			rec.PriceChange = domain.PriceUp
		case rec.Price < p:
			rec.PriceChange = domain.PriceDown
		}
	}
	return rec
}

// Visible returns a copy of the current pagination window.
func (s *Service) Visible() []domain.MarketRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible()
}

// LoadMore advances the window by one page and returns the new visible
// slice. It is a no-op when no further data is available.
func (s *Service) LoadMore() []domain.MarketRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.page < s.maxPage() {
		s.page++
	}
	return s.visible()
}

// Page returns the current page counter, starting at 1.
func (s *Service) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// HasMore reports whether records beyond the current window exist.
func (s *Service) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page*s.pageSize < len(s.all)
}

// Symbols returns the uppercase symbols of the full held snapshot.
func (s *Service) Symbols() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	symbols := make([]string, 0, len(s.all))
	for _, m := range s.all {
		symbols = append(symbols, m.Symbol)
	}
	return symbols
}

func (s *Service) visible() []domain.MarketRecord {
	end := s.page * s.pageSize
	if end > len(s.all) {
		end = len(s.all)
	}
	out := make([]domain.MarketRecord, end)
	copy(out, s.all[:end])
	return out
}

func (s *Service) maxPage() int {
	max := (len(s.all) + s.pageSize - 1) / s.pageSize
	if max < 1 {
		max = 1
	}
	return max
}
