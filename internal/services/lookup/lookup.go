// Package lookup resolves a ticker symbol to a provider coin identifier via
// the provider search endpoint.
package lookup

import (
	"context"
	"strings"

	"github.com/antonkh/paperdesk/internal/domain"
)

// Searcher queries a provider coin search endpoint.
type Searcher interface {
	Search(ctx context.Context, query string) ([]domain.CoinMatch, error)
}

// Resolve trims and upper-cases the symbol, then picks the first result
// whose symbol matches case-insensitively, falling back to the first result
// overall. An empty symbol is a ValidationError; an empty result set or a
// match without an id is a NotFoundError.
func Resolve(ctx context.Context, api Searcher, symbol string) (domain.CoinMatch, error) {
	query := strings.ToUpper(strings.TrimSpace(symbol))
	if query == "" {
		return domain.CoinMatch{}, &domain.ValidationError{Reason: "Symbol is required."}
	}

	coins, err := api.Search(ctx, query)
	if err != nil {
		return domain.CoinMatch{}, err
	}
	if len(coins) == 0 {
		return domain.CoinMatch{}, &domain.NotFoundError{Symbol: query}
	}

	match := coins[0]
	for _, c := range coins {
		if strings.EqualFold(c.Symbol, query) {
			match = c
			break
		}
	}
	if match.ID == "" {
		return domain.CoinMatch{}, &domain.NotFoundError{Symbol: query}
	}
	return match, nil
}
