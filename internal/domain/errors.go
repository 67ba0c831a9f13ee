package domain

import "fmt"

// ValidationError reports invalid caller input, such as an empty symbol or a
// non-positive price or amount. It is returned as a value so UI code can
// render the reason inline.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NotFoundError means a symbol did not resolve to any known asset.
type NotFoundError struct {
	Symbol string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("coin not found for symbol %q", e.Symbol)
}

// FetchError reports a non-success response from an upstream provider.
// RateLimited distinguishes quota exhaustion; Message carries the
// provider-supplied explanation when one was present.
type FetchError struct {
	Provider    string
	Status      int
	Message     string
	RateLimited bool
}

func (e *FetchError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.RateLimited {
		return fmt.Sprintf("%s: API limit reached, please wait before next request", e.Provider)
	}
	return fmt.Sprintf("%s: request failed with status %d", e.Provider, e.Status)
}

// NoDataError means the upstream answered successfully but the result set was
// empty after filtering.
type NoDataError struct {
	Reason string
}

func (e *NoDataError) Error() string {
	if e.Reason == "" {
		return "no price points returned for this period"
	}
	return e.Reason
}

// InsufficientFundsError is the ledger rejection for an order the portfolio
// cannot cover. Asset names the currency that fell short, so a quote-side
// shortfall (USDT) is distinguishable from an asset-side one.
type InsufficientFundsError struct {
	Asset string
	Side  TradeSide
}

func (e *InsufficientFundsError) Error() string {
	if e.Side == SideBuy {
		return fmt.Sprintf("Insufficient %s to buy.", e.Asset)
	}
	return fmt.Sprintf("Insufficient %s to sell.", e.Asset)
}
