// Package domain defines core data structures shared by paperdesk services.
package domain

// PriceDirection describes how an asset price moved between two refreshes.
type PriceDirection string

const (
	PriceUp   PriceDirection = "up"
	PriceDown PriceDirection = "down"
	PriceSame PriceDirection = "same"
)

// HistoryPoints is the number of sparkline samples carried by a MarketRecord.
const HistoryPoints = 7

// MarketRecord is the normalized representation of one tradable asset.
type MarketRecord struct {
	// ID is the provider-assigned identifier, unique per asset.
	ID string `json:"id"`
	// Rank is the market-cap ranking, 0 when unknown.
	Rank int `json:"rank"`
	// Symbol is the uppercase ticker used for display and as ledger key.
	Symbol string `json:"symbol"`
	// Name is the display name.
	Name string `json:"name"`
	// Image is an optional logo URL.
	Image string `json:"image,omitempty"`
	// Price is the current price in USD.
	Price float64 `json:"price"`
	// Change24h is the signed 24h percentage change.
	Change24h float64 `json:"change24h"`
	// MarketCap is the market capitalization in USD.
	MarketCap float64 `json:"marketCap"`
	// History holds HistoryPoints sparkline samples, oldest first. The series
	// is synthesized when the provider has no historical data and is never
	// authoritative.
	History []float64 `json:"history"`
	// PriceChange is the direction of the price move since the previous
	// snapshot of the same asset.
	PriceChange PriceDirection `json:"priceChange,omitempty"`
}

// CoinMatch is a single result of a provider coin search.
type CoinMatch struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}
