package domain

// CoinInfo holds supplementary statistics for one asset. Numeric fields are
// pointers: nil means the provider reported no value, which is distinct from
// a value of zero.
type CoinInfo struct {
	ID          string   `json:"id"`
	Symbol      string   `json:"symbol"`
	Name        string   `json:"name"`
	MarketCap   *float64 `json:"marketCap"`
	Volume24h   *float64 `json:"volume24h"`
	Change24h   *float64 `json:"change24h"`
	Circulating *float64 `json:"circulating"`
	MaxSupply   *float64 `json:"maxSupply"`
}
