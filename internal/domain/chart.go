package domain

// PricePoint is one raw sample of a provider time series.
type PricePoint struct {
	// Timestamp is epoch milliseconds.
	Timestamp int64
	// Price is the quoted price at Timestamp.
	Price float64
}

// ChartSeries is a display-ready resampled price series. Prices, Labels and
// Timestamps are parallel sequences of equal length in chronological order.
type ChartSeries struct {
	Prices     []float64 `json:"prices"`
	Labels     []string  `json:"labels"`
	Timestamps []int64   `json:"timestamps"`
	// SMA is a simple-moving-average overlay aligned to the last len(SMA)
	// points of Prices. Empty when the series is shorter than the window.
	SMA []float64 `json:"sma,omitempty"`
}

// Len returns the number of points in the series.
func (c *ChartSeries) Len() int {
	return len(c.Prices)
}
