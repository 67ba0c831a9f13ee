package markets

import (
	"math/rand"

	"github.com/antonkh/paperdesk/internal/domain"
	"github.com/antonkh/paperdesk/pkg/series"
)

// historyStepSpread spreads each random-walk step over ±1% of the live price.
const historyStepSpread = 0.02

// SynthesizeHistory builds a HistoryPoints-long random-walk approximation of
// recent prices when the provider has no historical series. The walk is
// accumulated backward from the live price, so the last element equals the
// live price; every sample is rounded to 2 decimal places.
func SynthesizeHistory(price float64) []float64 {
	history := make([]float64, domain.HistoryPoints)
	current := price
	for i := domain.HistoryPoints - 1; i >= 0; i-- {
		history[i] = series.Round(current, 2)
		current += price * historyStepSpread * (rand.Float64() - 0.5)
	}
	return history
}
