// Package chart implements the market detail service: it resolves a symbol
// to a coin id and produces a resampled 30-day price series, preferring
// hourly granularity and falling back to daily.
package chart

import (
	"context"
	"time"

	"github.com/antonkh/paperdesk/internal/clients"
	"github.com/antonkh/paperdesk/internal/domain"
	"github.com/antonkh/paperdesk/internal/services/lookup"
	"github.com/antonkh/paperdesk/pkg/series"
	"go.uber.org/zap"
)

const (
	// decimationStep bounds hourly chart density: every 4th sample is kept.
	decimationStep = 4
	pricePlaces    = 4
	smaWindow      = 7

	dateLabelLayout = "Jan 2"
)

// API is the provider surface the chart service needs.
type API interface {
	Search(ctx context.Context, query string) ([]domain.CoinMatch, error)
	MarketChart(ctx context.Context, id string, g clients.Granularity) ([]domain.PricePoint, error)
}

// Service loads display-ready chart series for a symbol.
type Service struct {
	api    API
	logger *zap.Logger
}

// NewService creates a chart service.
func NewService(api API, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{api: api, logger: logger}
}

// LoadChart resolves the symbol and fetches its price series. The attempts
// are strictly sequential: daily granularity runs only after the hourly one
// failed or yielded zero usable points, and when both fail the error of the
// last attempt is what surfaces.
func (s *Service) LoadChart(ctx context.Context, symbol string) (domain.ChartSeries, error) {
	match, err := lookup.Resolve(ctx, s.api, symbol)
	if err != nil {
		return domain.ChartSeries{}, err
	}

	attempts := []clients.Granularity{clients.GranularityHourly, clients.GranularityDaily}

	var lastErr error
	for _, g := range attempts {
		out, err := s.load(ctx, match.ID, g)
		if err != nil {
			s.logger.Debug("chart attempt failed",
				zap.String("coin", match.ID),
				zap.String("granularity", string(g)),
				zap.Error(err))
			lastErr = err
			continue
		}
		return out, nil
	}
	return domain.ChartSeries{}, lastErr
}

func (s *Service) load(ctx context.Context, id string, g clients.Granularity) (domain.ChartSeries, error) {
	points, err := s.api.MarketChart(ctx, id, g)
	if err != nil {
		return domain.ChartSeries{}, err
	}

	var out domain.ChartSeries
	if g == clients.GranularityHourly {
		out = resampleHourly(points)
	} else {
		out = resampleDaily(points)
	}
	if out.Len() == 0 {
		return domain.ChartSeries{}, &domain.NoDataError{}
	}

	out.SMA = series.SMA(out.Prices, smaWindow)
	for i, v := range out.SMA {
		out.SMA[i] = series.Round(v, pricePlaces)
	}
	return out, nil
}

// resampleHourly decimates the dense hourly series, keeping every 4th point.
func resampleHourly(points []domain.PricePoint) domain.ChartSeries {
	kept := series.Decimate(points, decimationStep)

	var out domain.ChartSeries
	for _, p := range kept {
		out.Prices = append(out.Prices, series.Round(p.Price, pricePlaces))
		out.Labels = append(out.Labels, dateLabel(p.Timestamp))
		out.Timestamps = append(out.Timestamps, p.Timestamp)
	}
	return out
}

// resampleDaily collapses consecutive points sharing a calendar-day label
// into one, last value wins.
func resampleDaily(points []domain.PricePoint) domain.ChartSeries {
	var out domain.ChartSeries
	for _, p := range points {
		label := dateLabel(p.Timestamp)
		if n := len(out.Labels); n > 0 && out.Labels[n-1] == label {
			out.Prices[n-1] = series.Round(p.Price, pricePlaces)
			out.Timestamps[n-1] = p.Timestamp
			continue
		}
		out.Prices = append(out.Prices, series.Round(p.Price, pricePlaces))
		out.Labels = append(out.Labels, label)
		out.Timestamps = append(out.Timestamps, p.Timestamp)
	}
	return out
}

func dateLabel(ts int64) string {
	return time.UnixMilli(ts).UTC().Format(dateLabelLayout)
}
