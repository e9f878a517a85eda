// Package market estimates a fair market price for a listing from
// recent comparable sale prices.
package market

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/dealscout/deal-engine/internal/metrics"
	score "github.com/dealscout/deal-engine/pkg/scorer"
)

const (
	// MinSamples is the floor below which an estimate is unusable.
	MinSamples = 3

	primaryWindow  = 90 * 24 * time.Hour
	fallbackWindow = 120 * 24 * time.Hour

	primaryLimit  = 100
	fallbackLimit = 250

	trimFraction = 0.15

	// DefaultQueryTimeout bounds a single comparable lookup.
	DefaultQueryTimeout = 5 * time.Second
)

// Querier fetches comparable prices. An empty model matches every
// model within the brand.
type Querier interface {
	ComparablePrices(ctx context.Context, category, brand, model string, since time.Time, limit int) ([]float64, error)
}

// Estimator turns comparable prices into a market average. Estimation
// is best effort: any failure degrades to "no market data" rather than
// failing the caller.
type Estimator struct {
	querier Querier
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithTimeout overrides the per-lookup timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Estimator) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger sets the logger used for degraded lookups.
func WithLogger(l *slog.Logger) Option {
	return func(e *Estimator) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEstimator returns an Estimator backed by q.
func NewEstimator(q Querier, opts ...Option) *Estimator {
	e := &Estimator{
		querier: q,
		timeout: DefaultQueryTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate returns the market context for a brand and model, or nil
// when no usable estimate exists. It tries a brand+model window first
// and widens to brand-only when that comes back thin.
func (e *Estimator) Estimate(ctx context.Context, category, brand, model string) *score.Market {
	if brand == "" {
		metrics.MarketNoDataTotal.Inc()
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.MarketQueryDuration.Observe(time.Since(start).Seconds())
	}()

	now := time.Now()

	prices, err := e.querier.ComparablePrices(ctx, category, brand, model, now.Add(-primaryWindow), primaryLimit)
	if err != nil {
		metrics.MarketQueryFailuresTotal.Inc()
		e.logger.Warn("market comparable query failed",
			"category", category, "brand", brand, "model", model, "error", err)
		return nil
	}

	if len(prices) >= MinSamples {
		return &score.Market{
			Average:    TrimmedMean(prices),
			Samples:    len(prices),
			FullWindow: true,
		}
	}

	prices, err = e.querier.ComparablePrices(ctx, category, brand, "", now.Add(-fallbackWindow), fallbackLimit)
	if err != nil {
		metrics.MarketQueryFailuresTotal.Inc()
		e.logger.Warn("market fallback query failed",
			"category", category, "brand", brand, "error", err)
		return nil
	}

	if len(prices) < MinSamples {
		metrics.MarketNoDataTotal.Inc()
		return nil
	}

	metrics.MarketFallbackTotal.Inc()
	return &score.Market{
		Average:    TrimmedMean(prices),
		Samples:    len(prices),
		FullWindow: false,
	}
}

// TrimmedMean averages prices after discarding outliers. Small samples
// fall back to the median, which a single outlier cannot drag around.
func TrimmedMean(prices []float64) float64 {
	if len(prices) == 0 {
		return 0
	}

	sorted := append([]float64(nil), prices...)
	sort.Float64s(sorted)

	if len(sorted) < 5 {
		return median(sorted)
	}

	trim := int(math.Ceil(float64(len(sorted)) * trimFraction))
	trimmed := sorted[trim : len(sorted)-trim]
	if len(trimmed) == 0 {
		return median(sorted)
	}

	var sum float64
	for _, p := range trimmed {
		sum += p
	}
	return sum / float64(len(trimmed))
}

// median expects sorted input.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
