// Package engine implements the core business logic: composite deal
// scoring, profit estimation, batch rescoring, and scheduling.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dealscout/deal-engine/internal/catalog"
	"github.com/dealscout/deal-engine/internal/enhance"
	"github.com/dealscout/deal-engine/internal/market"
	"github.com/dealscout/deal-engine/internal/store"
	score "github.com/dealscout/deal-engine/pkg/scorer"
)

const defaultRescoreWorkers = 4

// ErrNilListing is returned when scoring is invoked without a listing.
var ErrNilListing = errors.New("listing is nil")

// ErrInvalidListing is returned for a listing that cannot be scored.
var ErrInvalidListing = errors.New("listing price must be positive")

// Engine orchestrates scoring: it snapshots category config, fetches
// market context, runs the component scorers, and projects profit.
type Engine struct {
	catalog  *catalog.Store
	market   MarketSource
	enhancer enhance.Enhancer
	store    store.Store
	log      *slog.Logger
	tracer   trace.Tracer

	rescoreWorkers int
	now            func() time.Time
}

// MarketSource provides the market average used by price scoring.
// A nil result means "no market data", never an error.
type MarketSource interface {
	Estimate(ctx context.Context, category, brand, model string) *score.Market
}

// NewEngine creates a new Engine with injected dependencies.
func NewEngine(c *catalog.Store, m MarketSource, opts ...EngineOption) *Engine {
	eng := &Engine{
		catalog:        c,
		market:         m,
		enhancer:       enhance.NewNoop(),
		log:            slog.Default(),
		tracer:         otel.Tracer("deal-engine"),
		rescoreWorkers: defaultRescoreWorkers,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(eng)
	}
	return eng
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithEnhancer installs a demand enhancer.
func WithEnhancer(en enhance.Enhancer) EngineOption {
	return func(e *Engine) {
		if en != nil {
			e.enhancer = en
		}
	}
}

// WithStore attaches the datastore used by batch rescoring.
func WithStore(s store.Store) EngineOption {
	return func(e *Engine) {
		e.store = s
	}
}

// WithRescoreWorkers bounds the batch rescore worker pool.
func WithRescoreWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.rescoreWorkers = n
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// Catalog exposes the engine's category configuration store.
func (e *Engine) Catalog() *catalog.Store {
	return e.catalog
}

var _ MarketSource = (*market.Estimator)(nil)
