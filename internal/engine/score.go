package engine

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dealscout/deal-engine/internal/metrics"
	score "github.com/dealscout/deal-engine/pkg/scorer"
	domain "github.com/dealscout/deal-engine/pkg/types"
)

// ScoreListing computes the composite deal score for a single listing.
// It always returns a result for a well-formed listing: missing market
// data, enhancer failures, and query errors degrade to neutral
// components instead of surfacing.
func (e *Engine) ScoreListing(ctx context.Context, l *domain.Listing) (*domain.ScoreResult, error) {
	if l == nil {
		return nil, ErrNilListing
	}
	if l.Price <= 0 {
		return nil, fmt.Errorf("%w: got %.2f", ErrInvalidListing, l.Price)
	}

	ctx, span := e.tracer.Start(ctx, "engine.ScoreListing")
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.ScoringDuration.Observe(time.Since(start).Seconds())
	}()

	// One consistent config view for the whole call, even if an admin
	// update lands midway.
	cfg := e.catalog.Snapshot(string(l.Category))
	cat := string(cfg.Name)
	span.SetAttributes(
		attribute.String("listing.category", cat),
		attribute.String("listing.brand", l.Brand),
	)

	now := e.now()
	mkt := e.market.Estimate(ctx, cat, l.Brand, l.Model)

	breakdown := score.Compute(l, mkt, &cfg, now)
	e.applyEnhancer(ctx, l, &breakdown)

	total := score.Total(breakdown)
	grade := score.Grade(total, cfg.Thresholds)

	result := &domain.ScoreResult{
		Score:     total,
		Grade:     grade,
		Category:  cfg.Name,
		Breakdown: breakdown,
		Profit:    EstimateProfit(l, mkt, breakdown.Demand.Score, &cfg),
		ScoredAt:  now,
	}

	metrics.ScoringDistribution.WithLabelValues(cat).Observe(float64(total))
	span.SetAttributes(attribute.Int("score.total", total))

	return result, nil
}

// GetGrade maps a score to its label using a category's thresholds.
func (e *Engine) GetGrade(value int, category string) string {
	cfg := e.catalog.Config(category)
	return score.Grade(value, cfg.Thresholds)
}

// applyEnhancer lets the configured enhancer override the rule-based
// demand score. The component weight is untouched; failures keep the
// rule-based value.
func (e *Engine) applyEnhancer(ctx context.Context, l *domain.Listing, b *domain.Breakdown) {
	enhanced, ok, err := e.enhancer.DemandScore(ctx, l)
	if err != nil {
		e.log.Warn("demand enhancement failed, keeping rule-based score",
			"enhancer", e.enhancer.Name(),
			"brand", l.Brand,
			"model", l.Model,
			"error", err,
		)
		return
	}
	if !ok {
		return
	}

	if b.Demand.Details == nil {
		b.Demand.Details = make(map[string]string)
	}
	b.Demand.Details["enhanced_by"] = e.enhancer.Name()
	b.Demand.Details["rule_score"] = fmt.Sprintf("%d", b.Demand.Score)
	b.Demand.Score = enhanced
}
