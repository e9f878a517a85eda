// Package deals selects and caches the best qualifying listing per
// category per calendar day.
package deals

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dealscout/deal-engine/internal/metrics"
	domain "github.com/dealscout/deal-engine/pkg/types"
)

// Listings provides the scored-listing candidates for selection.
type Listings interface {
	TopScoredSince(ctx context.Context, category string, since time.Time, limit int) ([]domain.Listing, error)
}

// Scorer recomputes a fresh breakdown for the selected candidate.
type Scorer interface {
	ScoreListing(ctx context.Context, l *domain.Listing) (*domain.ScoreResult, error)
}

// candidateWindow is how far back a listing's score may date and still
// qualify for selection.
const candidateWindow = 48 * time.Hour

// Selector caches one DealOfTheDay per (category, calendar day).
// Cache entries never survive a date rollover; concurrent misses on
// the same key collapse into a single recomputation.
type Selector struct {
	listings Listings
	scorer   Scorer
	log      *slog.Logger
	now      func() time.Time

	mu    sync.RWMutex
	cache map[string]*domain.DealOfTheDay

	group singleflight.Group
}

// Option configures a Selector.
type Option func(*Selector)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Selector) {
		s.log = l
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Selector) {
		s.now = now
	}
}

// NewSelector creates a Selector backed by the given listing source
// and scorer.
func NewSelector(listings Listings, scorer Scorer, opts ...Option) *Selector {
	s := &Selector{
		listings: listings,
		scorer:   scorer,
		log:      slog.Default(),
		now:      time.Now,
		cache:    make(map[string]*domain.DealOfTheDay),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DealOfTheDay returns the category's best qualifying listing for the
// current calendar day, or nil when no scored listing exists in the
// window. Same-day repeats are served from cache without querying.
func (s *Selector) DealOfTheDay(ctx context.Context, category string) (*domain.DealOfTheDay, error) {
	key := cacheKey(category, s.now())

	s.mu.RLock()
	cached, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		metrics.DealCacheHitsTotal.Inc()
		return cached, nil
	}

	metrics.DealCacheMissesTotal.Inc()

	v, err, _ := s.group.Do(key, func() (any, error) {
		deal, err := s.pick(ctx, category)
		if err != nil || deal == nil {
			// An empty window is not cached; listings scored later
			// today can still become the deal.
			return deal, err
		}

		s.mu.Lock()
		// Entries for earlier days are dead weight; drop them.
		for k := range s.cache {
			if strings.HasPrefix(k, category+"/") {
				delete(s.cache, k)
			}
		}
		s.cache[key] = deal
		s.mu.Unlock()

		return deal, nil
	})
	if err != nil {
		return nil, err
	}

	deal, _ := v.(*domain.DealOfTheDay)
	return deal, nil
}

// pick takes the top-scored recent listing and rescores it for a
// fresh breakdown.
func (s *Selector) pick(ctx context.Context, category string) (*domain.DealOfTheDay, error) {
	now := s.now()

	candidates, err := s.listings.TopScoredSince(ctx, category, now.Add(-candidateWindow), 1)
	if err != nil {
		return nil, fmt.Errorf("querying deal candidates: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	best := candidates[0]
	result, err := s.scorer.ScoreListing(ctx, &best)
	if err != nil {
		return nil, fmt.Errorf("rescoring deal candidate %s: %w", best.ID, err)
	}

	deal := &domain.DealOfTheDay{
		Listing:    best,
		Score:      result.Score,
		Grade:      result.Grade,
		Breakdown:  result.Breakdown,
		Profit:     result.Profit,
		Reason:     buildReason(result),
		SelectedAt: now,
	}

	s.log.Info("deal of the day selected",
		"category", category,
		"listing_id", best.ID,
		"score", deal.Score,
		"reason", deal.Reason,
	)

	return deal, nil
}

// buildReason names the strong signals behind the pick, in fixed
// precedence order.
func buildReason(r *domain.ScoreResult) string {
	var reasons []string

	b := r.Breakdown
	if b.Price.Score >= 80 {
		if pct, ok := b.Price.Details["discount_pct"]; ok {
			reasons = append(reasons, fmt.Sprintf("priced %s%% below market", pct))
		} else {
			reasons = append(reasons, "priced well below market")
		}
	}
	if b.Condition.Score >= 90 {
		reasons = append(reasons, "excellent condition")
	}
	if b.Seller.Score >= 85 {
		reasons = append(reasons, "highly reputable seller")
	}
	if b.Velocity.Score >= 75 {
		reasons = append(reasons, "fresh listing with strong interest")
	}
	if b.Demand.Score >= 75 {
		reasons = append(reasons, "high-demand brand and model")
	}
	if p := r.Profit; p != nil && p.ProfitPercent != nil && *p.ProfitPercent >= 15 {
		reasons = append(reasons, fmt.Sprintf("%.0f%% estimated resale margin", *p.ProfitPercent))
	}

	if len(reasons) == 0 {
		return fmt.Sprintf("best available score today (%d/100)", r.Score)
	}
	return strings.Join(reasons, "; ")
}

func cacheKey(category string, now time.Time) string {
	return category + "/" + now.Format("2006-01-02")
}
