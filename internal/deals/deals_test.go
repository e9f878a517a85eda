package deals

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/dealscout/deal-engine/pkg/types"
)

type fakeListings struct {
	mu       sync.Mutex
	queries  int32
	listings []domain.Listing
	err      error
}

func (f *fakeListings) TopScoredSince(_ context.Context, _ string, _ time.Time, limit int) ([]domain.Listing, error) {
	atomic.AddInt32(&f.queries, 1)
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.listings) > limit {
		return f.listings[:limit], nil
	}
	return f.listings, nil
}

type fakeScorer struct {
	result *domain.ScoreResult
	err    error
}

func (f *fakeScorer) ScoreListing(_ context.Context, _ *domain.Listing) (*domain.ScoreResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func scoredResult() *domain.ScoreResult {
	pct := 18.0
	return &domain.ScoreResult{
		Score:    88,
		Grade:    "HOT DEAL",
		Category: domain.CategoryWatch,
		Breakdown: domain.Breakdown{
			Price:     domain.ComponentScore{Score: 85, Weight: 30, Details: map[string]string{"discount_pct": "17.0"}},
			Condition: domain.ComponentScore{Score: 90, Weight: 15},
			Seller:    domain.ComponentScore{Score: 95, Weight: 15},
			Velocity:  domain.ComponentScore{Score: 60, Weight: 15},
			Demand:    domain.ComponentScore{Score: 100, Weight: 15},
			Quality:   domain.ComponentScore{Score: 40, Weight: 10},
		},
		Profit: &domain.ProfitPotential{
			ListingPrice:  7500,
			ProfitPercent: &pct,
			Confidence:    domain.ConfidenceHigh,
		},
		ScoredAt: time.Now(),
	}
}

func candidate() domain.Listing {
	s := 88
	return domain.Listing{
		ID:       "lst-1",
		Category: domain.CategoryWatch,
		Brand:    "Rolex",
		Model:    "Submariner",
		Price:    7500,
		Score:    &s,
	}
}

func TestDealOfTheDay_SameDayCacheHit(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	listings := &fakeListings{listings: []domain.Listing{candidate()}}
	sel := NewSelector(listings, &fakeScorer{result: scoredResult()},
		WithClock(func() time.Time { return day }))

	first, err := sel.DealOfTheDay(context.Background(), "watch")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 88, first.Score)

	// Second call the same day issues no query.
	second, err := sel.DealOfTheDay(context.Background(), "watch")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&listings.queries))
}

func TestDealOfTheDay_DateRollover(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 29, 23, 50, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	listings := &fakeListings{listings: []domain.Listing{candidate()}}
	sel := NewSelector(listings, &fakeScorer{result: scoredResult()}, WithClock(clock))

	_, err := sel.DealOfTheDay(context.Background(), "watch")
	require.NoError(t, err)

	mu.Lock()
	now = now.Add(20 * time.Minute) // crosses midnight
	mu.Unlock()

	_, err = sel.DealOfTheDay(context.Background(), "watch")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&listings.queries),
		"a new calendar day recomputes the selection")
}

func TestDealOfTheDay_EmptyWindow(t *testing.T) {
	t.Parallel()

	listings := &fakeListings{}
	sel := NewSelector(listings, &fakeScorer{result: scoredResult()})

	deal, err := sel.DealOfTheDay(context.Background(), "watch")
	require.NoError(t, err)
	assert.Nil(t, deal)

	// An empty result is not cached: the next request re-queries.
	_, err = sel.DealOfTheDay(context.Background(), "watch")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&listings.queries))
}

func TestDealOfTheDay_QueryError(t *testing.T) {
	t.Parallel()

	listings := &fakeListings{err: errors.New("db down")}
	sel := NewSelector(listings, &fakeScorer{result: scoredResult()})

	_, err := sel.DealOfTheDay(context.Background(), "watch")
	require.Error(t, err)
}

func TestDealOfTheDay_CategoriesCachedIndependently(t *testing.T) {
	t.Parallel()

	listings := &fakeListings{listings: []domain.Listing{candidate()}}
	sel := NewSelector(listings, &fakeScorer{result: scoredResult()})

	_, err := sel.DealOfTheDay(context.Background(), "watch")
	require.NoError(t, err)
	_, err = sel.DealOfTheDay(context.Background(), "sneaker")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&listings.queries))
}

func TestBuildReason_PrecedenceOrder(t *testing.T) {
	t.Parallel()

	r := scoredResult()
	reason := buildReason(r)

	assert.Equal(t,
		"priced 17.0% below market; excellent condition; highly reputable seller; "+
			"high-demand brand and model; 18% estimated resale margin",
		reason)
}

func TestBuildReason_NoStrongSignals(t *testing.T) {
	t.Parallel()

	r := &domain.ScoreResult{
		Score: 62,
		Breakdown: domain.Breakdown{
			Price:     domain.ComponentScore{Score: 60},
			Condition: domain.ComponentScore{Score: 70},
			Seller:    domain.ComponentScore{Score: 50},
			Velocity:  domain.ComponentScore{Score: 50},
			Demand:    domain.ComponentScore{Score: 50},
			Quality:   domain.ComponentScore{Score: 40},
		},
	}

	assert.Equal(t, "best available score today (62/100)", buildReason(r))
}

func TestDealOfTheDay_ConcurrentMissesCollapse(t *testing.T) {
	t.Parallel()

	listings := &fakeListings{listings: []domain.Listing{candidate()}}
	sel := NewSelector(listings, &fakeScorer{result: scoredResult()})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := sel.DealOfTheDay(context.Background(), "watch")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Less(t, atomic.LoadInt32(&listings.queries), int32(8),
		"concurrent misses must not each recompute")

	// The cache is warm now; one more call stays query-free.
	before := atomic.LoadInt32(&listings.queries)
	_, err := sel.DealOfTheDay(context.Background(), "watch")
	require.NoError(t, err)
	assert.Equal(t, before, atomic.LoadInt32(&listings.queries))
}
