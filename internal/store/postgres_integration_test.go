//go:build integration

package store_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dealscout/deal-engine/internal/store"
	domain "github.com/dealscout/deal-engine/pkg/types"
)

func setupPostgres(t *testing.T) *store.PostgresStore {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("deals_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := store.NewPostgresStore(ctx, connStr)
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})

	require.NoError(t, s.Migrate(ctx))

	return s
}

func testListing() *domain.Listing {
	now := time.Now().Truncate(time.Microsecond)
	return &domain.Listing{
		Category:    domain.CategoryWatch,
		Brand:       "Rolex",
		Model:       "Submariner",
		Title:       "Rolex Submariner Date 116610LN full set",
		ItemURL:     "https://example.com/listings/116610ln",
		Price:       7500,
		Source:      "chrono24",
		Seller:      "verified dealer",
		Condition:   "Excellent",
		Description: "2019 Submariner with box and papers.",
		Images:      []string{"https://example.com/img/1.jpg"},
		Views:       120,
		Watchers:    9,
		ListedAt:    now.Add(-24 * time.Hour),
	}
}

func TestPostgresStore_Ping(t *testing.T) {
	s := setupPostgres(t)
	require.NoError(t, s.Ping(context.Background()))
}

func TestPostgresStore_UpsertListing(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	t.Run("insert assigns id and timestamps", func(t *testing.T) {
		l := testListing()
		require.NoError(t, s.UpsertListing(ctx, l))
		assert.NotEmpty(t, l.ID)
		assert.False(t, l.CreatedAt.IsZero())
		assert.False(t, l.UpdatedAt.IsZero())
	})

	t.Run("upsert with changed price", func(t *testing.T) {
		l := testListing()
		require.NoError(t, s.UpsertListing(ctx, l))
		created := l.CreatedAt

		l.Price = 6900
		require.NoError(t, s.UpsertListing(ctx, l))
		assert.Equal(t, created, l.CreatedAt)

		got, err := s.GetListing(ctx, l.ID)
		require.NoError(t, err)
		assert.InDelta(t, 6900, got.Price, 0.01)
		assert.Equal(t, []string{"https://example.com/img/1.jpg"}, got.Images)
	})
}

func TestPostgresStore_UpdateScore(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	l := testListing()
	require.NoError(t, s.UpsertListing(ctx, l))

	breakdown, err := json.Marshal(map[string]any{"price": 78})
	require.NoError(t, err)

	scoredAt := time.Now().Truncate(time.Microsecond)
	require.NoError(t, s.UpdateScore(ctx, l.ID, 86, "HOT DEAL", breakdown, scoredAt))

	got, err := s.GetListing(ctx, l.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Score)
	assert.Equal(t, 86, *got.Score)
	assert.Equal(t, "HOT DEAL", got.Grade)
	require.NotNil(t, got.ScoredAt)
}

func TestPostgresStore_ComparablePrices(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	for _, price := range []float64{9000, 8800, 9200} {
		l := testListing()
		l.Price = price
		require.NoError(t, s.UpsertListing(ctx, l))
	}
	stale := testListing()
	stale.Price = 100
	stale.ListedAt = time.Now().Add(-200 * 24 * time.Hour)
	require.NoError(t, s.UpsertListing(ctx, stale))

	since := time.Now().Add(-90 * 24 * time.Hour)

	prices, err := s.ComparablePrices(ctx, "watch", "rolex", "submariner", since, 100)
	require.NoError(t, err)
	assert.Len(t, prices, 3, "stale comparables fall outside the window")

	// Brand-only matching ignores model.
	prices, err = s.ComparablePrices(ctx, "watch", "ROLEX", "", since, 100)
	require.NoError(t, err)
	assert.Len(t, prices, 3)
}

func TestPostgresStore_ListListings(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.UpsertListing(ctx, testListing()))
	}
	car := testListing()
	car.Category = domain.CategoryCar
	car.Brand = "Porsche"
	require.NoError(t, s.UpsertListing(ctx, car))

	cat := "watch"
	listings, total, err := s.ListListings(ctx, &store.ListingQuery{Category: &cat})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, listings, 3)
}

func TestPostgresStore_TopScoredSince(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	now := time.Now().Truncate(time.Microsecond)
	scores := []int{72, 91, 85}
	for _, sc := range scores {
		l := testListing()
		require.NoError(t, s.UpsertListing(ctx, l))
		require.NoError(t, s.UpdateScore(ctx, l.ID, sc, "GOOD DEAL", nil, now))
	}
	old := testListing()
	require.NoError(t, s.UpsertListing(ctx, old))
	require.NoError(t, s.UpdateScore(ctx, old.ID, 99, "HOT DEAL", nil, now.Add(-72*time.Hour)))

	top, err := s.TopScoredSince(ctx, "watch", now.Add(-48*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, 91, *top[0].Score, "results arrive highest score first")
}

func TestPostgresStore_JobRuns(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	id, err := s.InsertJobRun(ctx, "rescore")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, s.CompleteJobRun(ctx, id, "succeeded", "", 42))

	runs, err := s.ListLatestJobRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "rescore", runs[0].JobName)
	assert.Equal(t, "succeeded", runs[0].Status)
	require.NotNil(t, runs[0].RowsAffected)
	assert.Equal(t, 42, *runs[0].RowsAffected)
	require.NotNil(t, runs[0].CompletedAt)
}
