package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dealscout/deal-engine/internal/engine"
	"github.com/dealscout/deal-engine/internal/store"
	domain "github.com/dealscout/deal-engine/pkg/types"
)

// fakeStore implements store.Store with overridable function fields.
// Unset methods fail the call so tests only wire what they use.
type fakeStore struct {
	upsertListing     func(ctx context.Context, l *domain.Listing) error
	getListing        func(ctx context.Context, id string) (*domain.Listing, error)
	listListings      func(ctx context.Context, q *store.ListingQuery) ([]domain.Listing, int, error)
	listLatestJobRuns func(ctx context.Context) ([]domain.JobRun, error)
	ping              func(ctx context.Context) error
}

var errFakeUnset = errors.New("fake method not wired")

func (f *fakeStore) UpsertListing(ctx context.Context, l *domain.Listing) error {
	if f.upsertListing == nil {
		return errFakeUnset
	}
	return f.upsertListing(ctx, l)
}

func (f *fakeStore) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	if f.getListing == nil {
		return nil, errFakeUnset
	}
	return f.getListing(ctx, id)
}

func (f *fakeStore) ListListings(ctx context.Context, q *store.ListingQuery) ([]domain.Listing, int, error) {
	if f.listListings == nil {
		return nil, 0, errFakeUnset
	}
	return f.listListings(ctx, q)
}

func (f *fakeStore) UpdateScore(context.Context, string, int, string, json.RawMessage, time.Time) error {
	return errFakeUnset
}

func (f *fakeStore) ComparablePrices(context.Context, string, string, string, time.Time, int) ([]float64, error) {
	return nil, errFakeUnset
}

func (f *fakeStore) ListScorable(context.Context, string, int) ([]domain.Listing, error) {
	return nil, errFakeUnset
}

func (f *fakeStore) TopScoredSince(context.Context, string, time.Time, int) ([]domain.Listing, error) {
	return nil, errFakeUnset
}

func (f *fakeStore) InsertJobRun(context.Context, string) (string, error) {
	return "", errFakeUnset
}

func (f *fakeStore) CompleteJobRun(context.Context, string, string, string, int) error {
	return errFakeUnset
}

func (f *fakeStore) ListLatestJobRuns(ctx context.Context) ([]domain.JobRun, error) {
	if f.listLatestJobRuns == nil {
		return nil, errFakeUnset
	}
	return f.listLatestJobRuns(ctx)
}

func (f *fakeStore) Migrate(context.Context) error { return errFakeUnset }

func (f *fakeStore) Ping(ctx context.Context) error {
	if f.ping == nil {
		return nil
	}
	return f.ping(ctx)
}

// fakeScorer implements handlers.Scorer.
type fakeScorer struct {
	scoreListing func(ctx context.Context, l *domain.Listing) (*domain.ScoreResult, error)
	getGrade     func(value int, category string) string
}

func (f *fakeScorer) ScoreListing(ctx context.Context, l *domain.Listing) (*domain.ScoreResult, error) {
	return f.scoreListing(ctx, l)
}

func (f *fakeScorer) GetGrade(value int, category string) string {
	if f.getGrade == nil {
		return ""
	}
	return f.getGrade(value, category)
}

// fakeRescorer implements handlers.Rescorer.
type fakeRescorer struct {
	rescoreAll func(ctx context.Context, category string, limit int) (*engine.RescoreResult, error)
}

func (f *fakeRescorer) RescoreAll(ctx context.Context, category string, limit int) (*engine.RescoreResult, error) {
	return f.rescoreAll(ctx, category, limit)
}

// fakeDealSource implements handlers.DealSource.
type fakeDealSource struct {
	deal func(ctx context.Context, category string) (*domain.DealOfTheDay, error)
}

func (f *fakeDealSource) DealOfTheDay(ctx context.Context, category string) (*domain.DealOfTheDay, error) {
	return f.deal(ctx, category)
}
