// Package store defines the datastore abstraction for the deal engine.
// All business logic depends on the Store interface, never on concrete
// implementations. This enables mock-based testing without a running
// database.
package store

import (
	"context"
	"encoding/json"
	"time"

	domain "github.com/dealscout/deal-engine/pkg/types"
)

// ListingQuery defines optional filters for listing queries.
type ListingQuery struct {
	Category *string
	Brand    *string
	Source   *string
	Grade    *string
	MinScore *int
	MaxScore *int
	MaxPrice *float64
	Limit    int // default 50
	Offset   int
	OrderBy  string // "score", "price", "listed_at"
}

// Store defines all data access operations for the deal engine.
type Store interface {
	// Listings
	UpsertListing(ctx context.Context, l *domain.Listing) error
	GetListing(ctx context.Context, id string) (*domain.Listing, error)
	ListListings(ctx context.Context, opts *ListingQuery) ([]domain.Listing, int, error)
	UpdateScore(ctx context.Context, id string, score int, grade string, breakdown json.RawMessage, scoredAt time.Time) error

	// Market comparables
	ComparablePrices(ctx context.Context, category, brand, model string, since time.Time, limit int) ([]float64, error)

	// Scoring batches
	ListScorable(ctx context.Context, category string, limit int) ([]domain.Listing, error)
	TopScoredSince(ctx context.Context, category string, since time.Time, limit int) ([]domain.Listing, error)

	// Scheduler
	InsertJobRun(ctx context.Context, jobName string) (id string, err error)
	CompleteJobRun(ctx context.Context, id string, status string, errText string, rowsAffected int) error
	ListLatestJobRuns(ctx context.Context) ([]domain.JobRun, error)

	// Migrations
	Migrate(ctx context.Context) error

	// Health
	Ping(ctx context.Context) error
}
