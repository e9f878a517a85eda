package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/dealscout/deal-engine/pkg/types"
)

const defaultPoolSize = 10

// PostgresStore implements Store using pgxpool (connection-pooled
// PostgreSQL).
//
// TODO(test): PostgresStore methods require live Postgres, tested via integration tests.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := RunMigrations(ctx, s.pool)
	return err
}

// UpsertListing inserts or updates a listing by its ID. Listings
// arriving without an ID are assigned one.
func (s *PostgresStore) UpsertListing(ctx context.Context, l *domain.Listing) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}

	args := pgx.NamedArgs{
		"id":             l.ID,
		"category":       string(l.Category),
		"brand":          l.Brand,
		"model":          l.Model,
		"title":          l.Title,
		"item_url":       l.ItemURL,
		"price":          l.Price,
		"original_price": l.OriginalPrice,
		"source":         l.Source,
		"seller":         l.Seller,
		"condition":      l.Condition,
		"description":    l.Description,
		"images":         l.Images,
		"views":          l.Views,
		"watchers":       l.Watchers,
		"inquiries":      l.Inquiries,
		"listed_at":      l.ListedAt,
	}

	return s.pool.QueryRow(ctx, queryUpsertListing, args).Scan(
		&l.CreatedAt, &l.UpdatedAt,
	)
}

// GetListing retrieves a listing by its ID.
func (s *PostgresStore) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	l := &domain.Listing{}
	if err := scanListing(s.pool.QueryRow(ctx, queryGetListing, id), l); err != nil {
		return nil, err
	}
	return l, nil
}

// ListListings queries listings with optional filters, returning
// results and total count.
func (s *PostgresStore) ListListings(
	ctx context.Context,
	opts *ListingQuery,
) ([]domain.Listing, int, error) {
	dataSQL, countSQL, args := opts.ToSQL()

	var total int
	if err := s.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting listings: %w", err)
	}

	listings, err := s.queryListings(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

// UpdateScore writes a scoring result back to a listing.
func (s *PostgresStore) UpdateScore(
	ctx context.Context,
	id string,
	score int,
	grade string,
	breakdown json.RawMessage,
	scoredAt time.Time,
) error {
	_, err := s.pool.Exec(ctx, queryUpdateScore, id, score, grade, breakdown, scoredAt)
	if err != nil {
		return fmt.Errorf("updating score: %w", err)
	}
	return nil
}

// ComparablePrices returns recent prices for a brand (optionally
// narrowed to a model) within a category, newest first.
func (s *PostgresStore) ComparablePrices(
	ctx context.Context,
	category, brand, model string,
	since time.Time,
	limit int,
) ([]float64, error) {
	args := pgx.NamedArgs{
		"category": category,
		"brand":    brand,
		"model":    model,
		"since":    since,
		"limit":    limit,
	}

	rows, err := s.pool.Query(ctx, queryComparablePrices, args)
	if err != nil {
		return nil, fmt.Errorf("querying comparables: %w", err)
	}
	defer rows.Close()

	var prices []float64
	for rows.Next() {
		var p float64
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning comparable price: %w", err)
		}
		prices = append(prices, p)
	}

	return prices, rows.Err()
}

// ListScorable returns listings ordered stalest-score-first, never
// scored before everything else. An empty category matches all.
func (s *PostgresStore) ListScorable(
	ctx context.Context,
	category string,
	limit int,
) ([]domain.Listing, error) {
	args := pgx.NamedArgs{"category": category, "limit": limit}
	return s.queryListings(ctx, queryListScorable, args)
}

// TopScoredSince returns the highest-scored listings of a category
// whose score was computed at or after since.
func (s *PostgresStore) TopScoredSince(
	ctx context.Context,
	category string,
	since time.Time,
	limit int,
) ([]domain.Listing, error) {
	args := pgx.NamedArgs{"category": category, "since": since, "limit": limit}
	return s.queryListings(ctx, queryTopScoredSince, args)
}

// InsertJobRun records the start of a scheduled job and returns its ID.
func (s *PostgresStore) InsertJobRun(ctx context.Context, jobName string) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx, queryInsertJobRun, uuid.NewString(), jobName).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("inserting job run: %w", err)
	}
	return id, nil
}

// CompleteJobRun marks a job run finished with its outcome.
func (s *PostgresStore) CompleteJobRun(
	ctx context.Context,
	id string,
	status string,
	errText string,
	rowsAffected int,
) error {
	_, err := s.pool.Exec(ctx, queryCompleteJobRun, id, status, errText, rowsAffected)
	if err != nil {
		return fmt.Errorf("completing job run: %w", err)
	}
	return nil
}

// ListLatestJobRuns returns the most recent run of each job.
func (s *PostgresStore) ListLatestJobRuns(ctx context.Context) ([]domain.JobRun, error) {
	rows, err := s.pool.Query(ctx, queryListLatestJobRuns)
	if err != nil {
		return nil, fmt.Errorf("querying job runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.JobRun
	for rows.Next() {
		var r domain.JobRun
		if err := rows.Scan(
			&r.ID, &r.JobName, &r.StartedAt, &r.CompletedAt,
			&r.Status, &r.ErrorText, &r.RowsAffected,
		); err != nil {
			return nil, fmt.Errorf("scanning job run: %w", err)
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// queryListings runs a full-row listing query and scans the results.
func (s *PostgresStore) queryListings(ctx context.Context, sql string, args ...any) ([]domain.Listing, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying listings: %w", err)
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		var l domain.Listing
		if err := scanListing(rows, &l); err != nil {
			return nil, fmt.Errorf("scanning listing: %w", err)
		}
		listings = append(listings, l)
	}

	return listings, rows.Err()
}

// scanListing scans the full listing column set in select order.
func scanListing(row pgx.Row, l *domain.Listing) error {
	var breakdown []byte
	return row.Scan(
		&l.ID, &l.Category, &l.Brand, &l.Model, &l.Title, &l.ItemURL,
		&l.Price, &l.OriginalPrice, &l.Source, &l.Seller,
		&l.Condition, &l.Description, &l.Images,
		&l.Views, &l.Watchers, &l.Inquiries,
		&l.Score, &l.Grade, &breakdown, &l.ScoredAt,
		&l.ListedAt, &l.CreatedAt, &l.UpdatedAt,
	)
}
