package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jackc/pgx/v5"

	"github.com/dealscout/deal-engine/internal/store"
	domain "github.com/dealscout/deal-engine/pkg/types"
)

// ListingsHandler handles listing ingest and query endpoints.
type ListingsHandler struct {
	store store.Store
}

// NewListingsHandler creates a new ListingsHandler.
func NewListingsHandler(s store.Store) *ListingsHandler {
	return &ListingsHandler{store: s}
}

// --- Input/Output types ---

// ListListingsInput is the input for listing listings with optional filters.
type ListListingsInput struct {
	Category string  `query:"category"  doc:"Filter by category"             enum:"watch,sneaker,car,"`
	Brand    string  `query:"brand"     doc:"Filter by brand (exact, case-insensitive)"`
	Source   string  `query:"source"    doc:"Filter by marketplace source"`
	Grade    string  `query:"grade"     doc:"Filter by grade label"`
	MinScore int     `query:"min_score" doc:"Minimum composite score"        minimum:"0" maximum:"100"`
	MaxScore int     `query:"max_score" doc:"Maximum composite score"        minimum:"0" maximum:"100"`
	MaxPrice float64 `query:"max_price" doc:"Maximum asking price"           minimum:"0"`
	Limit    int     `query:"limit"     doc:"Number of results (default 50)" minimum:"1" maximum:"500"`
	Offset   int     `query:"offset"    doc:"Pagination offset"              minimum:"0"`
	OrderBy  string  `query:"order_by"  doc:"Sort field"                     enum:"score,price,listed_at,"`
}

// ListListingsOutput is the response for listing listings.
type ListListingsOutput struct {
	Body struct {
		Listings []domain.Listing `json:"listings"`
		Total    int              `json:"total"`
		Limit    int              `json:"limit"`
		Offset   int              `json:"offset"`
	}
}

// GetListingInput is the input for getting a single listing.
type GetListingInput struct {
	ID string `path:"id" doc:"Listing UUID"`
}

// GetListingOutput is the response for getting a single listing.
type GetListingOutput struct {
	Body domain.Listing
}

// UpsertListingInput is the input for ingesting a listing.
type UpsertListingInput struct {
	Body domain.Listing
}

// UpsertListingOutput is the response for ingesting a listing.
type UpsertListingOutput struct {
	Status int
	Body   domain.Listing
}

// --- Handlers ---

// ListListings returns listings with optional filters for category, score
// range, price and pagination.
func (h *ListingsHandler) ListListings(
	ctx context.Context,
	input *ListListingsInput,
) (*ListListingsOutput, error) {
	q := &store.ListingQuery{
		Offset:  input.Offset,
		OrderBy: input.OrderBy,
	}

	if input.Category != "" {
		q.Category = &input.Category
	}

	if input.Brand != "" {
		q.Brand = &input.Brand
	}

	if input.Source != "" {
		q.Source = &input.Source
	}

	if input.Grade != "" {
		q.Grade = &input.Grade
	}

	if input.MinScore != 0 {
		q.MinScore = &input.MinScore
	}

	if input.MaxScore != 0 {
		q.MaxScore = &input.MaxScore
	}

	if input.MaxPrice != 0 {
		q.MaxPrice = &input.MaxPrice
	}

	if input.Limit != 0 {
		q.Limit = input.Limit
	}

	listings, total, err := h.store.ListListings(ctx, q)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing query failed: " + err.Error())
	}

	resp := &ListListingsOutput{}
	resp.Body.Listings = listings
	resp.Body.Total = total
	resp.Body.Limit = q.Limit
	resp.Body.Offset = q.Offset

	return resp, nil
}

// GetListing returns a single listing by ID.
func (h *ListingsHandler) GetListing(
	ctx context.Context,
	input *GetListingInput,
) (*GetListingOutput, error) {
	listing, err := h.store.GetListing(ctx, input.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, huma.Error404NotFound("listing not found")
		}
		return nil, huma.Error500InternalServerError("listing lookup failed: " + err.Error())
	}

	return &GetListingOutput{Body: *listing}, nil
}

// UpsertListing ingests a listing, inserting or updating by ID. An empty
// ID gets a generated UUID.
func (h *ListingsHandler) UpsertListing(
	ctx context.Context,
	input *UpsertListingInput,
) (*UpsertListingOutput, error) {
	l := input.Body
	if l.Price <= 0 {
		return nil, huma.Error422UnprocessableEntity("listing price must be positive")
	}

	if err := h.store.UpsertListing(ctx, &l); err != nil {
		return nil, huma.Error500InternalServerError("listing upsert failed: " + err.Error())
	}

	return &UpsertListingOutput{Status: http.StatusCreated, Body: l}, nil
}

// RegisterListingRoutes registers listing endpoints with the Huma API.
func RegisterListingRoutes(api huma.API, h *ListingsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-listings",
		Method:      http.MethodGet,
		Path:        "/api/v1/listings",
		Summary:     "List listings",
		Description: "Returns listings with optional filters for category, score range, price and pagination.",
		Tags:        []string{"listings"},
	}, h.ListListings)

	huma.Register(api, huma.Operation{
		OperationID: "get-listing",
		Method:      http.MethodGet,
		Path:        "/api/v1/listings/{id}",
		Summary:     "Get a listing by ID",
		Description: "Returns a single listing by its UUID.",
		Tags:        []string{"listings"},
		Errors:      []int{http.StatusNotFound},
	}, h.GetListing)

	huma.Register(api, huma.Operation{
		OperationID: "upsert-listing",
		Method:      http.MethodPost,
		Path:        "/api/v1/listings",
		Summary:     "Ingest a listing",
		Description: "Inserts or updates a listing by ID. An empty ID gets a generated UUID.",
		Tags:        []string{"listings"},
		Errors:      []int{http.StatusUnprocessableEntity},
	}, h.UpsertListing)
}
