package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domain "github.com/dealscout/deal-engine/pkg/types"
)

// DealSource selects the best qualifying listing for a category.
type DealSource interface {
	DealOfTheDay(ctx context.Context, category string) (*domain.DealOfTheDay, error)
}

// DealsHandler handles deal-of-the-day endpoints.
type DealsHandler struct {
	selector DealSource
}

// NewDealsHandler creates a new DealsHandler.
func NewDealsHandler(s DealSource) *DealsHandler {
	return &DealsHandler{selector: s}
}

// --- Input/Output types ---

// DealOfTheDayInput is the input for fetching a category's deal of the day.
type DealOfTheDayInput struct {
	Category string `path:"category" doc:"Category name"`
}

// DealOfTheDayOutput is the response for fetching a deal of the day.
type DealOfTheDayOutput struct {
	Body domain.DealOfTheDay
}

// --- Handlers ---

// DealOfTheDay returns the best qualifying listing for a category today.
// An empty candidate window is a 404, not an error.
func (h *DealsHandler) DealOfTheDay(
	ctx context.Context,
	input *DealOfTheDayInput,
) (*DealOfTheDayOutput, error) {
	deal, err := h.selector.DealOfTheDay(ctx, input.Category)
	if err != nil {
		return nil, huma.Error500InternalServerError("deal selection failed: " + err.Error())
	}
	if deal == nil {
		return nil, huma.Error404NotFound("no qualifying deal today for category: " + input.Category)
	}

	return &DealOfTheDayOutput{Body: *deal}, nil
}

// RegisterDealRoutes registers deal endpoints with the Huma API.
func RegisterDealRoutes(api huma.API, h *DealsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "deal-of-the-day",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories/{category}/deal-of-the-day",
		Summary:     "Get the deal of the day",
		Description: "Returns the best qualifying listing for a category today, with the reason it was selected.",
		Tags:        []string{"deals"},
		Errors:      []int{http.StatusNotFound},
	}, h.DealOfTheDay)
}
