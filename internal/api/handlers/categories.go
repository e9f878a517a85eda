package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dealscout/deal-engine/internal/catalog"
	domain "github.com/dealscout/deal-engine/pkg/types"
)

// CategoriesHandler handles category configuration endpoints.
type CategoriesHandler struct {
	catalog *catalog.Store
}

// NewCategoriesHandler creates a new CategoriesHandler.
func NewCategoriesHandler(c *catalog.Store) *CategoriesHandler {
	return &CategoriesHandler{catalog: c}
}

// --- Input/Output types ---

// ListCategoriesOutput is the response for listing configured categories.
type ListCategoriesOutput struct {
	Body struct {
		Categories []string `json:"categories"`
	}
}

// GetConfigInput is the input for reading a category's configuration.
type GetConfigInput struct {
	Category string `path:"category" doc:"Category name"`
}

// GetConfigOutput is the response for reading a category's configuration.
type GetConfigOutput struct {
	Body domain.CategoryConfig
}

// UpdateConfigInput is the input for a partial category configuration
// update. Absent fields are left unchanged.
type UpdateConfigInput struct {
	Category string `path:"category" doc:"Category name"`
	Body     struct {
		Weights         *domain.Weights           `json:"weights,omitempty"           doc:"Component weights, must sum to 100"`
		Thresholds      *domain.Thresholds        `json:"thresholds,omitempty"        doc:"Grade cutoffs, non-increasing"`
		BrandDemand     []domain.DemandRule       `json:"brand_demand,omitempty"      doc:"Ordered brand demand rules"`
		ModelDemand     []domain.DemandRule       `json:"model_demand,omitempty"      doc:"Ordered model demand rules"`
		TrustedSources  []domain.SourceReputation `json:"trusted_sources,omitempty"   doc:"Ordered source reputation rules"`
		AvgProfitMargin *float64                  `json:"avg_profit_margin,omitempty" doc:"Typical resale margin"`
		ShippingCost    *float64                  `json:"shipping_cost,omitempty"     doc:"Flat shipping/transfer cost"`
	}
}

// UpdateConfigOutput is the response for a category configuration update.
type UpdateConfigOutput struct {
	Body domain.CategoryConfig
}

// --- Handlers ---

// ListCategories returns the names of all configured categories.
func (h *CategoriesHandler) ListCategories(
	_ context.Context,
	_ *struct{},
) (*ListCategoriesOutput, error) {
	names := h.catalog.Categories()
	sort.Strings(names)

	resp := &ListCategoriesOutput{}
	resp.Body.Categories = names

	return resp, nil
}

// GetConfig returns the configuration for a category. Unlike scoring,
// the read endpoint does not fall back: asking for an unknown category
// is a 404.
func (h *CategoriesHandler) GetConfig(
	_ context.Context,
	input *GetConfigInput,
) (*GetConfigOutput, error) {
	if !h.catalog.Has(input.Category) {
		return nil, huma.Error404NotFound("category not configured: " + input.Category)
	}

	return &GetConfigOutput{Body: h.catalog.Snapshot(input.Category)}, nil
}

// UpdateConfig applies a partial update to a category's configuration.
// Updates never create categories. The store trusts its callers, so
// weight and threshold validation happens here, before anything lands.
func (h *CategoriesHandler) UpdateConfig(
	_ context.Context,
	input *UpdateConfigInput,
) (*UpdateConfigOutput, error) {
	if w := input.Body.Weights; w != nil {
		if sum := w.Sum(); sum != 100 {
			return nil, huma.Error422UnprocessableEntity(
				fmt.Sprintf("weights must sum to 100, got %d", sum))
		}
	}
	if t := input.Body.Thresholds; t != nil {
		if t.HotDeal < t.GreatDeal || t.GreatDeal < t.GoodDeal || t.GoodDeal < t.Fair {
			return nil, huma.Error422UnprocessableEntity(
				fmt.Sprintf("thresholds must be non-increasing: %+v", *t))
		}
	}

	upd := catalog.ConfigUpdate{
		Weights:         input.Body.Weights,
		Thresholds:      input.Body.Thresholds,
		BrandDemand:     input.Body.BrandDemand,
		ModelDemand:     input.Body.ModelDemand,
		TrustedSources:  input.Body.TrustedSources,
		AvgProfitMargin: input.Body.AvgProfitMargin,
		ShippingCost:    input.Body.ShippingCost,
	}

	if !h.catalog.Update(input.Category, upd) {
		return nil, huma.Error404NotFound("category not configured: " + input.Category)
	}

	return &UpdateConfigOutput{Body: h.catalog.Snapshot(input.Category)}, nil
}

// RegisterCategoryRoutes registers category configuration endpoints with
// the Huma API.
func RegisterCategoryRoutes(api huma.API, h *CategoriesHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-categories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Description: "Returns the names of all configured scoring categories.",
		Tags:        []string{"categories"},
	}, h.ListCategories)

	huma.Register(api, huma.Operation{
		OperationID: "get-category-config",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories/{category}/config",
		Summary:     "Get category configuration",
		Description: "Returns the scoring weights, thresholds, demand rules and economics for a category.",
		Tags:        []string{"categories"},
		Errors:      []int{http.StatusNotFound},
	}, h.GetConfig)

	huma.Register(api, huma.Operation{
		OperationID: "update-category-config",
		Method:      http.MethodPatch,
		Path:        "/api/v1/categories/{category}/config",
		Summary:     "Update category configuration",
		Description: "Applies a partial update to a category's scoring configuration. Absent fields are left unchanged.",
		Tags:        []string{"categories"},
		Errors:      []int{http.StatusNotFound, http.StatusUnprocessableEntity},
	}, h.UpdateConfig)
}
