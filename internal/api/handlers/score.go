package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dealscout/deal-engine/internal/engine"
	domain "github.com/dealscout/deal-engine/pkg/types"
)

// Scorer is the scoring surface the handlers need from the engine.
type Scorer interface {
	ScoreListing(ctx context.Context, l *domain.Listing) (*domain.ScoreResult, error)
	GetGrade(value int, category string) string
}

// ScoreHandler handles on-demand scoring requests.
type ScoreHandler struct {
	engine Scorer
}

// NewScoreHandler creates a new ScoreHandler.
func NewScoreHandler(e Scorer) *ScoreHandler {
	return &ScoreHandler{engine: e}
}

// --- Input/Output types ---

// ScoreListingInput is the input for scoring a submitted listing.
type ScoreListingInput struct {
	Body domain.Listing
}

// ScoreListingOutput is the response for scoring a submitted listing.
type ScoreListingOutput struct {
	Body domain.ScoreResult
}

// GetGradeInput is the input for mapping a score to its grade label.
type GetGradeInput struct {
	Category string `path:"category" doc:"Category name"`
	Score    int    `query:"score"   doc:"Composite score to grade" minimum:"0" maximum:"100" required:"true"`
}

// GetGradeOutput is the response for mapping a score to its grade label.
type GetGradeOutput struct {
	Body struct {
		Score    int    `json:"score"`
		Grade    string `json:"grade"`
		Category string `json:"category"`
	}
}

// --- Handlers ---

// ScoreListing scores a single listing from the request body. The listing
// is not persisted; callers wanting write-back use the rescore endpoint.
func (h *ScoreHandler) ScoreListing(
	ctx context.Context,
	input *ScoreListingInput,
) (*ScoreListingOutput, error) {
	result, err := h.engine.ScoreListing(ctx, &input.Body)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidListing) || errors.Is(err, engine.ErrNilListing) {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		return nil, huma.Error500InternalServerError("scoring failed: " + err.Error())
	}

	return &ScoreListingOutput{Body: *result}, nil
}

// GetGrade maps a numeric score to its grade label under a category's
// thresholds. Unknown categories fall back to the default category.
func (h *ScoreHandler) GetGrade(
	_ context.Context,
	input *GetGradeInput,
) (*GetGradeOutput, error) {
	resp := &GetGradeOutput{}
	resp.Body.Score = input.Score
	resp.Body.Grade = h.engine.GetGrade(input.Score, input.Category)
	resp.Body.Category = input.Category

	return resp, nil
}

// RegisterScoreRoutes registers scoring endpoints with the Huma API.
func RegisterScoreRoutes(api huma.API, h *ScoreHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "score-listing",
		Method:      http.MethodPost,
		Path:        "/api/v1/score",
		Summary:     "Score a listing",
		Description: "Computes the composite deal score, grade and profit projection for a submitted listing without persisting it.",
		Tags:        []string{"scoring"},
		Errors:      []int{http.StatusUnprocessableEntity},
	}, h.ScoreListing)

	huma.Register(api, huma.Operation{
		OperationID: "get-grade",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories/{category}/grade",
		Summary:     "Grade a score",
		Description: "Maps a composite score to its grade label using the category's thresholds.",
		Tags:        []string{"scoring"},
	}, h.GetGrade)
}
