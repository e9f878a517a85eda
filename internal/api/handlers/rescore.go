package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dealscout/deal-engine/internal/engine"
)

// Rescorer is the batch-rescore surface the handler needs from the engine.
type Rescorer interface {
	RescoreAll(ctx context.Context, category string, limit int) (*engine.RescoreResult, error)
}

// RescoreHandler handles batch re-scoring requests.
type RescoreHandler struct {
	engine Rescorer
}

// NewRescoreHandler creates a new RescoreHandler.
func NewRescoreHandler(e Rescorer) *RescoreHandler {
	return &RescoreHandler{engine: e}
}

// --- Input/Output types ---

// RescoreInput is the input for a batch rescore run.
type RescoreInput struct {
	Category string `query:"category" doc:"Restrict to one category" enum:"watch,sneaker,car,"`
	Limit    int    `query:"limit"    doc:"Maximum listings to rescore" minimum:"1" maximum:"10000"`
}

// RescoreOutput is the response for a batch rescore run.
type RescoreOutput struct {
	Body struct {
		JobID   string `json:"job_id"`
		Scored  int    `json:"scored"`
		Failed  int    `json:"failed"`
		Skipped int    `json:"skipped"`
	}
}

// --- Handlers ---

// Rescore recomputes scores for stored listings using the current
// category configuration and writes them back.
func (h *RescoreHandler) Rescore(
	ctx context.Context,
	input *RescoreInput,
) (*RescoreOutput, error) {
	result, err := h.engine.RescoreAll(ctx, input.Category, input.Limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("rescore failed: " + err.Error())
	}

	resp := &RescoreOutput{}
	resp.Body.JobID = result.JobID
	resp.Body.Scored = result.Scored
	resp.Body.Failed = result.Failed
	resp.Body.Skipped = result.Skipped

	return resp, nil
}

// RegisterRescoreRoutes registers rescore endpoints with the Huma API.
func RegisterRescoreRoutes(api huma.API, h *RescoreHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "rescore-listings",
		Method:      http.MethodPost,
		Path:        "/api/v1/rescore",
		Summary:     "Re-score stored listings",
		Description: "Recomputes composite scores for stored listings using current category configuration and writes them back.",
		Tags:        []string{"scoring"},
	}, h.Rescore)
}
