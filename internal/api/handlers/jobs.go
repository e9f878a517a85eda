package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dealscout/deal-engine/internal/store"
	domain "github.com/dealscout/deal-engine/pkg/types"
)

// JobsHandler exposes the audit trail of scheduled and manual job runs.
type JobsHandler struct {
	store store.Store
}

// NewJobsHandler creates a new JobsHandler.
func NewJobsHandler(s store.Store) *JobsHandler {
	return &JobsHandler{store: s}
}

// ListJobsOutput is the response for listing the latest job runs.
type ListJobsOutput struct {
	Body struct {
		Jobs []domain.JobRun `json:"jobs"`
	}
}

// ListJobs returns the most recent run of every known job.
func (h *JobsHandler) ListJobs(
	ctx context.Context,
	_ *struct{},
) (*ListJobsOutput, error) {
	jobs, err := h.store.ListLatestJobRuns(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("job query failed: " + err.Error())
	}

	resp := &ListJobsOutput{}
	resp.Body.Jobs = jobs

	return resp, nil
}

// RegisterJobRoutes registers job audit endpoints with the Huma API.
func RegisterJobRoutes(api huma.API, h *JobsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-jobs",
		Method:      http.MethodGet,
		Path:        "/api/v1/jobs",
		Summary:     "List latest job runs",
		Description: "Returns the most recent run of every known background job.",
		Tags:        []string{"jobs"},
	}, h.ListJobs)
}
