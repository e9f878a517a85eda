package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dealscout/deal-engine/internal/metrics"
)

// RescoreResult summarizes a batch rescore run.
type RescoreResult struct {
	JobID   string `json:"job_id,omitempty"`
	Scored  int    `json:"scored"`
	Failed  int    `json:"failed"`
	Skipped int    `json:"skipped"`
}

// RescoreAll recomputes scores for up to limit listings (stalest
// first) and writes them back. An empty category rescores everything.
// Work runs on a bounded pool; cancellation stops dispatching new
// listings but in-flight ones finish.
func (e *Engine) RescoreAll(ctx context.Context, category string, limit int) (*RescoreResult, error) {
	if e.store == nil {
		return nil, fmt.Errorf("rescore requires a datastore")
	}

	start := time.Now()
	defer func() {
		metrics.RescoreDuration.Observe(time.Since(start).Seconds())
	}()

	res := &RescoreResult{}

	jobID, err := e.store.InsertJobRun(ctx, "rescore")
	if err != nil {
		return nil, fmt.Errorf("recording job run: %w", err)
	}
	res.JobID = jobID

	listings, err := e.store.ListScorable(ctx, category, limit)
	if err != nil {
		e.completeJob(jobID, "failed", err.Error(), 0)
		return nil, fmt.Errorf("listing scorable listings: %w", err)
	}

	var scored, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.rescoreWorkers)

	for i := range listings {
		if gctx.Err() != nil {
			res.Skipped = len(listings) - i
			break
		}

		l := &listings[i]
		g.Go(func() error {
			result, err := e.ScoreListing(gctx, l)
			if err != nil {
				failed.Add(1)
				metrics.RescoreErrorsTotal.Inc()
				e.log.Warn("rescore failed", "listing_id", l.ID, "error", err)
				return nil
			}

			breakdown, err := json.Marshal(result.Breakdown)
			if err != nil {
				failed.Add(1)
				return nil
			}

			if err := e.store.UpdateScore(
				gctx, l.ID, result.Score, result.Grade, breakdown, result.ScoredAt,
			); err != nil {
				failed.Add(1)
				metrics.RescoreErrorsTotal.Inc()
				e.log.Warn("score write-back failed", "listing_id", l.ID, "error", err)
				return nil
			}

			scored.Add(1)
			metrics.RescoreListingsTotal.Inc()
			return nil
		})
	}

	_ = g.Wait()

	res.Scored = int(scored.Load())
	res.Failed = int(failed.Load())

	status := "succeeded"
	errText := ""
	if err := ctx.Err(); err != nil {
		status = "canceled"
		errText = err.Error()
	} else if res.Failed > 0 {
		status = "partial"
		errText = fmt.Sprintf("%d of %d listings failed", res.Failed, len(listings))
	}

	e.completeJob(jobID, status, errText, res.Scored)

	e.log.Info("rescore finished",
		"category", category,
		"scored", res.Scored,
		"failed", res.Failed,
		"skipped", res.Skipped,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return res, ctx.Err()
}

// completeJob records the job outcome outside the request context so a
// canceled run still gets its audit row.
func (e *Engine) completeJob(jobID, status, errText string, rows int) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := e.store.CompleteJobRun(ctx, jobID, status, errText, rows); err != nil {
		e.log.Error("completing job run failed", "job_id", jobID, "error", err)
	}
}
