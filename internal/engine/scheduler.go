package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dealscout/deal-engine/internal/notify"
	domain "github.com/dealscout/deal-engine/pkg/types"
)

// DealSelector picks the best qualifying listing of a category.
type DealSelector interface {
	DealOfTheDay(ctx context.Context, category string) (*domain.DealOfTheDay, error)
}

// Scheduler manages periodic rescoring and the daily deal-of-the-day
// announcement.
type Scheduler struct {
	cron     *cron.Cron
	engine   *Engine
	selector DealSelector
	notifier notify.Notifier
	log      *slog.Logger

	rescoreLimit int
	categories   []string
}

// NewScheduler creates a Scheduler that rescores every
// rescoreInterval and announces each category's deal of the day on
// dealSpec (a cron expression, e.g. "0 9 * * *").
func NewScheduler(
	eng *Engine,
	sel DealSelector,
	n notify.Notifier,
	rescoreInterval time.Duration,
	rescoreLimit int,
	dealSpec string,
	categories []string,
	log *slog.Logger,
) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:         c,
		engine:       eng,
		selector:     sel,
		notifier:     n,
		log:          log,
		rescoreLimit: rescoreLimit,
		categories:   categories,
	}

	if _, err := c.AddFunc(
		"@every "+rescoreInterval.String(),
		s.runRescore,
	); err != nil {
		return nil, err
	}

	if _, err := c.AddFunc(dealSpec, s.runDealOfTheDay); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins running scheduled tasks.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started")
	s.cron.Start()
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Scheduler) runRescore() {
	ctx := context.Background()
	s.log.Info("scheduled rescore starting")
	if _, err := s.engine.RescoreAll(ctx, "", s.rescoreLimit); err != nil {
		s.log.Error("scheduled rescore failed", "error", err)
	}
}

func (s *Scheduler) runDealOfTheDay() {
	ctx := context.Background()

	for _, category := range s.categories {
		deal, err := s.selector.DealOfTheDay(ctx, category)
		if err != nil {
			s.log.Error("deal of the day selection failed",
				"category", category, "error", err)
			continue
		}
		if deal == nil {
			s.log.Info("no qualifying deal today", "category", category)
			continue
		}

		if err := s.notifier.SendDeal(ctx, deal); err != nil {
			s.log.Error("deal announcement failed",
				"category", category, "error", err)
		}
	}
}
