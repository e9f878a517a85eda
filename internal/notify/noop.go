package notify

import (
	"context"
	"log/slog"

	domain "github.com/dealscout/deal-engine/pkg/types"
)

// NoOpNotifier implements Notifier by logging discarded announcements.
// It is used when Discord (or another notification backend) is not
// configured.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that discards deals with a log message.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// SendDeal logs and discards a deal announcement.
func (n *NoOpNotifier) SendDeal(_ context.Context, deal *domain.DealOfTheDay) error {
	n.log.Debug("notification discarded (no backend configured)",
		"category", deal.Listing.Category,
		"listing", deal.Listing.Title,
		"score", deal.Score,
	)
	return nil
}
