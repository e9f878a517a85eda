// Package notify defines the notification interface and
// implementations for deal-of-the-day delivery.
package notify

import (
	"context"

	domain "github.com/dealscout/deal-engine/pkg/types"
)

// Notifier defines the interface for announcing a selected deal.
type Notifier interface {
	SendDeal(ctx context.Context, deal *domain.DealOfTheDay) error
}
