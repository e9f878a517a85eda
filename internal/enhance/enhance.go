// Package enhance provides optional demand-signal enrichment for
// scoring. An Enhancer may adjust a listing's demand score using
// signals the static rule tables cannot see; its absence or failure is
// never an error, the engine keeps the rule-based score.
package enhance

import (
	"context"

	domain "github.com/dealscout/deal-engine/pkg/types"
)

// Enhancer suggests a replacement demand score for a listing.
// Implementations return (score, true) to override or (0, false) to
// keep the rule-based value.
type Enhancer interface {
	Name() string
	DemandScore(ctx context.Context, l *domain.Listing) (int, bool, error)
}

// Noop keeps every rule-based score. It is the default when no
// enhancer is configured.
type Noop struct{}

// NewNoop returns a Noop enhancer.
func NewNoop() *Noop { return &Noop{} }

// Name returns the enhancer name.
func (*Noop) Name() string { return "noop" }

// DemandScore never overrides.
func (*Noop) DemandScore(context.Context, *domain.Listing) (int, bool, error) {
	return 0, false, nil
}
