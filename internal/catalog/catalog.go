// Package catalog holds per-category scoring configuration: component
// weights, grade thresholds, demand rules, source reputation tables and
// the economics used by profit estimation.
//
// A Store is safe for concurrent use. The engine snapshots a category's
// config once per scoring call; config updates arrive from API handlers
// on their own goroutines.
package catalog

import (
	"sync"

	domain "github.com/dealscout/deal-engine/pkg/types"
)

// DefaultCategory is the fallback applied when a listing names a
// category the store has never heard of.
const DefaultCategory = domain.CategoryWatch

// Store maps category names to their scoring configuration.
type Store struct {
	mu      sync.RWMutex
	configs map[string]*domain.CategoryConfig
}

// NewStore returns a Store seeded with the built-in category defaults.
func NewStore() *Store {
	s := &Store{configs: make(map[string]*domain.CategoryConfig)}
	for _, c := range Defaults() {
		s.configs[string(c.Name)] = c
	}
	return s
}

// Config returns the configuration for category. Unknown categories
// silently resolve to the default category so that a listing with a
// bad or missing category still scores. The returned config is never
// mutated after publication; Update replaces the map entry wholesale.
func (s *Store) Config(category string) *domain.CategoryConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config(category)
}

// config is the lock-free lookup shared by Config and Snapshot. Callers
// hold at least a read lock.
func (s *Store) config(category string) *domain.CategoryConfig {
	if c, ok := s.configs[category]; ok {
		return c
	}
	return s.configs[string(DefaultCategory)]
}

// Has reports whether category is explicitly configured.
func (s *Store) Has(category string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.configs[category]
	return ok
}

// Categories returns the names of all configured categories.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.configs))
	for name := range s.configs {
		names = append(names, name)
	}
	return names
}

// Update applies a partial update to an existing category. Nil fields
// in upd are left untouched. It returns false when the category does
// not exist; updates never create categories implicitly.
//
// Update does not validate weight sums or threshold ordering. That is
// the caller's contract, enforced at the API boundary before the
// update reaches the store.
func (s *Store) Update(category string, upd ConfigUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.configs[category]
	if !ok {
		return false
	}

	// Copy on write: configs handed out earlier stay unchanged.
	next := *cur

	if upd.Weights != nil {
		next.Weights = *upd.Weights
	}
	if upd.Thresholds != nil {
		next.Thresholds = *upd.Thresholds
	}
	if upd.BrandDemand != nil {
		next.BrandDemand = upd.BrandDemand
	}
	if upd.ModelDemand != nil {
		next.ModelDemand = upd.ModelDemand
	}
	if upd.TrustedSources != nil {
		next.TrustedSources = upd.TrustedSources
	}
	if upd.AvgProfitMargin != nil {
		next.AvgProfitMargin = *upd.AvgProfitMargin
	}
	if upd.ShippingCost != nil {
		next.ShippingCost = *upd.ShippingCost
	}

	s.configs[category] = &next
	return true
}

// ConfigUpdate carries a partial category update. Nil means "leave
// unchanged".
type ConfigUpdate struct {
	Weights         *domain.Weights
	Thresholds      *domain.Thresholds
	BrandDemand     []domain.DemandRule
	ModelDemand     []domain.DemandRule
	TrustedSources  []domain.SourceReputation
	AvgProfitMargin *float64
	ShippingCost    *float64
}

// Snapshot returns a deep copy of the category's configuration, so a
// scoring pass sees one consistent view even if an update lands midway.
func (s *Store) Snapshot(category string) domain.CategoryConfig {
	s.mu.RLock()
	c := s.config(category)
	s.mu.RUnlock()

	out := *c
	out.BrandDemand = append([]domain.DemandRule(nil), c.BrandDemand...)
	out.ModelDemand = append([]domain.DemandRule(nil), c.ModelDemand...)
	out.TrustedSources = append([]domain.SourceReputation(nil), c.TrustedSources...)
	return out
}

// Defaults returns the built-in category configurations. Weights for
// every category sum to 100.
func Defaults() []*domain.CategoryConfig {
	return []*domain.CategoryConfig{
		{
			Name: domain.CategoryWatch,
			Weights: domain.Weights{
				Price: 30, Condition: 15, Seller: 15,
				Velocity: 15, Demand: 15, Quality: 10,
			},
			Thresholds: domain.Thresholds{
				HotDeal: 85, GreatDeal: 75, GoodDeal: 65, Fair: 50,
			},
			BrandDemand: []domain.DemandRule{
				{Match: "rolex", Multiplier: 1.5},
				{Match: "patek", Multiplier: 1.5},
				{Match: "audemars", Multiplier: 1.45},
				{Match: "vacheron", Multiplier: 1.4},
				{Match: "lange", Multiplier: 1.4},
				{Match: "omega", Multiplier: 1.25},
				{Match: "tudor", Multiplier: 1.2},
				{Match: "cartier", Multiplier: 1.2},
				{Match: "grand seiko", Multiplier: 1.15},
			},
			ModelDemand: []domain.DemandRule{
				{Match: "daytona", Multiplier: 1.5},
				{Match: "nautilus", Multiplier: 1.5},
				{Match: "royal oak", Multiplier: 1.45},
				{Match: "submariner", Multiplier: 1.4},
				{Match: "gmt", Multiplier: 1.35},
				{Match: "speedmaster", Multiplier: 1.3},
				{Match: "explorer", Multiplier: 1.25},
				{Match: "datejust", Multiplier: 1.2},
			},
			TrustedSources: []domain.SourceReputation{
				{Match: "chrono24", Score: 95, Label: "verified dealer platform"},
				{Match: "watchuseek", Score: 80, Label: "enthusiast forum"},
				{Match: "watchcharts", Score: 78, Label: "market data community"},
				{Match: "reddit", Score: 70, Label: "community marketplace"},
				{Match: "ebay", Score: 65, Label: "general marketplace"},
			},
			AvgProfitMargin: 0.12,
			ShippingCost:    40,
		},
		{
			Name: domain.CategorySneaker,
			Weights: domain.Weights{
				Price: 35, Condition: 20, Seller: 10,
				Velocity: 10, Demand: 20, Quality: 5,
			},
			Thresholds: domain.Thresholds{
				HotDeal: 85, GreatDeal: 75, GoodDeal: 65, Fair: 50,
			},
			BrandDemand: []domain.DemandRule{
				{Match: "jordan", Multiplier: 1.5},
				{Match: "nike", Multiplier: 1.3},
				{Match: "yeezy", Multiplier: 1.25},
				{Match: "new balance", Multiplier: 1.15},
				{Match: "adidas", Multiplier: 1.1},
			},
			ModelDemand: []domain.DemandRule{
				{Match: "travis scott", Multiplier: 1.5},
				{Match: "off-white", Multiplier: 1.5},
				{Match: "chicago", Multiplier: 1.4},
				{Match: "bred", Multiplier: 1.3},
				{Match: "dunk low", Multiplier: 1.25},
				{Match: "panda", Multiplier: 1.15},
			},
			TrustedSources: []domain.SourceReputation{
				{Match: "stockx", Score: 90, Label: "authenticated marketplace"},
				{Match: "goat", Score: 90, Label: "authenticated marketplace"},
				{Match: "grailed", Score: 75, Label: "peer marketplace"},
				{Match: "ebay", Score: 65, Label: "general marketplace"},
			},
			AvgProfitMargin: 0.18,
			ShippingCost:    25,
		},
		{
			Name: domain.CategoryCar,
			Weights: domain.Weights{
				Price: 35, Condition: 25, Seller: 15,
				Velocity: 5, Demand: 10, Quality: 10,
			},
			Thresholds: domain.Thresholds{
				HotDeal: 85, GreatDeal: 75, GoodDeal: 65, Fair: 50,
			},
			BrandDemand: []domain.DemandRule{
				{Match: "porsche", Multiplier: 1.4},
				{Match: "toyota", Multiplier: 1.25},
				{Match: "honda", Multiplier: 1.2},
				{Match: "lexus", Multiplier: 1.2},
				{Match: "bmw", Multiplier: 1.1},
			},
			ModelDemand: []domain.DemandRule{
				{Match: "911", Multiplier: 1.4},
				{Match: "supra", Multiplier: 1.35},
				{Match: "gt3", Multiplier: 1.35},
				{Match: "land cruiser", Multiplier: 1.3},
				{Match: "civic type r", Multiplier: 1.25},
				{Match: "miata", Multiplier: 1.15},
			},
			TrustedSources: []domain.SourceReputation{
				{Match: "bring a trailer", Score: 92, Label: "curated auction"},
				{Match: "cars & bids", Score: 88, Label: "curated auction"},
				{Match: "carmax", Score: 80, Label: "national dealer"},
				{Match: "autotrader", Score: 70, Label: "classified aggregator"},
				{Match: "craigslist", Score: 45, Label: "unverified classifieds"},
			},
			AvgProfitMargin: 0.08,
			ShippingCost:    950,
		},
	}
}
