// Package domain defines the core business types for the deal scoring engine.
package domain

import (
	"time"
)

// Category identifies an item class with its own scoring configuration.
type Category string

// Category constants.
const (
	CategoryWatch   Category = "watch"
	CategorySneaker Category = "sneaker"
	CategoryCar     Category = "car"
)

// Listing represents a marketplace listing presented for scoring.
// Optional fields are pointers; absence is data, not an error. The
// required tags shape the API request schema: engagement counters,
// server-assigned IDs and timestamps never have to be submitted.
type Listing struct {
	ID       string   `json:"id"                 db:"id" required:"false"`
	Category Category `json:"category"           db:"category"`
	Brand    string   `json:"brand"              db:"brand"`
	Model    string   `json:"model"              db:"model" required:"false"`
	Title    string   `json:"title,omitempty"    db:"title"`
	ItemURL  string   `json:"item_url,omitempty" db:"item_url"`

	// Pricing
	Price         float64  `json:"price"                    db:"price"`
	OriginalPrice *float64 `json:"original_price,omitempty" db:"original_price"`

	// Provenance
	Source string `json:"source"           db:"source"`
	Seller string `json:"seller,omitempty" db:"seller"`

	// Content
	Condition   string   `json:"condition,omitempty"   db:"condition"`
	Description string   `json:"description,omitempty" db:"description"`
	Images      []string `json:"images,omitempty"      db:"images"`

	// Engagement
	Views     int `json:"views"     db:"views"     required:"false"`
	Watchers  int `json:"watchers"  db:"watchers"  required:"false"`
	Inquiries int `json:"inquiries" db:"inquiries" required:"false"`

	// Scoring (written back by callers, never by the core)
	Score    *int       `json:"score,omitempty"     db:"score"`
	Grade    string     `json:"grade,omitempty"     db:"grade"`
	ScoredAt *time.Time `json:"scored_at,omitempty" db:"scored_at"`

	// Timestamps
	ListedAt  time.Time `json:"timestamp"  db:"listed_at"  required:"false"`
	CreatedAt time.Time `json:"created_at" db:"created_at" required:"false"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" required:"false"`
}

// AgeAt returns how long the listing has been live at the given instant.
func (l *Listing) AgeAt(now time.Time) time.Duration {
	if l.ListedAt.IsZero() {
		return 0
	}
	return now.Sub(l.ListedAt)
}

// CombinedText returns the title and description joined for keyword scans.
func (l *Listing) CombinedText() string {
	if l.Title == "" {
		return l.Description
	}
	if l.Description == "" {
		return l.Title
	}
	return l.Title + " " + l.Description
}

// Weights defines the relative importance of each scoring component.
// The six values are percentages and must sum to 100; the catalog does
// not enforce this, callers do before updating a config.
type Weights struct {
	Price     int `json:"price"     yaml:"price"`
	Condition int `json:"condition" yaml:"condition"`
	Seller    int `json:"seller"    yaml:"seller"`
	Velocity  int `json:"velocity"  yaml:"velocity"`
	Demand    int `json:"demand"    yaml:"demand"`
	Quality   int `json:"quality"   yaml:"quality"`
}

// Sum returns the total of all component weights.
func (w Weights) Sum() int {
	return w.Price + w.Condition + w.Seller + w.Velocity + w.Demand + w.Quality
}

// Thresholds defines grade cutoffs in descending order.
type Thresholds struct {
	HotDeal   int `json:"hot_deal"   yaml:"hot_deal"`
	GreatDeal int `json:"great_deal" yaml:"great_deal"`
	GoodDeal  int `json:"good_deal"  yaml:"good_deal"`
	Fair      int `json:"fair"       yaml:"fair"`
}

// DemandRule maps a brand or model substring to a demand multiplier.
// Rules are evaluated in declaration order; the first match wins.
type DemandRule struct {
	Match      string  `json:"match"      yaml:"match"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
}

// SourceReputation maps a marketplace source substring to a base seller
// score and a human label. Ordered, first match wins.
type SourceReputation struct {
	Match string `json:"match" yaml:"match"`
	Score int    `json:"score" yaml:"score"`
	Label string `json:"label" yaml:"label"`
}

// CategoryConfig holds the per-category scoring knobs.
type CategoryConfig struct {
	Name            Category           `json:"name"              yaml:"name"`
	Weights         Weights            `json:"weights"           yaml:"weights"`
	Thresholds      Thresholds         `json:"thresholds"        yaml:"thresholds"`
	BrandDemand     []DemandRule       `json:"brand_demand"      yaml:"brand_demand"`
	ModelDemand     []DemandRule       `json:"model_demand"      yaml:"model_demand"`
	TrustedSources  []SourceReputation `json:"trusted_sources"   yaml:"trusted_sources"`
	AvgProfitMargin float64            `json:"avg_profit_margin" yaml:"avg_profit_margin"`
	ShippingCost    float64            `json:"shipping_cost"     yaml:"shipping_cost"`
}

// ComponentScore is one factor's contribution to the composite score.
type ComponentScore struct {
	Score   int               `json:"score"`
	Weight  int               `json:"weight"`
	Details map[string]string `json:"details,omitempty"`
}

// Breakdown holds the six component scores keyed by component name.
type Breakdown struct {
	Price     ComponentScore `json:"price"`
	Condition ComponentScore `json:"condition"`
	Seller    ComponentScore `json:"seller"`
	Velocity  ComponentScore `json:"velocity"`
	Demand    ComponentScore `json:"demand"`
	Quality   ComponentScore `json:"quality"`
}

// Confidence tiers for profit projections.
const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

// ProfitPotential projects resale profit assuming purchase near asking
// price and resale near market average. Money fields are nil when no
// market reference exists.
type ProfitPotential struct {
	ListingPrice       float64  `json:"listing_price"`
	EstimatedSellPrice *float64 `json:"estimated_sell_price,omitempty"`
	GrossProfit        *float64 `json:"gross_profit,omitempty"`
	EstimatedFees      *float64 `json:"estimated_fees,omitempty"`
	NetProfit          *float64 `json:"net_profit,omitempty"`
	ProfitPercent      *float64 `json:"profit_percent,omitempty"`
	Confidence         string   `json:"confidence"`
	Recommendation     string   `json:"recommendation"`
}

// ScoreResult is the full output of scoring one listing.
type ScoreResult struct {
	Score     int              `json:"score"`
	Grade     string           `json:"grade"`
	Category  Category         `json:"category"`
	Breakdown Breakdown        `json:"breakdown"`
	Profit    *ProfitPotential `json:"profit_potential,omitempty"`
	ScoredAt  time.Time        `json:"scored_at"`
}

// DealOfTheDay is the best qualifying listing for a category on a
// calendar day.
type DealOfTheDay struct {
	Listing    Listing          `json:"listing"`
	Score      int              `json:"score"`
	Grade      string           `json:"grade"`
	Breakdown  Breakdown        `json:"breakdown"`
	Profit     *ProfitPotential `json:"profit_potential,omitempty"`
	Reason     string           `json:"reason"`
	SelectedAt time.Time        `json:"selected_at"`
}

// JobRun records a single execution of a batch rescore or scheduled job.
type JobRun struct {
	ID           string     `json:"id"                      db:"id"`
	JobName      string     `json:"job_name"                db:"job_name"`
	StartedAt    time.Time  `json:"started_at"              db:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"  db:"completed_at"`
	Status       string     `json:"status"                  db:"status"`
	ErrorText    string     `json:"error_text,omitempty"    db:"error_text"`
	RowsAffected *int       `json:"rows_affected,omitempty" db:"rows_affected"`
}
