// Package score implements the pure component scorers behind the
// composite 0-100 deal score. Every scorer is a pure function of the
// listing and the category configuration; market data is passed in by
// the caller. All component scores are clamped to [0,100].
package score

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	domain "github.com/dealscout/deal-engine/pkg/types"
)

// Market is the price reference a listing is scored against.
// FullWindow is true when the average came from the primary
// brand+model query rather than the brand-only fallback.
type Market struct {
	Average    float64
	Samples    int
	FullWindow bool
}

// Grade labels, best to worst.
const (
	GradeHotDeal     = "HOT DEAL"
	GradeGreatDeal   = "GREAT DEAL"
	GradeGoodDeal    = "GOOD DEAL"
	GradeFair        = "FAIR"
	GradeBelowMarket = "BELOW MARKET"
)

const neutralScore = 50

// Compute runs all six component scorers and attaches category weights.
// A nil market is valid and yields a neutral price score.
func Compute(
	l *domain.Listing,
	market *Market,
	cfg *domain.CategoryConfig,
	now time.Time,
) domain.Breakdown {
	w := cfg.Weights
	return domain.Breakdown{
		Price:     withWeight(PriceScore(l.Price, market), w.Price),
		Condition: withWeight(ConditionScore(l.Condition), w.Condition),
		Seller:    withWeight(SellerScore(l.Source, l.Seller, cfg.TrustedSources), w.Seller),
		Velocity:  withWeight(VelocityScore(l, now), w.Velocity),
		Demand:    withWeight(DemandScore(l.Brand, l.Model, cfg.BrandDemand, cfg.ModelDemand), w.Demand),
		Quality:   withWeight(QualityScore(l), w.Quality),
	}
}

// Total combines a breakdown into the weighted composite score,
// rounded and clamped to [0,100]. The sum is order-independent.
func Total(b domain.Breakdown) int {
	components := []domain.ComponentScore{
		b.Price, b.Condition, b.Seller, b.Velocity, b.Demand, b.Quality,
	}

	var total float64
	for _, c := range components {
		total += float64(c.Score) * float64(c.Weight) / 100
	}

	return clamp(int(math.Round(total)))
}

// Grade returns the label for the first threshold the score meets,
// checked in descending order.
func Grade(score int, t domain.Thresholds) string {
	switch {
	case score >= t.HotDeal:
		return GradeHotDeal
	case score >= t.GreatDeal:
		return GradeGreatDeal
	case score >= t.GoodDeal:
		return GradeGoodDeal
	case score >= t.Fair:
		return GradeFair
	default:
		return GradeBelowMarket
	}
}

// priceBreakpoints maps price/market ratio ceilings to scores.
// Must stay sorted ascending by ratio; the first ceiling the ratio
// fits under wins.
var priceBreakpoints = []struct {
	ratio float64
	score int
}{
	{0.65, 100},
	{0.70, 95},
	{0.75, 90},
	{0.80, 85},
	{0.85, 78},
	{0.90, 70},
	{0.95, 62},
	{1.00, 55},
	{1.05, 45},
	{1.10, 35},
	{1.15, 25},
	{1.20, 15},
}

const priceScoreFloor = 5

// PriceScore rates the asking price against the market average.
// Without market data the score is neutral and noted as such.
func PriceScore(price float64, market *Market) domain.ComponentScore {
	if market == nil || market.Average <= 0 {
		return domain.ComponentScore{
			Score:   neutralScore,
			Details: map[string]string{"note": "no market data"},
		}
	}

	ratio := price / market.Average
	discount := (1 - ratio) * 100

	s := priceScoreFloor
	for _, bp := range priceBreakpoints {
		if ratio <= bp.ratio {
			s = bp.score
			break
		}
	}

	return domain.ComponentScore{
		Score: s,
		Details: map[string]string{
			"market_average": fmt.Sprintf("%.0f", market.Average),
			"discount_pct":   fmt.Sprintf("%.1f", discount),
			"samples":        fmt.Sprintf("%d", market.Samples),
		},
	}
}

// conditionExact maps normalized condition strings to scores.
var conditionExact = map[string]int{
	"new":       100,
	"unworn":    100,
	"brand new": 100,
	"mint":      95,
	"like new":  95,
	"excellent": 90,
	"very good": 80,
	"good":      70,
	"fair":      55,
	"used":      45,
	"worn":      45,
	"poor":      25,
	"damaged":   15,
}

// conditionSubstrings is checked in order when no exact match exists.
// More specific phrases come first so "like new" beats "new".
var conditionSubstrings = []struct {
	match string
	score int
}{
	{"brand new", 100},
	{"unworn", 100},
	{"like new", 95},
	{"mint", 95},
	{"new", 100},
	{"excellent", 90},
	{"very good", 80},
	{"good", 70},
	{"fair", 55},
	{"worn", 45},
	{"used", 45},
	{"damaged", 15},
	{"poor", 25},
}

// ConditionScore maps free-text condition to a score: exact lookup
// first, then first matching substring, neutral 50 otherwise.
func ConditionScore(condition string) domain.ComponentScore {
	c := strings.ToLower(strings.TrimSpace(condition))
	if c == "" {
		return domain.ComponentScore{
			Score:   neutralScore,
			Details: map[string]string{"note": "condition not stated"},
		}
	}

	if s, ok := conditionExact[c]; ok {
		return domain.ComponentScore{
			Score:   s,
			Details: map[string]string{"matched": c},
		}
	}

	for _, cs := range conditionSubstrings {
		if strings.Contains(c, cs.match) {
			return domain.ComponentScore{
				Score:   cs.score,
				Details: map[string]string{"matched": cs.match},
			}
		}
	}

	return domain.ComponentScore{
		Score:   neutralScore,
		Details: map[string]string{"note": "condition unrecognized"},
	}
}

var salesCountRe = regexp.MustCompile(`(\d+)\+?\s*(?:sales|transactions|txns?)`)

// SellerScore combines the source's base reputation with signals parsed
// from the seller text.
func SellerScore(
	source, seller string,
	sources []domain.SourceReputation,
) domain.ComponentScore {
	details := map[string]string{}

	base := neutralScore
	src := strings.ToLower(source)
	for _, rep := range sources {
		if strings.Contains(src, rep.Match) {
			base = rep.Score
			details["source"] = rep.Label
			break
		}
	}

	s := base
	text := strings.ToLower(seller)

	if strings.Contains(text, "verified") {
		s += 10
	}
	if strings.Contains(text, "top rated") || strings.Contains(text, "top-rated") {
		s += 10
	}
	if strings.Contains(text, "dealer") || strings.Contains(text, "authorized") {
		s += 8
	}

	if m := salesCountRe.FindStringSubmatch(text); m != nil {
		s += salesCountBonus(m[1])
		details["sales_count"] = m[1]
	}

	if strings.Contains(text, "new seller") ||
		strings.Contains(text, "first sale") ||
		strings.Contains(text, "first time") {
		s -= 15
	}
	if strings.Contains(text, "no returns") ||
		strings.Contains(text, "as-is") ||
		strings.Contains(text, "as is") {
		s -= 5
	}

	return domain.ComponentScore{Score: clamp(s), Details: details}
}

func salesCountBonus(digits string) int {
	var n int
	fmt.Sscanf(digits, "%d", &n)
	switch {
	case n >= 100:
		return 10
	case n >= 50:
		return 8
	case n >= 25:
		return 6
	case n >= 10:
		return 4
	case n >= 1:
		return 2
	default:
		return 0
	}
}

// VelocityScore rates listing momentum: freshness, price cuts, and
// buyer engagement all push the score up from the neutral baseline.
func VelocityScore(l *domain.Listing, now time.Time) domain.ComponentScore {
	s := neutralScore
	details := map[string]string{}

	if !l.ListedAt.IsZero() {
		days := l.AgeAt(now).Hours() / 24
		s += ageAdjustment(days)
		details["age_days"] = fmt.Sprintf("%.0f", days)
	}

	if l.OriginalPrice != nil && *l.OriginalPrice > l.Price && *l.OriginalPrice > 0 {
		drop := (*l.OriginalPrice - l.Price) / *l.OriginalPrice * 100
		s += priceDropBonus(drop)
		details["price_drop_pct"] = fmt.Sprintf("%.1f", drop)
	}

	s += engagementBonus(l.Views, l.Inquiries+l.Watchers)

	return domain.ComponentScore{Score: clamp(s), Details: details}
}

func ageAdjustment(days float64) int {
	switch {
	case days < 1:
		return 20
	case days < 3:
		return 15
	case days < 7:
		return 10
	case days < 14:
		return 5
	case days < 30:
		return 0
	case days < 60:
		return -10
	default:
		return -20
	}
}

func priceDropBonus(dropPct float64) int {
	switch {
	case dropPct >= 25:
		return 20
	case dropPct >= 15:
		return 15
	case dropPct >= 10:
		return 10
	case dropPct >= 5:
		return 5
	default:
		return 0
	}
}

func engagementBonus(views, interest int) int {
	bonus := 0

	switch {
	case views >= 500:
		bonus += 8
	case views >= 200:
		bonus += 6
	case views >= 50:
		bonus += 3
	}

	switch {
	case interest >= 25:
		bonus += 12
	case interest >= 10:
		bonus += 8
	case interest >= 3:
		bonus += 4
	}

	return bonus
}

// DemandScore multiplies the neutral baseline by the first matching
// brand rule, then the first matching model rule. Multipliers compose
// multiplicatively.
func DemandScore(
	brand, model string,
	brandRules, modelRules []domain.DemandRule,
) domain.ComponentScore {
	details := map[string]string{}

	mult := 1.0
	if m, rule := firstDemandMatch(brand, brandRules); m {
		mult *= rule.Multiplier
		details["brand"] = rule.Match
	}
	if m, rule := firstDemandMatch(model, modelRules); m {
		mult *= rule.Multiplier
		details["model"] = rule.Match
	}

	s := clamp(int(math.Round(neutralScore * mult)))
	return domain.ComponentScore{Score: s, Details: details}
}

func firstDemandMatch(value string, rules []domain.DemandRule) (bool, domain.DemandRule) {
	v := strings.ToLower(value)
	if v == "" {
		return false, domain.DemandRule{}
	}
	for _, r := range rules {
		if strings.Contains(v, r.Match) {
			return true, r
		}
	}
	return false, domain.DemandRule{}
}

var yearRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// qualityKeywordGroups each award one bonus when any keyword appears in
// the combined title and description. Capped at 20 total with the year
// bonus.
var qualityKeywordGroups = [][]string{
	{"box", "papers", "original"},
	{"warranty", "certificate"},
	{"serial", "reference"},
}

// QualityScore rates how well-documented the listing is: photos,
// description depth, and provenance keywords.
func QualityScore(l *domain.Listing) domain.ComponentScore {
	s := imageTier(len(l.Images))
	s += descriptionTier(len(l.Description))

	text := strings.ToLower(l.CombinedText())
	for _, group := range qualityKeywordGroups {
		for _, kw := range group {
			if strings.Contains(text, kw) {
				s += 5
				break
			}
		}
	}
	if yearRe.MatchString(text) {
		s += 5
	}

	return domain.ComponentScore{
		Score: clamp(s),
		Details: map[string]string{
			"images": fmt.Sprintf("%d", len(l.Images)),
		},
	}
}

func imageTier(count int) int {
	switch {
	case count >= 8:
		return 50
	case count >= 5:
		return 40
	case count >= 3:
		return 30
	case count >= 1:
		return 15
	default:
		return 0
	}
}

func descriptionTier(chars int) int {
	switch {
	case chars >= 500:
		return 30
	case chars >= 250:
		return 20
	case chars >= 100:
		return 10
	default:
		return 0
	}
}

func withWeight(c domain.ComponentScore, weight int) domain.ComponentScore {
	c.Weight = weight
	return c
}

func clamp(s int) int {
	if s > 100 {
		return 100
	}
	if s < 0 {
		return 0
	}
	return s
}
