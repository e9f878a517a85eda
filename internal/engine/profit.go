package engine

import (
	score "github.com/dealscout/deal-engine/pkg/scorer"
	domain "github.com/dealscout/deal-engine/pkg/types"
)

const (
	// Assumed haircut off the market average when reselling.
	sellPriceFactor = 0.97
	// Flat platform fee rate on the sale price.
	platformFeeRate = 0.10

	minDiscountPct = 5.0
)

// EstimateProfit projects resale economics assuming purchase near
// asking price and resale near the market average. Without a market
// reference the money fields stay nil.
func EstimateProfit(
	l *domain.Listing,
	mkt *score.Market,
	demandScore int,
	cfg *domain.CategoryConfig,
) *domain.ProfitPotential {
	p := &domain.ProfitPotential{ListingPrice: l.Price}

	if mkt == nil || mkt.Average <= 0 || l.Price <= 0 {
		p.Confidence = domain.ConfidenceLow
		p.Recommendation = "insufficient data"
		return p
	}

	sellPrice := mkt.Average * sellPriceFactor
	platformFee := sellPrice * platformFeeRate
	fees := platformFee + cfg.ShippingCost
	grossProfit := sellPrice - l.Price
	netProfit := grossProfit - fees
	profitPercent := netProfit / l.Price * 100

	p.EstimatedSellPrice = &sellPrice
	p.GrossProfit = &grossProfit
	p.EstimatedFees = &fees
	p.NetProfit = &netProfit
	p.ProfitPercent = &profitPercent

	discountPct := (1 - l.Price/mkt.Average) * 100

	switch {
	case demandScore >= 70 && mkt.FullWindow:
		p.Confidence = domain.ConfidenceHigh
	case demandScore < 40 || discountPct < minDiscountPct:
		p.Confidence = domain.ConfidenceLow
	default:
		p.Confidence = domain.ConfidenceMedium
	}

	p.Recommendation = recommendation(profitPercent)

	return p
}

func recommendation(profitPercent float64) string {
	switch {
	case profitPercent >= 20:
		return "strong flip opportunity"
	case profitPercent >= 10:
		return "good resale candidate"
	case profitPercent >= 5:
		return "modest margin"
	case profitPercent > 0:
		return "thin margin, personal use only"
	default:
		return "not recommended for resale"
	}
}
