package core

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/superpool/superpool/internal/platform/rates"
)

// PremiumBreakdown is one tier's rating outcome:
// total = base + risk cost - discount, all 2dp decimals.
type PremiumBreakdown struct {
	Base      decimal.Decimal
	RiskCost  decimal.Decimal
	Discount  decimal.Decimal
	Total     decimal.Decimal
	RiskScore int
	RiskFlags []string
}

// RatingEngine prices internal product tiers. The default path is flat
// tier pricing; categories with a registered assessor get a risk-adjusted
// premium on top of that base.
type RatingEngine struct {
	rates    *rates.Table
	risk     map[Category]RiskAssessor
	discount DiscountPolicy
	log      *slog.Logger
}

func NewRatingEngine(table *rates.Table, risk map[Category]RiskAssessor, discount DiscountPolicy, log *slog.Logger) *RatingEngine {
	if risk == nil {
		risk = DefaultRiskAssessors()
	}
	if discount == nil {
		discount = NoDiscount{}
	}
	return &RatingEngine{
		rates:    table,
		risk:     risk,
		discount: discount,
		log:      log,
	}
}

// RateTier computes the premium for one product/tier pair.
//
// Base resolution order: flat-fee schedule by (category, tier), then the
// tier's own base premium, then the product's fixed base premium. A tier
// with no resolvable base is malformed catalog data and rates as a
// failure, not as zero.
func (e *RatingEngine) RateTier(p Product, t ProductTier, a Applicant) (PremiumBreakdown, error) {
	base, ok := e.resolveBase(p, t)
	if !ok {
		return PremiumBreakdown{}, fmt.Errorf("%w: no base premium for %s/%s tier %q",
			ErrRatingFailure, p.Provider, p.Name, t.Name)
	}

	assessor, ok := e.risk[p.Category]
	if !ok {
		assessor = NoRisk{}
	}
	risk := assessor.Assess(a)

	discount := e.discount.Discount(a, base)
	if discount.IsNegative() {
		return PremiumBreakdown{}, fmt.Errorf("%w: negative discount for tier %q", ErrRatingFailure, t.Name)
	}

	total := base.Add(risk.Cost).Sub(discount).Round(2)
	if total.IsNegative() {
		// Discounts never push a premium below zero.
		total = decimal.Zero
	}

	return PremiumBreakdown{
		Base:      base.Round(2),
		RiskCost:  risk.Cost.Round(2),
		Discount:  discount.Round(2),
		Total:     total,
		RiskScore: risk.Score,
		RiskFlags: risk.Flags,
	}, nil
}

func (e *RatingEngine) resolveBase(p Product, t ProductTier) (decimal.Decimal, bool) {
	if e.rates != nil {
		if fee, ok := e.rates.Lookup(string(p.Category), t.Name); ok {
			return fee, true
		}
	}
	if t.BasePremium.IsPositive() {
		return t.BasePremium, true
	}
	if p.BasePremium.IsPositive() {
		return p.BasePremium, true
	}
	return decimal.Zero, false
}
