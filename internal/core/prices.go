package core

import (
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the platform settlement currency.
const DefaultCurrency = "NGN"

type PricingModel string

const (
	PricingFixed   PricingModel = "fixed"
	PricingDynamic PricingModel = "dynamic"
)

type Frequency string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyAnnual    Frequency = "annual"
)

// Price is a monetary quantum attached to a quote. Once a quote is
// persisted its price is audit trail: a re-rate writes a replacement
// price, it never mutates the stored amounts in place.
//
// Identity is (amount, description). That is deliberately weak, so two
// offers priced identically with the same description collapse to one
// price value; the quote code keeps the offers themselves apart.
type Price struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	Commission  decimal.Decimal `json:"commission,omitempty"`
	Discount    decimal.Decimal `json:"discount,omitempty"`
	Surcharge   decimal.Decimal `json:"surcharge,omitempty"`
	Currency    string          `json:"currency"`
	Frequency   Frequency       `json:"frequency,omitempty"`
	Model       PricingModel    `json:"model,omitempty"`
}

// NewPremium builds the standard fixed annual NGN premium price.
func NewPremium(amount decimal.Decimal, description string) Price {
	return Price{
		Amount:      amount.Round(2),
		Description: description,
		Currency:    DefaultCurrency,
		Frequency:   FrequencyAnnual,
		Model:       PricingFixed,
	}
}
