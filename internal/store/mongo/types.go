package mongo

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/superpool/superpool/internal/core"
)

const (
	ColProducts = "products"
	ColQuotes   = "quotes"
)

// Monetary amounts are stored as their canonical 2dp string form. Decimal
// round-trips exactly that way; bson doubles would not.

type CoverageDoc struct {
	Name        string `bson:"name"`
	Description string `bson:"description,omitempty"`
	Limit       string `bson:"limit"`
}

type TierDoc struct {
	Name        string        `bson:"name"`
	BasePremium string        `bson:"base_premium"`
	Coverages   []CoverageDoc `bson:"coverages,omitempty"`
	Benefits    string        `bson:"benefits,omitempty"`
	Exclusions  string        `bson:"exclusions,omitempty"`
}

type ProductDoc struct {
	ID          string    `bson:"_id"`
	Provider    string    `bson:"provider"`
	Name        string    `bson:"name"`
	Category    string    `bson:"category"`
	BasePremium string    `bson:"base_premium"`
	Tiers       []TierDoc `bson:"tiers,omitempty"`
	Trashed     bool      `bson:"trashed"`
}

type PriceDoc struct {
	Amount      string `bson:"amount"`
	Description string `bson:"description,omitempty"`
	Commission  string `bson:"commission,omitempty"`
	Discount    string `bson:"discount,omitempty"`
	Surcharge   string `bson:"surcharge,omitempty"`
	Currency    string `bson:"currency"`
	Frequency   string `bson:"frequency,omitempty"`
	Model       string `bson:"model,omitempty"`
}

type QuoteDoc struct {
	QuoteCode   string            `bson:"_id"`
	Origin      string            `bson:"origin"`
	Provider    string            `bson:"provider"`
	Category    string            `bson:"category"`
	ProductID   string            `bson:"product_id"`
	ProductName string            `bson:"product_name"`
	BasePrice   string            `bson:"base_price"`
	Premium     PriceDoc          `bson:"premium"`
	Metadata    map[string]string `bson:"additional_metadata,omitempty"`
	Status      string            `bson:"status"`
	CreatedAt   time.Time         `bson:"created_at"`
	UpdatedAt   time.Time         `bson:"updated_at"`
	ExpiresAt   time.Time         `bson:"expires_at"`

	PurchaseID          string    `bson:"purchase_id,omitempty"`
	PurchaseIDCreatedAt time.Time `bson:"purchase_id_created_at,omitempty"`
}

func toProductDoc(p core.Product) ProductDoc {
	tiers := make([]TierDoc, len(p.Tiers))
	for i, t := range p.Tiers {
		covs := make([]CoverageDoc, len(t.Coverages))
		for j, c := range t.Coverages {
			covs[j] = CoverageDoc{Name: c.Name, Description: c.Description, Limit: c.Limit.StringFixed(2)}
		}
		tiers[i] = TierDoc{
			Name:        t.Name,
			BasePremium: t.BasePremium.StringFixed(2),
			Coverages:   covs,
			Benefits:    t.Benefits,
			Exclusions:  t.Exclusions,
		}
	}
	return ProductDoc{
		ID:          p.ID,
		Provider:    p.Provider,
		Name:        p.Name,
		Category:    string(p.Category),
		BasePremium: p.BasePremium.StringFixed(2),
		Tiers:       tiers,
		Trashed:     p.Trashed,
	}
}

func fromProductDoc(d ProductDoc) core.Product {
	tiers := make([]core.ProductTier, len(d.Tiers))
	for i, t := range d.Tiers {
		covs := make([]core.Coverage, len(t.Coverages))
		for j, c := range t.Coverages {
			covs[j] = core.Coverage{Name: c.Name, Description: c.Description, Limit: parseAmount(c.Limit)}
		}
		tiers[i] = core.ProductTier{
			Name:        t.Name,
			BasePremium: parseAmount(t.BasePremium),
			Coverages:   covs,
			Benefits:    t.Benefits,
			Exclusions:  t.Exclusions,
		}
	}
	return core.Product{
		ID:          d.ID,
		Provider:    d.Provider,
		Name:        d.Name,
		Category:    core.Category(d.Category),
		BasePremium: parseAmount(d.BasePremium),
		Tiers:       tiers,
		Trashed:     d.Trashed,
	}
}

func toQuoteDoc(q core.Quote) QuoteDoc {
	return QuoteDoc{
		QuoteCode:   q.QuoteCode,
		Origin:      string(q.Origin),
		Provider:    q.Provider,
		Category:    string(q.Category),
		ProductID:   q.ProductID,
		ProductName: q.ProductName,
		BasePrice:   q.BasePrice.StringFixed(2),
		Premium: PriceDoc{
			Amount:      q.Premium.Amount.StringFixed(2),
			Description: q.Premium.Description,
			Commission:  q.Premium.Commission.StringFixed(2),
			Discount:    q.Premium.Discount.StringFixed(2),
			Surcharge:   q.Premium.Surcharge.StringFixed(2),
			Currency:    q.Premium.Currency,
			Frequency:   string(q.Premium.Frequency),
			Model:       string(q.Premium.Model),
		},
		Metadata:            q.Metadata,
		Status:              string(q.Status),
		CreatedAt:           q.CreatedAt,
		UpdatedAt:           q.UpdatedAt,
		ExpiresAt:           q.ExpiresAt,
		PurchaseID:          q.PurchaseID,
		PurchaseIDCreatedAt: q.PurchaseIDCreatedAt,
	}
}

func fromQuoteDoc(d QuoteDoc) core.Quote {
	return core.Quote{
		QuoteCode:   d.QuoteCode,
		Origin:      core.Origin(d.Origin),
		Provider:    d.Provider,
		Category:    core.Category(d.Category),
		ProductID:   d.ProductID,
		ProductName: d.ProductName,
		BasePrice:   parseAmount(d.BasePrice),
		Premium: core.Price{
			Amount:      parseAmount(d.Premium.Amount),
			Description: d.Premium.Description,
			Commission:  parseAmount(d.Premium.Commission),
			Discount:    parseAmount(d.Premium.Discount),
			Surcharge:   parseAmount(d.Premium.Surcharge),
			Currency:    d.Premium.Currency,
			Frequency:   core.Frequency(d.Premium.Frequency),
			Model:       core.PricingModel(d.Premium.Model),
		},
		Metadata:            d.Metadata,
		Status:              core.QuoteStatus(d.Status),
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
		ExpiresAt:           d.ExpiresAt,
		PurchaseID:          d.PurchaseID,
		PurchaseIDCreatedAt: d.PurchaseIDCreatedAt,
	}
}

func parseAmount(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
