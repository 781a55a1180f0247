package core

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Coverage is a named limit attached to one or more tiers. Reference data,
// immutable once created.
type Coverage struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Limit       decimal.Decimal `json:"limit"`
}

// ProductTier is a named pricing level under a product ("Basic", "Gold").
// Unique per (product, tier name).
type ProductTier struct {
	Name        string          `json:"name"`
	BasePremium decimal.Decimal `json:"base_premium"`
	Coverages   []Coverage      `json:"coverages,omitempty"`
	Benefits    string          `json:"benefits,omitempty"`
	Exclusions  string          `json:"exclusions,omitempty"`
}

// Product is an insurance offering. Immutable once created except for
// trash/restore soft deletion.
type Product struct {
	ID          string          `json:"id"`
	Provider    string          `json:"provider"`
	Name        string          `json:"name"`
	Category    Category        `json:"category"`
	BasePremium decimal.Decimal `json:"base_premium"` // optional fixed base; zero means unset
	Tiers       []ProductTier   `json:"tiers,omitempty"`
	Trashed     bool            `json:"trashed,omitempty"`
}

// CatalogRepo is the product/tier catalog boundary. ListByCategory returns
// products with tiers and coverages already populated so rating never goes
// back to the store per tier.
type CatalogRepo interface {
	List(ctx context.Context) ([]Product, error)
	ListByCategory(ctx context.Context, category Category, providers []string) ([]Product, error)
	ProvidersForCategory(ctx context.Context, category Category) ([]string, error)
	GetByID(ctx context.Context, id string) (Product, error)
	// UpsertByProviderName is the external-path get-or-create: a provider's
	// offer keeps one catalog row keyed by (provider, name).
	UpsertByProviderName(ctx context.Context, p Product) (Product, error)
	SetTrashed(ctx context.Context, id string, trashed bool) error
}

func (p Product) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: missing product name", ErrValidation)
	}
	if p.Provider == "" {
		return fmt.Errorf("%w: missing provider", ErrValidation)
	}
	if !knownCategories[p.Category] {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, p.Category)
	}
	for _, t := range p.Tiers {
		if t.Name == "" {
			return fmt.Errorf("%w: tier missing name on product %q", ErrValidation, p.Name)
		}
		if t.BasePremium.IsNegative() {
			return fmt.Errorf("%w: tier %q has negative base premium", ErrValidation, t.Name)
		}
	}
	return nil
}

// Tier looks a tier up by name.
func (p Product) Tier(name string) (ProductTier, bool) {
	for _, t := range p.Tiers {
		if t.Name == name {
			return t, true
		}
	}
	return ProductTier{}, false
}

var (
	ErrProductNotFound = fmt.Errorf("%w: product not found", ErrNotFound)
)
