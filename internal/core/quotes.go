package core

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Origin string

const (
	OriginInternal Origin = "internal"
	OriginExternal Origin = "external"
)

type QuoteStatus string

const (
	QuoteStatusPending   QuoteStatus = "pending"
	QuoteStatusAccepted  QuoteStatus = "accepted"
	QuoteStatusDeclined  QuoteStatus = "declined"
	QuoteStatusExpired   QuoteStatus = "expired"
	QuoteStatusCancelled QuoteStatus = "cancelled"
)

const (
	// QuoteValidityDays is the default quote lifetime when no explicit
	// expiry is supplied.
	QuoteValidityDays = 30

	// PurchaseIDTTL bounds the payment-processor handoff window. Callers
	// must request a fresh purchase id once it lapses.
	PurchaseIDTTL = 45 * time.Minute
)

// Quote is the central aggregate: one priced offer for one product, either
// rated internally per tier or normalized from an external insurer.
//
// Provider is a plain string, not a catalog reference. External provider
// identity is looser than the internal provider roster, so the name is
// denormalized on purpose.
type Quote struct {
	QuoteCode   string            `json:"quote_code"`
	Origin      Origin            `json:"origin"`
	Provider    string            `json:"provider"`
	Category    Category          `json:"category"`
	ProductID   string            `json:"product_id"`
	ProductName string            `json:"product_name"`
	BasePrice   decimal.Decimal   `json:"base_price"`
	Premium     Price             `json:"premium"`
	Metadata    map[string]string `json:"additional_metadata,omitempty"`
	Status      QuoteStatus       `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`

	PurchaseID          string    `json:"purchase_id,omitempty"`
	PurchaseIDCreatedAt time.Time `json:"purchase_id_created_at,omitempty"`
}

// PurchaseIDValid reports whether the current purchase id can still be
// handed to a payment processor at the given instant.
func (q Quote) PurchaseIDValid(now time.Time) bool {
	if q.PurchaseID == "" {
		return false
	}
	return now.Before(q.PurchaseIDCreatedAt.Add(PurchaseIDTTL))
}

// Expired reports passive expiry; there is no guarantee a sweep has
// flipped Status yet.
func (q Quote) Expired(now time.Time) bool {
	return !q.ExpiresAt.IsZero() && !now.Before(q.ExpiresAt)
}

// Terminal reports whether the status admits no further transitions.
func (s QuoteStatus) Terminal() bool {
	return s != QuoteStatusPending
}

// CanTransitionTo restricts terminal moves to quotes that are still open.
func (s QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	if s.Terminal() {
		return false
	}
	switch next {
	case QuoteStatusAccepted, QuoteStatusDeclined, QuoteStatusExpired, QuoteStatusCancelled:
		return true
	}
	return false
}

// QuoteFilter narrows Find. Zero values match everything.
type QuoteFilter struct {
	Category    Category
	ProductName string
	Origin      Origin
}

// QuoteRepo is the persistence boundary for quotes.
//
// Upsert is idempotent on QuoteCode: re-running a request must land on the
// same rows, and concurrent upserts for different codes never interfere.
// Last writer wins for the same code while the row is still pending; a row
// in a terminal status is left untouched, and the purchase handoff fields
// only ever move through Update.
type QuoteRepo interface {
	Upsert(ctx context.Context, q Quote) error
	Get(ctx context.Context, quoteCode string) (Quote, error)
	Find(ctx context.Context, f QuoteFilter) ([]Quote, error)
	Update(ctx context.Context, q Quote) error
	// ListPendingExpired feeds the expiry sweeper.
	ListPendingExpired(ctx context.Context, now time.Time, limit int) ([]Quote, error)
}

// QuoteRequest is the caller-supplied input to quote aggregation.
type QuoteRequest struct {
	Category          Category  `json:"category"`
	ProductName       string    `json:"product_name,omitempty"`
	CoveragePreferred []string  `json:"coverage_preferences,omitempty"`
	Applicant         Applicant `json:"applicant,omitempty"`
}

// Applicant carries the risk inputs the per-category assessors read. Only
// the fields relevant to the requested category need to be set.
type Applicant struct {
	Age        int                `json:"age,omitempty"`
	Conditions []MedicalCondition `json:"preexisting_conditions,omitempty"`

	HomeAgeYears int             `json:"home_age_years,omitempty"`
	HomeValue    decimal.Decimal `json:"home_value,omitempty"`

	Destination string `json:"destination,omitempty"`
}

type MedicalCondition struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
}

func (r QuoteRequest) Validate() error {
	if r.Category == "" {
		return fmt.Errorf("%w: missing category", ErrValidation)
	}
	if !knownCategories[r.Category] {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, r.Category)
	}
	return nil
}

var (
	ErrQuoteNotFound = fmt.Errorf("%w: quote not found", ErrNotFound)
)
