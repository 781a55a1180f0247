package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuote_PurchaseIDValid(t *testing.T) {
	issued := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	q := Quote{PurchaseID: "PUR-abc", PurchaseIDCreatedAt: issued}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"just issued", issued, true},
		{"one second before the window closes", issued.Add(45*time.Minute - time.Second), true},
		{"exactly at the window close", issued.Add(45 * time.Minute), false},
		{"after the window", issued.Add(46 * time.Minute), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, q.PurchaseIDValid(tt.now))
		})
	}

	t.Run("no purchase id is never valid", func(t *testing.T) {
		assert.False(t, Quote{}.PurchaseIDValid(issued))
	})
}

func TestQuote_Expired(t *testing.T) {
	created := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	q := Quote{ExpiresAt: created.AddDate(0, 0, QuoteValidityDays)}

	assert.False(t, q.Expired(created))
	assert.False(t, q.Expired(q.ExpiresAt.Add(-time.Second)))
	assert.True(t, q.Expired(q.ExpiresAt))
	assert.True(t, q.Expired(q.ExpiresAt.Add(time.Hour)))

	t.Run("zero expiry never lapses", func(t *testing.T) {
		assert.False(t, Quote{}.Expired(created.AddDate(10, 0, 0)))
	})
}

func TestQuoteStatus_CanTransitionTo(t *testing.T) {
	terminal := []QuoteStatus{
		QuoteStatusAccepted, QuoteStatusDeclined, QuoteStatusExpired, QuoteStatusCancelled,
	}

	for _, next := range terminal {
		assert.True(t, QuoteStatusPending.CanTransitionTo(next), "pending -> %s", next)
	}

	// Terminal states are final.
	for _, from := range terminal {
		for _, next := range append(terminal, QuoteStatusPending) {
			assert.False(t, from.CanTransitionTo(next), "%s -> %s", from, next)
		}
	}

	assert.False(t, QuoteStatusPending.CanTransitionTo(QuoteStatusPending))
}

func TestQuoteRequest_Validate(t *testing.T) {
	assert.NoError(t, QuoteRequest{Category: CategoryHealth}.Validate())
	assert.ErrorIs(t, QuoteRequest{}.Validate(), ErrValidation)
	assert.ErrorIs(t, QuoteRequest{Category: "umbrella"}.Validate(), ErrValidation)
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		raw  string
		want Category
	}{
		{"auto", CategoryAuto},
		{"Health", CategoryHealth},
		{"  travel  ", CategoryTravel},
		{"personal accident", CategoryPersonalAccident},
		{"personal-accident", CategoryPersonalAccident},
	}
	for _, tt := range tests {
		got, err := ParseCategory(tt.raw)
		assert.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseCategory("umbrella")
	assert.ErrorIs(t, err, ErrValidation)
}
