package dynamo

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/superpool/superpool/internal/core"
)

func TestCarryForwardKeepsPurchaseHandoff(t *testing.T) {
	issued := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	existing := core.Quote{
		QuoteCode:           "SPQ-4F2A9C1B7D3E",
		Status:              core.QuoteStatusPending,
		CreatedAt:           issued,
		PurchaseID:          "PUR-0b8a1c2d",
		PurchaseIDCreatedAt: issued,
	}

	// 1. A re-rate of the same key carries a fresher premium but must not
	// disturb the first-write timestamp or a live payment handoff.
	rerated := core.Quote{
		QuoteCode: "SPQ-4F2A9C1B7D3E",
		Status:    core.QuoteStatusPending,
		Premium:   core.NewPremium(decimal.RequireFromString("3950.00"), "re-rated premium"),
		CreatedAt: issued.Add(10 * time.Minute),
		UpdatedAt: issued.Add(10 * time.Minute),
	}

	got := carryForward(rerated, existing)

	assert.True(t, existing.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, "PUR-0b8a1c2d", got.PurchaseID)
	assert.True(t, issued.Equal(got.PurchaseIDCreatedAt))

	// 2. Everything else is the new write.
	assert.True(t, rerated.Premium.Amount.Equal(got.Premium.Amount))
	assert.True(t, rerated.UpdatedAt.Equal(got.UpdatedAt))
}

func TestQuoteItemRoundTripKeepsPurchaseHandoff(t *testing.T) {
	issued := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	q := core.Quote{
		QuoteCode:           "SPQ-4F2A9C1B7D3E",
		Origin:              core.OriginInternal,
		Provider:            "Superpool",
		Category:            core.CategoryHome,
		ProductName:         "HomeSafe Dwelling Cover",
		BasePrice:           decimal.RequireFromString("3500.00"),
		Premium:             core.NewPremium(decimal.RequireFromString("3950.00"), "HomeSafe Dwelling Cover Gold premium"),
		Status:              core.QuoteStatusAccepted,
		CreatedAt:           issued,
		UpdatedAt:           issued,
		ExpiresAt:           issued.AddDate(0, 0, core.QuoteValidityDays),
		PurchaseID:          "PUR-0b8a1c2d",
		PurchaseIDCreatedAt: issued,
	}

	got := quoteItemFromCore(q).ToCore()

	assert.Equal(t, core.QuoteStatusAccepted, got.Status)
	assert.Equal(t, "PUR-0b8a1c2d", got.PurchaseID)
	assert.True(t, issued.Equal(got.PurchaseIDCreatedAt))
	assert.True(t, q.Premium.Amount.Equal(got.Premium.Amount))
}
