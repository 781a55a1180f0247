package mongo

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/superpool/superpool/internal/core"
)

func storedQuote() core.Quote {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return core.Quote{
		QuoteCode:   "SPQ-4F2A9C1B7D3E",
		Origin:      core.OriginInternal,
		Provider:    "Superpool",
		Category:    core.CategoryHome,
		ProductID:   "prod-1",
		ProductName: "HomeSafe Dwelling Cover",
		BasePrice:   decimal.RequireFromString("3500.00"),
		Premium:     core.NewPremium(decimal.RequireFromString("3950.00"), "HomeSafe Dwelling Cover Gold premium"),
		Status:      core.QuoteStatusAccepted,
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   now.AddDate(0, 0, core.QuoteValidityDays),

		PurchaseID:          "PUR-0b8a1c2d",
		PurchaseIDCreatedAt: now,
	}
}

func TestQuoteUpsertFilterPinsOpenRows(t *testing.T) {
	// 1. Only pending rows may be rewritten by a re-rate; the filter is
	// what keeps accepted/declined/expired rows out of the write path.
	f := quoteUpsertFilter("SPQ-4F2A9C1B7D3E")

	assert.Equal(t, "SPQ-4F2A9C1B7D3E", f["_id"])
	assert.Equal(t, string(core.QuoteStatusPending), f["status"])
}

func TestQuoteUpsertSetExcludesLifecycleFields(t *testing.T) {
	doc := toQuoteDoc(storedQuote())
	set := quoteUpsertSet(doc)

	// 1. The lifecycle and handoff fields never ride along on an upsert.
	for _, field := range []string{"status", "created_at", "purchase_id", "purchase_id_created_at"} {
		_, ok := set[field]
		assert.Falsef(t, ok, "upsert $set must not carry %q", field)
	}

	// 2. The rateable fields do.
	assert.Equal(t, doc.Provider, set["provider"])
	assert.Equal(t, doc.BasePrice, set["base_price"])
	assert.Equal(t, doc.Premium, set["premium"])
	assert.Equal(t, doc.ExpiresAt, set["expires_at"])
}

func TestQuoteDocRoundTrip(t *testing.T) {
	q := storedQuote()

	got := fromQuoteDoc(toQuoteDoc(q))

	assert.Equal(t, q.QuoteCode, got.QuoteCode)
	assert.Equal(t, q.Status, got.Status)
	assert.True(t, q.BasePrice.Equal(got.BasePrice))
	assert.True(t, q.Premium.Amount.Equal(got.Premium.Amount))
	assert.Equal(t, q.PurchaseID, got.PurchaseID)
	assert.True(t, q.PurchaseIDCreatedAt.Equal(got.PurchaseIDCreatedAt))
}
