package ids

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoteCode_Deterministic(t *testing.T) {
	a := QuoteCode("internal", "prod-1", "Superpool Underwriting", "Gold")
	b := QuoteCode("internal", "prod-1", "Superpool Underwriting", "Gold")
	assert.Equal(t, a, b)

	assert.True(t, strings.HasPrefix(a, "SPQ-"))
	assert.Len(t, a, len("SPQ-")+12)
	assert.Equal(t, strings.ToUpper(a), a)
}

func TestQuoteCode_DistinctInputs(t *testing.T) {
	seen := map[string]bool{
		QuoteCode("internal", "prod-1", "Superpool Underwriting", "Gold"):  true,
		QuoteCode("internal", "prod-1", "Superpool Underwriting", "Basic"): true,
		QuoteCode("internal", "prod-2", "Superpool Underwriting", "Gold"):  true,
		QuoteCode("external", "Heirs Assurance", "HA-10"):                  true,
	}
	assert.Len(t, seen, 4)

	// The separator keeps adjacent parts from gluing into the same key.
	assert.NotEqual(t, QuoteCode("ab", "c"), QuoteCode("a", "bc"))
}

func TestPurchaseID_Random(t *testing.T) {
	a := PurchaseID()
	b := PurchaseID()
	assert.True(t, strings.HasPrefix(a, "PUR-"))
	assert.NotEqual(t, a, b)
}
