// Package ids generates platform identifiers: random row ids, the
// prefixed deterministic quote codes that make quote upserts idempotent,
// and short-lived purchase ids.
package ids

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// New returns a random identifier for rows without a natural key.
func New() string {
	return uuid.NewString()
}

// QuoteCode derives the stable, prefixed code for a quote from its natural
// key parts (internal: product, provider, tier; external: provider product
// id). Equal inputs always yield the same code, so re-running a request
// lands on the same row.
func QuoteCode(parts ...string) string {
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return "SPQ-" + strings.ToUpper(hex.EncodeToString(sum[:])[:12])
}

// PurchaseID returns the token handed to payment processors. It is random
// by design: every regeneration invalidates the previous handoff.
func PurchaseID() string {
	return "PUR-" + uuid.NewString()
}
