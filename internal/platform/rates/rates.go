// Package rates holds the flat-fee base premium schedule keyed by
// (category, tier). The table is immutable after Load: a new schedule ships
// as a new versioned file, never as an in-place mutation.
package rates

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

//go:embed defaults.json
var defaultSchedule []byte

type scheduleFile struct {
	Version string `json:"version"`
	Fees    []struct {
		Category string `json:"category"`
		Tier     string `json:"tier"`
		Amount   string `json:"amount"`
	} `json:"fees"`
}

type key struct {
	category string
	tier     string
}

// Table is a read-only fee schedule.
type Table struct {
	version string
	fees    map[key]decimal.Decimal
}

// Load builds the table from the embedded defaults, or from the JSON file
// at path when one is configured.
func Load(path string) (*Table, error) {
	raw := defaultSchedule
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("rates: read %s: %w", path, err)
		}
		raw = b
	}

	var f scheduleFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("rates: parse schedule: %w", err)
	}
	if f.Version == "" {
		return nil, fmt.Errorf("rates: schedule missing version")
	}

	t := &Table{version: f.Version, fees: make(map[key]decimal.Decimal, len(f.Fees))}
	for _, fee := range f.Fees {
		amount, err := decimal.NewFromString(fee.Amount)
		if err != nil {
			return nil, fmt.Errorf("rates: fee %s/%s: bad amount %q: %w",
				fee.Category, fee.Tier, fee.Amount, err)
		}
		t.fees[normKey(fee.Category, fee.Tier)] = amount
	}
	return t, nil
}

// Version identifies the loaded schedule.
func (t *Table) Version() string { return t.version }

// Lookup returns the flat fee for a category+tier pair, if the schedule
// carries one. Callers fall back to the tier's own base premium otherwise.
func (t *Table) Lookup(category, tier string) (decimal.Decimal, bool) {
	fee, ok := t.fees[normKey(category, tier)]
	return fee, ok
}

func normKey(category, tier string) key {
	return key{
		category: strings.ToLower(strings.TrimSpace(category)),
		tier:     strings.ToLower(strings.TrimSpace(tier)),
	}
}
