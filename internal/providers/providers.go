// Package providers enumerates the external insurers the platform can quote
// against. The set is a fixed enum rather than a runtime registry so that a
// misconfigured provider name fails at startup, not mid-request.
package providers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/superpool/superpool/internal/core"
	"github.com/superpool/superpool/internal/providers/heirs"
)

// Kind identifies one supported external provider.
type Kind string

const (
	KindNone  Kind = ""
	KindHeirs Kind = "heirs"
)

// Config carries the provider connection settings from the platform config.
type Config struct {
	Kind    Kind
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// New builds the adapter for the configured provider kind. KindNone yields
// a nil adapter, which the aggregator treats as "no external branch".
func New(cfg Config, catalog core.CatalogRepo, quotes core.QuoteRepo, log *slog.Logger) (core.ExternalAdapter, error) {
	switch cfg.Kind {
	case KindNone:
		return nil, nil
	case KindHeirs:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("provider %q: missing base URL", cfg.Kind)
		}
		client := heirs.NewClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout)
		return heirs.NewAdapter(client, catalog, quotes, log), nil
	default:
		return nil, fmt.Errorf("unsupported external provider %q", cfg.Kind)
	}
}
