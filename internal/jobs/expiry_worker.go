package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/superpool/superpool/internal/core"
)

// ExpiryWorker sweeps pending quotes whose validity window has lapsed and
// marks them expired.
type ExpiryWorker struct {
	BaseWorker
	quotes core.QuoteRepo
	clock  func() time.Time
}

// NewExpiryWorker creates a new quote expiry worker.
func NewExpiryWorker(quotes core.QuoteRepo, interval time.Duration, log *slog.Logger) *ExpiryWorker {
	return &ExpiryWorker{
		BaseWorker: NewBaseWorker("quote-expiry", interval, log),
		quotes:     quotes,
		clock:      time.Now,
	}
}

// Start begins the worker polling loop.
func (w *ExpiryWorker) Start(ctx context.Context) {
	w.Poll(ctx, w.sweep)
}

// Name returns the worker name.
func (w *ExpiryWorker) Name() string {
	return w.name
}

// sweep finds lapsed pending quotes (limit 50 per poll) and expires them.
func (w *ExpiryWorker) sweep(ctx context.Context) error {
	now := w.clock()

	quotes, err := w.quotes.ListPendingExpired(ctx, now, 50)
	if err != nil {
		return err
	}

	if len(quotes) == 0 {
		return nil
	}

	w.log.Info("found lapsed quotes", "count", len(quotes))

	for _, q := range quotes {
		q.Status = core.QuoteStatusExpired
		q.UpdatedAt = now

		if err := w.quotes.Update(ctx, q); err != nil {
			w.log.Error("failed to expire quote",
				"quote_code", q.QuoteCode,
				"err", err,
			)
			continue
		}

		w.log.Info("quote expired",
			"quote_code", q.QuoteCode,
			"expired_at", q.ExpiresAt,
		)
	}

	return nil
}
