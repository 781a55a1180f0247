package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superpool/superpool/internal/core"
)

type sweepRepo struct {
	mu        sync.Mutex
	quotes    map[string]core.Quote
	updateErr map[string]error
}

func newSweepRepo(quotes ...core.Quote) *sweepRepo {
	r := &sweepRepo{quotes: make(map[string]core.Quote), updateErr: make(map[string]error)}
	for _, q := range quotes {
		r.quotes[q.QuoteCode] = q
	}
	return r
}

func (r *sweepRepo) Upsert(_ context.Context, q core.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quotes[q.QuoteCode] = q
	return nil
}

func (r *sweepRepo) Get(_ context.Context, code string) (core.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.quotes[code]
	if !ok {
		return core.Quote{}, core.ErrQuoteNotFound
	}
	return q, nil
}

func (r *sweepRepo) Find(context.Context, core.QuoteFilter) ([]core.Quote, error) {
	return nil, nil
}

func (r *sweepRepo) Update(_ context.Context, q core.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.updateErr[q.QuoteCode]; err != nil {
		return err
	}
	r.quotes[q.QuoteCode] = q
	return nil
}

func (r *sweepRepo) ListPendingExpired(_ context.Context, now time.Time, limit int) ([]core.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []core.Quote
	for _, q := range r.quotes {
		if q.Status == core.QuoteStatusPending && q.Expired(now) {
			out = append(out, q)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func TestExpiryWorker_Sweep(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	lapsed := core.Quote{
		QuoteCode: "SPQ-LAPSED000001",
		Status:    core.QuoteStatusPending,
		ExpiresAt: now.Add(-time.Hour),
	}
	fresh := core.Quote{
		QuoteCode: "SPQ-FRESH0000001",
		Status:    core.QuoteStatusPending,
		ExpiresAt: now.Add(24 * time.Hour),
	}
	accepted := core.Quote{
		QuoteCode: "SPQ-ACCEPTED0001",
		Status:    core.QuoteStatusAccepted,
		ExpiresAt: now.Add(-time.Hour),
	}

	repo := newSweepRepo(lapsed, fresh, accepted)
	w := NewExpiryWorker(repo, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	w.clock = func() time.Time { return now }

	require.NoError(t, w.sweep(context.Background()))

	got, err := repo.Get(context.Background(), lapsed.QuoteCode)
	require.NoError(t, err)
	assert.Equal(t, core.QuoteStatusExpired, got.Status)
	assert.Equal(t, now, got.UpdatedAt)

	got, _ = repo.Get(context.Background(), fresh.QuoteCode)
	assert.Equal(t, core.QuoteStatusPending, got.Status, "unexpired quotes are untouched")

	got, _ = repo.Get(context.Background(), accepted.QuoteCode)
	assert.Equal(t, core.QuoteStatusAccepted, got.Status, "only pending quotes are swept")
}

func TestExpiryWorker_UpdateFailureSkipsQuote(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	stuck := core.Quote{
		QuoteCode: "SPQ-STUCK0000001",
		Status:    core.QuoteStatusPending,
		ExpiresAt: now.Add(-time.Hour),
	}
	ok := core.Quote{
		QuoteCode: "SPQ-OK0000000001",
		Status:    core.QuoteStatusPending,
		ExpiresAt: now.Add(-time.Hour),
	}

	repo := newSweepRepo(stuck, ok)
	repo.updateErr[stuck.QuoteCode] = errors.New("write conflict")

	w := NewExpiryWorker(repo, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	w.clock = func() time.Time { return now }

	require.NoError(t, w.sweep(context.Background()), "a single failed update never fails the sweep")

	got, _ := repo.Get(context.Background(), ok.QuoteCode)
	assert.Equal(t, core.QuoteStatusExpired, got.Status)

	got, _ = repo.Get(context.Background(), stuck.QuoteCode)
	assert.Equal(t, core.QuoteStatusPending, got.Status)
}
