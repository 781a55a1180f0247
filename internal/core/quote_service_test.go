package core

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superpool/superpool/internal/platform/rates"
)

// --- in-memory fakes ---

type fakeCatalog struct {
	mu       sync.Mutex
	products []Product
	listErr  error
}

func (f *fakeCatalog) List(context.Context) ([]Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Product(nil), f.products...), nil
}

func (f *fakeCatalog) ListByCategory(_ context.Context, category Category, providers []string) ([]Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	allowed := make(map[string]bool, len(providers))
	for _, p := range providers {
		allowed[p] = true
	}
	var out []Product
	for _, p := range f.products {
		if p.Category == category && (len(providers) == 0 || allowed[p.Provider]) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalog) ProvidersForCategory(_ context.Context, category Category) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, p := range f.products {
		if p.Category == category && !seen[p.Provider] {
			seen[p.Provider] = true
			out = append(out, p.Provider)
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetByID(_ context.Context, id string) (Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrProductNotFound
}

func (f *fakeCatalog) UpsertByProviderName(_ context.Context, p Product) (Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.products {
		if existing.Provider == p.Provider && existing.Name == p.Name {
			p.ID = existing.ID
			f.products[i] = p
			return p, nil
		}
	}
	p.ID = "prod-" + p.Name
	f.products = append(f.products, p)
	return p, nil
}

func (f *fakeCatalog) SetTrashed(_ context.Context, id string, trashed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.products {
		if f.products[i].ID == id {
			f.products[i].Trashed = trashed
			return nil
		}
	}
	return ErrProductNotFound
}

type fakeQuoteRepo struct {
	mu     sync.Mutex
	quotes map[string]Quote
}

func newFakeQuoteRepo() *fakeQuoteRepo {
	return &fakeQuoteRepo{quotes: make(map[string]Quote)}
}

func (f *fakeQuoteRepo) Upsert(_ context.Context, q Quote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.quotes[q.QuoteCode]; ok {
		if existing.Status.Terminal() {
			return nil
		}
		q.CreatedAt = existing.CreatedAt
		q.PurchaseID = existing.PurchaseID
		q.PurchaseIDCreatedAt = existing.PurchaseIDCreatedAt
	}
	f.quotes[q.QuoteCode] = q
	return nil
}

func (f *fakeQuoteRepo) Get(_ context.Context, quoteCode string) (Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.quotes[quoteCode]
	if !ok {
		return Quote{}, ErrQuoteNotFound
	}
	return q, nil
}

func (f *fakeQuoteRepo) Find(_ context.Context, filter QuoteFilter) ([]Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Quote
	for _, q := range f.quotes {
		if filter.Category != "" && q.Category != filter.Category {
			continue
		}
		if filter.ProductName != "" && q.ProductName != filter.ProductName {
			continue
		}
		if filter.Origin != "" && q.Origin != filter.Origin {
			continue
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuoteCode < out[j].QuoteCode })
	return out, nil
}

func (f *fakeQuoteRepo) Update(_ context.Context, q Quote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.quotes[q.QuoteCode]; !ok {
		return ErrQuoteNotFound
	}
	f.quotes[q.QuoteCode] = q
	return nil
}

func (f *fakeQuoteRepo) ListPendingExpired(_ context.Context, now time.Time, limit int) ([]Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Quote
	for _, q := range f.quotes {
		if q.Status == QuoteStatusPending && q.Expired(now) {
			out = append(out, q)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

type fakeAdapter struct {
	calls   atomic.Int64
	err     error
	persist func(ctx context.Context, in QuoteRequest) error
}

func (f *fakeAdapter) Name() string { return "Fake Assurance" }

func (f *fakeAdapter) FetchAndSaveQuotes(ctx context.Context, in QuoteRequest) error {
	f.calls.Add(1)
	if f.persist != nil {
		if err := f.persist(ctx, in); err != nil {
			return err
		}
	}
	return f.err
}

// --- fixtures ---

func homeProduct() Product {
	return Product{
		ID:       "prod-home-1",
		Provider: "Superpool Underwriting",
		Name:     "HomeSafe Dwelling Cover",
		Category: CategoryHome,
		Tiers: []ProductTier{
			{
				Name:        "Basic",
				BasePremium: decimal.RequireFromString("2000.00"),
			},
			{
				Name:        "Gold",
				BasePremium: decimal.RequireFromString("3500.00"),
				Coverages: []Coverage{
					{Name: "Fire and Allied Perils", Limit: decimal.RequireFromString("15000000.00")},
				},
			},
		},
	}
}

func healthProduct() Product {
	return Product{
		ID:       "prod-health-1",
		Provider: "Superpool Underwriting",
		Name:     "Family Shield Health Plan",
		Category: CategoryHealth,
		Tiers: []ProductTier{
			{Name: "Gold", BasePremium: decimal.RequireFromString("4200.00")},
		},
	}
}

func newTestService(t *testing.T, catalog *fakeCatalog, repo *fakeQuoteRepo, adapter ExternalAdapter) *quoteService {
	t.Helper()
	table, err := rates.Load("")
	require.NoError(t, err)
	rating := NewRatingEngine(table, DefaultRiskAssessors(), nil, testLogger())
	svc := NewQuoteService(catalog, repo, rating, adapter, nil, testLogger())
	return svc.(*quoteService)
}

// --- tests ---

func TestRequestQuote_RiskAdjustedEndToEnd(t *testing.T) {
	catalog := &fakeCatalog{products: []Product{homeProduct()}}
	repo := newFakeQuoteRepo()
	svc := newTestService(t, catalog, repo, nil)

	quotes, err := svc.RequestQuote(context.Background(), QuoteRequest{
		Category: CategoryHome,
		Applicant: Applicant{
			HomeAgeYears: 25,
			HomeValue:    decimal.NewFromInt(2_000_000),
		},
	})
	require.NoError(t, err)
	require.Len(t, quotes, 2) // one per tier

	byTier := map[string]Quote{}
	for _, q := range quotes {
		byTier[q.Metadata["tier_name"]] = q
	}

	gold, ok := byTier["Gold"]
	require.True(t, ok)
	assert.Equal(t, "3500.00", gold.BasePrice.StringFixed(2))
	assert.Equal(t, "3950.00", gold.Premium.Amount.StringFixed(2))
	assert.Equal(t, "450.00", gold.Metadata["risk_cost"])
	assert.Equal(t, "30", gold.Metadata["risk_score"])
	assert.Equal(t, "Basic,Gold", gold.Metadata["available_tiers"])
	assert.Equal(t, "15000000.00", gold.Metadata["coverage:Fire and Allied Perils"])
	assert.Equal(t, OriginInternal, gold.Origin)
	assert.Equal(t, QuoteStatusPending, gold.Status)
	assert.Equal(t, gold.CreatedAt.AddDate(0, 0, QuoteValidityDays), gold.ExpiresAt)

	basic, ok := byTier["Basic"]
	require.True(t, ok)
	assert.Equal(t, "2450.00", basic.Premium.Amount.StringFixed(2))
}

func TestRequestQuote_Idempotent(t *testing.T) {
	catalog := &fakeCatalog{products: []Product{homeProduct()}}
	repo := newFakeQuoteRepo()
	svc := newTestService(t, catalog, repo, nil)

	req := QuoteRequest{Category: CategoryHome}

	first, err := svc.RequestQuote(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.RequestQuote(context.Background(), req)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].QuoteCode, second[i].QuoteCode)
		// Re-running refreshes the price, never duplicates the row.
		assert.True(t, first[i].Premium.Amount.Equal(second[i].Premium.Amount))
	}
	assert.Len(t, repo.quotes, len(first))
}

func TestRequestQuote_RerunKeepsSettledQuotes(t *testing.T) {
	catalog := &fakeCatalog{products: []Product{homeProduct()}}
	repo := newFakeQuoteRepo()
	svc := newTestService(t, catalog, repo, nil)

	req := QuoteRequest{Category: CategoryHome}

	quotes, err := svc.RequestQuote(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	// 1. Accept one tier, leave the other pending, and hand out a
	// purchase id on the pending one.
	accepted, err := svc.Accept(context.Background(), quotes[0].QuoteCode)
	require.NoError(t, err)
	withToken, err := svc.RefreshPurchaseID(context.Background(), quotes[1].QuoteCode)
	require.NoError(t, err)
	require.NotEmpty(t, withToken.PurchaseID)

	// 2. Re-running the same request must not rewind the accepted quote
	// to pending or revoke the live purchase id.
	_, err = svc.RequestQuote(context.Background(), req)
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), accepted.QuoteCode)
	require.NoError(t, err)
	assert.Equal(t, QuoteStatusAccepted, got.Status)

	got, err = svc.Get(context.Background(), withToken.QuoteCode)
	require.NoError(t, err)
	assert.Equal(t, QuoteStatusPending, got.Status)
	assert.Equal(t, withToken.PurchaseID, got.PurchaseID)
	assert.True(t, withToken.PurchaseIDCreatedAt.Equal(got.PurchaseIDCreatedAt))
}

func TestRequestQuote_ExternalFailureIsIsolated(t *testing.T) {
	catalog := &fakeCatalog{products: []Product{homeProduct()}}
	repo := newFakeQuoteRepo()
	adapter := &fakeAdapter{err: errors.New("insurer is down")}
	svc := newTestService(t, catalog, repo, adapter)

	quotes, err := svc.RequestQuote(context.Background(), QuoteRequest{Category: CategoryHome})
	require.NoError(t, err)

	assert.Equal(t, int64(1), adapter.calls.Load())
	require.Len(t, quotes, 2)
	for _, q := range quotes {
		assert.Equal(t, OriginInternal, q.Origin)
	}
}

func TestRequestQuote_ExternalQuotesMerged(t *testing.T) {
	catalog := &fakeCatalog{products: []Product{homeProduct()}}
	repo := newFakeQuoteRepo()
	adapter := &fakeAdapter{}
	adapter.persist = func(ctx context.Context, in QuoteRequest) error {
		now := time.Now()
		return repo.Upsert(ctx, Quote{
			QuoteCode:   "SPQ-EXTERNAL0001",
			Origin:      OriginExternal,
			Provider:    adapter.Name(),
			Category:    in.Category,
			ProductName: "Partner Home Cover",
			BasePrice:   decimal.RequireFromString("2800.00"),
			Premium:     NewPremium(decimal.RequireFromString("2800.00"), "Partner Home Cover premium"),
			Status:      QuoteStatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
			ExpiresAt:   now.AddDate(0, 0, QuoteValidityDays),
		})
	}
	svc := newTestService(t, catalog, repo, adapter)

	quotes, err := svc.RequestQuote(context.Background(), QuoteRequest{Category: CategoryHome})
	require.NoError(t, err)
	require.Len(t, quotes, 3)

	origins := map[Origin]int{}
	for _, q := range quotes {
		origins[q.Origin]++
	}
	assert.Equal(t, 2, origins[OriginInternal])
	assert.Equal(t, 1, origins[OriginExternal])
}

func TestRequestQuote_InternalOnlyCategorySkipsAdapter(t *testing.T) {
	catalog := &fakeCatalog{products: []Product{healthProduct()}}
	repo := newFakeQuoteRepo()
	adapter := &fakeAdapter{}
	svc := newTestService(t, catalog, repo, adapter)

	quotes, err := svc.RequestQuote(context.Background(), QuoteRequest{Category: CategoryHealth})
	require.NoError(t, err)

	assert.Equal(t, int64(0), adapter.calls.Load(), "health is an internal-only line")
	assert.Len(t, quotes, 1)
}

func TestRequestQuote_ValidationErrorPropagates(t *testing.T) {
	svc := newTestService(t, &fakeCatalog{}, newFakeQuoteRepo(), nil)

	_, err := svc.RequestQuote(context.Background(), QuoteRequest{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.RequestQuote(context.Background(), QuoteRequest{Category: "umbrella"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRequestQuote_InternalFailureDegradesToEmpty(t *testing.T) {
	catalog := &fakeCatalog{
		products: []Product{homeProduct()},
		listErr:  errors.New("store unavailable"),
	}
	svc := newTestService(t, catalog, newFakeQuoteRepo(), nil)

	quotes, err := svc.RequestQuote(context.Background(), QuoteRequest{Category: CategoryHome})
	require.NoError(t, err, "a failed branch degrades, it never errors the request")
	assert.Empty(t, quotes)
}

func TestRequestQuote_TrashedProductsAreSkipped(t *testing.T) {
	trashed := homeProduct()
	trashed.Trashed = true
	catalog := &fakeCatalog{products: []Product{trashed}}
	svc := newTestService(t, catalog, newFakeQuoteRepo(), nil)

	quotes, err := svc.RequestQuote(context.Background(), QuoteRequest{Category: CategoryHome})
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestRequestQuote_ProductNameFilter(t *testing.T) {
	other := homeProduct()
	other.ID = "prod-home-2"
	other.Name = "Budget Dwelling Cover"
	catalog := &fakeCatalog{products: []Product{homeProduct(), other}}
	repo := newFakeQuoteRepo()
	svc := newTestService(t, catalog, repo, nil)

	quotes, err := svc.RequestQuote(context.Background(), QuoteRequest{
		Category:    CategoryHome,
		ProductName: "HomeSafe Dwelling Cover",
	})
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	for _, q := range quotes {
		assert.Equal(t, "HomeSafe Dwelling Cover", q.ProductName)
	}
}

func TestRequestQuote_LapsedPendingQuotesFiltered(t *testing.T) {
	catalog := &fakeCatalog{products: []Product{homeProduct()}}
	repo := newFakeQuoteRepo()
	svc := newTestService(t, catalog, repo, nil)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	svc.clock = func() time.Time { return start }

	quotes, err := svc.RequestQuote(context.Background(), QuoteRequest{Category: CategoryHome})
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	// Catalog emptied so the re-request writes nothing fresh; only the
	// stale rows remain, and they are past their validity window now.
	catalog.products = nil
	svc.clock = func() time.Time { return start.AddDate(0, 0, QuoteValidityDays+1) }

	quotes, err = svc.RequestQuote(context.Background(), QuoteRequest{Category: CategoryHome})
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestQuoteLifecycle_AcceptAndDecline(t *testing.T) {
	catalog := &fakeCatalog{products: []Product{homeProduct()}}
	repo := newFakeQuoteRepo()

	var events []string
	table, err := rates.Load("")
	require.NoError(t, err)
	rating := NewRatingEngine(table, DefaultRiskAssessors(), nil, testLogger())
	notify := func(_ context.Context, event string, _ Quote) {
		events = append(events, event)
	}
	svc := NewQuoteService(catalog, repo, rating, nil, notify, testLogger())

	quotes, err := svc.RequestQuote(context.Background(), QuoteRequest{Category: CategoryHome})
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	accepted, err := svc.Accept(context.Background(), quotes[0].QuoteCode)
	require.NoError(t, err)
	assert.Equal(t, QuoteStatusAccepted, accepted.Status)

	declined, err := svc.Decline(context.Background(), quotes[1].QuoteCode)
	require.NoError(t, err)
	assert.Equal(t, QuoteStatusDeclined, declined.Status)

	assert.Equal(t, []string{"quote.accepted", "quote.declined"}, events)

	// Terminal states refuse further transitions.
	_, err = svc.Accept(context.Background(), quotes[0].QuoteCode)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = svc.Decline(context.Background(), quotes[0].QuoteCode)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.Accept(context.Background(), "SPQ-DOESNOTEXIST")
	assert.ErrorIs(t, err, ErrQuoteNotFound)
}

func TestRefreshPurchaseID(t *testing.T) {
	catalog := &fakeCatalog{products: []Product{homeProduct()}}
	repo := newFakeQuoteRepo()
	svc := newTestService(t, catalog, repo, nil)

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.clock = func() time.Time { return now }

	quotes, err := svc.RequestQuote(context.Background(), QuoteRequest{Category: CategoryHome})
	require.NoError(t, err)
	code := quotes[0].QuoteCode

	// 1. First call mints a token.
	q, err := svc.RefreshPurchaseID(context.Background(), code)
	require.NoError(t, err)
	require.NotEmpty(t, q.PurchaseID)
	first := q.PurchaseID

	// 2. Within the window the same token comes back.
	now = now.Add(44 * time.Minute)
	q, err = svc.RefreshPurchaseID(context.Background(), code)
	require.NoError(t, err)
	assert.Equal(t, first, q.PurchaseID)

	// 3. Once the window lapses a fresh token is minted.
	now = now.Add(2 * time.Minute)
	q, err = svc.RefreshPurchaseID(context.Background(), code)
	require.NoError(t, err)
	assert.NotEqual(t, first, q.PurchaseID)

	// 4. Accepted quotes no longer hand out purchase ids.
	_, err = svc.Accept(context.Background(), code)
	require.NoError(t, err)
	_, err = svc.RefreshPurchaseID(context.Background(), code)
	assert.ErrorIs(t, err, ErrInvalidState)
}
