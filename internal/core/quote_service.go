package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/superpool/superpool/internal/platform/ids"
)

// ExternalAdapter is one external insurer's quote pipeline: it fetches the
// provider's offers for a request and persists them itself. The aggregator
// re-reads the repository afterwards, so there is no direct return value.
type ExternalAdapter interface {
	Name() string
	FetchAndSaveQuotes(ctx context.Context, in QuoteRequest) error
}

// NotifyFunc is the post-condition notification hook. It runs after a
// lifecycle transition commits; its failure never rolls the quote back.
type NotifyFunc func(ctx context.Context, event string, q Quote)

// QuoteService is the quote aggregation and lifecycle surface.
type QuoteService interface {
	// RequestQuote fans the request out to internal rating and the
	// eligible external provider, tolerates either branch failing, and
	// returns the full persisted quote set for the request's filter.
	RequestQuote(ctx context.Context, in QuoteRequest) ([]Quote, error)

	Get(ctx context.Context, quoteCode string) (Quote, error)
	Accept(ctx context.Context, quoteCode string) (Quote, error)
	Decline(ctx context.Context, quoteCode string) (Quote, error)

	// RefreshPurchaseID reissues the payment handoff token once the
	// previous one has lapsed. A still-valid token is returned unchanged.
	RefreshPurchaseID(ctx context.Context, quoteCode string) (Quote, error)
}

type quoteService struct {
	catalog  CatalogRepo
	quotes   QuoteRepo
	rating   *RatingEngine
	external ExternalAdapter // nil when no external provider is configured
	notify   NotifyFunc
	clock    func() time.Time
	log      *slog.Logger
}

func NewQuoteService(catalog CatalogRepo, quotes QuoteRepo, rating *RatingEngine, external ExternalAdapter, notify NotifyFunc, log *slog.Logger) QuoteService {
	return &quoteService{
		catalog:  catalog,
		quotes:   quotes,
		rating:   rating,
		external: external,
		notify:   notify,
		clock:    time.Now,
		log:      log,
	}
}

func (s *quoteService) RequestQuote(ctx context.Context, in QuoteRequest) ([]Quote, error) {
	// 1) validate; this is the only error that reaches the caller
	if err := in.Validate(); err != nil {
		return nil, err
	}

	// 2) eligibility
	providers, err := s.catalog.ProvidersForCategory(ctx, in.Category)
	if err != nil {
		// Treated like a failed internal branch below: log and degrade.
		s.log.Error("internal eligibility lookup failed",
			"category", in.Category, "err", err)
		providers = nil
	}
	_, externalEligible := in.Category.ExternalClass()
	externalEligible = externalEligible && s.external != nil

	// 3) fixed two-branch join: internal rating and external fetch run
	// concurrently, each branch's failure captured, never propagated.
	// The external branch is only spawned when the category is eligible.
	var (
		wg          sync.WaitGroup
		internalErr error
		externalErr error
	)

	if len(providers) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			internalErr = s.rateInternal(ctx, in, providers)
		}()
	}

	if externalEligible {
		wg.Add(1)
		go func() {
			defer wg.Done()
			externalErr = s.external.FetchAndSaveQuotes(ctx, in)
		}()
	}
	wg.Wait()

	// 4) partial aggregation is logged per branch so an outage is
	// distinguishable from legitimate empty eligibility
	if internalErr != nil {
		s.log.Error("partial aggregation: internal rating branch failed",
			"category", in.Category, "err", internalErr)
	}
	if externalErr != nil {
		s.log.Error("partial aggregation: external provider branch failed",
			"provider", s.external.Name(), "category", in.Category, "err", externalErr)
	}

	// 5) read-your-writes: surface exactly what is durably persisted
	found, err := s.quotes.Find(ctx, QuoteFilter{
		Category:    in.Category,
		ProductName: in.ProductName,
	})
	if err != nil {
		s.log.Error("quote read-back failed", "category", in.Category, "err", err)
		return []Quote{}, nil
	}

	// Drop quotes that have passively lapsed since they were written.
	now := s.clock()
	valid := found[:0]
	for _, q := range found {
		if q.Status == QuoteStatusPending && q.Expired(now) {
			continue
		}
		valid = append(valid, q)
	}
	return valid, nil
}

// rateInternal prices every tier of every matching catalog product and
// upserts one quote per product×tier. Tier-level rating or persistence
// failures skip that tier only.
func (s *quoteService) rateInternal(ctx context.Context, in QuoteRequest, providers []string) error {
	products, err := s.catalog.ListByCategory(ctx, in.Category, providers)
	if err != nil {
		return fmt.Errorf("catalog list %s: %w", in.Category, err)
	}

	now := s.clock()
	for _, p := range products {
		if p.Trashed {
			continue
		}
		if in.ProductName != "" && p.Name != in.ProductName {
			continue
		}

		tierNames := make([]string, len(p.Tiers))
		for i, t := range p.Tiers {
			tierNames[i] = t.Name
		}

		for _, tier := range p.Tiers {
			breakdown, err := s.rating.RateTier(p, tier, in.Applicant)
			if err != nil {
				s.log.Warn("tier rating failed",
					"provider", p.Provider, "product", p.Name, "tier", tier.Name, "err", err)
				continue
			}

			q := s.buildInternalQuote(p, tier, tierNames, breakdown, now)
			if err := s.quotes.Upsert(ctx, q); err != nil {
				s.log.Warn("quote persist failed",
					"quote_code", q.QuoteCode, "provider", p.Provider, "tier", tier.Name, "err", err)
			}
		}
	}
	return nil
}

func (s *quoteService) buildInternalQuote(p Product, tier ProductTier, tierNames []string, b PremiumBreakdown, now time.Time) Quote {
	meta := map[string]string{
		"tier_name":       tier.Name,
		"available_tiers": strings.Join(tierNames, ","),
		"risk_cost":       b.RiskCost.StringFixed(2),
	}
	if b.RiskScore > 0 {
		meta["risk_score"] = fmt.Sprintf("%d", b.RiskScore)
	}
	for _, c := range tier.Coverages {
		meta["coverage:"+c.Name] = c.Limit.StringFixed(2)
	}

	return Quote{
		QuoteCode:   ids.QuoteCode("internal", p.ID, p.Provider, tier.Name),
		Origin:      OriginInternal,
		Provider:    p.Provider,
		Category:    p.Category,
		ProductID:   p.ID,
		ProductName: p.Name,
		BasePrice:   b.Base,
		Premium:     NewPremium(b.Total, fmt.Sprintf("%s %s premium", p.Name, tier.Name)),
		Metadata:    meta,
		Status:      QuoteStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   now.AddDate(0, 0, QuoteValidityDays),
	}
}

func (s *quoteService) Get(ctx context.Context, quoteCode string) (Quote, error) {
	if quoteCode == "" {
		return Quote{}, fmt.Errorf("%w: missing quote code", ErrValidation)
	}
	return s.quotes.Get(ctx, quoteCode)
}

func (s *quoteService) Accept(ctx context.Context, quoteCode string) (Quote, error) {
	return s.transition(ctx, quoteCode, QuoteStatusAccepted, "quote.accepted")
}

func (s *quoteService) Decline(ctx context.Context, quoteCode string) (Quote, error) {
	return s.transition(ctx, quoteCode, QuoteStatusDeclined, "quote.declined")
}

func (s *quoteService) transition(ctx context.Context, quoteCode string, next QuoteStatus, event string) (Quote, error) {
	q, err := s.Get(ctx, quoteCode)
	if err != nil {
		return Quote{}, err
	}

	now := s.clock()
	if q.Expired(now) {
		return Quote{}, fmt.Errorf("%w: quote %s expired", ErrInvalidState, quoteCode)
	}
	if !q.Status.CanTransitionTo(next) {
		return Quote{}, fmt.Errorf("%w: cannot move quote from %s to %s",
			ErrInvalidState, q.Status, next)
	}

	q.Status = next
	q.UpdatedAt = now
	if err := s.quotes.Update(ctx, q); err != nil {
		return Quote{}, err
	}

	if s.notify != nil {
		s.notify(ctx, event, q)
	}
	return q, nil
}

func (s *quoteService) RefreshPurchaseID(ctx context.Context, quoteCode string) (Quote, error) {
	q, err := s.Get(ctx, quoteCode)
	if err != nil {
		return Quote{}, err
	}

	now := s.clock()
	if q.Expired(now) {
		return Quote{}, fmt.Errorf("%w: quote %s expired", ErrInvalidState, quoteCode)
	}
	if q.Status != QuoteStatusPending {
		return Quote{}, fmt.Errorf("%w: quote %s is %s", ErrInvalidState, quoteCode, q.Status)
	}
	if q.PurchaseIDValid(now) {
		return q, nil
	}

	q.PurchaseID = ids.PurchaseID()
	q.PurchaseIDCreatedAt = now
	q.UpdatedAt = now
	if err := s.quotes.Update(ctx, q); err != nil {
		return Quote{}, err
	}
	return q, nil
}
