// Package heirs integrates Heirs Assurance, the platform's external
// insurer: it lists the insurer's sub-products for a category, fetches
// product info and a rated quote per sub-product concurrently, and persists
// the normalized offers. One sub-product failing never aborts the batch.
package heirs

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/superpool/superpool/internal/core"
	"github.com/superpool/superpool/internal/platform/ids"
)

// ProviderName is the denormalized provider string written on every quote
// this adapter produces.
const ProviderName = "Heirs Assurance"

// categoryToClass translates the platform's category vocabulary into the
// insurer's. Unknown categories pass through unchanged: best effort, the
// insurer simply returns no sub-products for a class it doesn't know.
var categoryToClass = map[core.Category]string{
	core.CategoryAuto:             string(core.ClassMotor),
	core.CategoryHome:             string(core.ClassHomeProtect),
	core.CategoryGadget:           string(core.ClassDevice),
	core.CategoryTravel:           string(core.ClassTravel),
	core.CategoryPersonalAccident: string(core.ClassPersonalAccident),
	core.CategoryCargo:            string(core.ClassMarineCargo),
}

// classToCategory is the reverse direction, used when normalizing offers.
var classToCategory = func() map[string]core.Category {
	m := make(map[string]core.Category, len(categoryToClass))
	for cat, class := range categoryToClass {
		m[class] = cat
	}
	return m
}()

// Adapter implements core.ExternalAdapter for Heirs Assurance.
type Adapter struct {
	client  *Client
	catalog core.CatalogRepo
	quotes  core.QuoteRepo
	clock   func() time.Time
	log     *slog.Logger
}

func NewAdapter(client *Client, catalog core.CatalogRepo, quotes core.QuoteRepo, log *slog.Logger) *Adapter {
	return &Adapter{
		client:  client,
		catalog: catalog,
		quotes:  quotes,
		clock:   time.Now,
		log:     log.With("provider", ProviderName),
	}
}

func (a *Adapter) Name() string { return ProviderName }

// FetchAndSaveQuotes lists the insurer's sub-products for the request's
// category and fans out one fetch-normalize-persist pipeline per
// sub-product. Individual pipelines swallow their own failures (logged with
// sub-product context); only the initial listing can fail the branch.
func (a *Adapter) FetchAndSaveQuotes(ctx context.Context, in core.QuoteRequest) error {
	class := MapCategory(in.Category)

	params := url.Values{}
	params.Set("class", class)
	var list subProductList
	if err := a.client.Get(ctx, "/products", params, &list); err != nil {
		return fmt.Errorf("list sub-products for class %q: %w", class, err)
	}

	if len(list.Data) == 0 {
		a.log.Info("no sub-products for class", "class", class)
		return nil
	}

	// All sub-products go out in one batch; the two calls per sub-product
	// (info + rated quote) run concurrently inside each pipeline.
	g, ctx := errgroup.WithContext(ctx)
	for _, sub := range list.Data {
		sub := sub
		g.Go(func() error {
			if err := a.processSubProduct(ctx, class, sub); err != nil {
				a.log.Warn("sub-product skipped",
					"class", class, "sub_product", sub.ProductID, "err", err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (a *Adapter) processSubProduct(ctx context.Context, class string, sub subProduct) error {
	var (
		info  productInfoResponse
		rated quoteResponse
	)

	fetch, ctx := errgroup.WithContext(ctx)
	fetch.Go(func() error {
		params := url.Values{}
		params.Set("productId", sub.ProductID)
		return a.client.Get(ctx, "/products/info", params, &info)
	})
	fetch.Go(func() error {
		return a.client.Post(ctx, "/quotes", quoteRequestBody{
			ProductID:    sub.ProductID,
			ProductClass: class,
		}, &rated)
	})
	if err := fetch.Wait(); err != nil {
		return err
	}

	premium, err := decimal.NewFromString(rated.Data.Premium)
	if err != nil {
		return fmt.Errorf("bad premium %q: %w", rated.Data.Premium, err)
	}

	return a.persist(ctx, class, sub, info.Data, rated, premium)
}

func (a *Adapter) persist(ctx context.Context, class string, sub subProduct, info productInfo, rated quoteResponse, premium decimal.Decimal) error {
	category, ok := classToCategory[class]
	if !ok {
		category = core.CategoryOther
	}

	// Get-or-create the catalog row for this external offer.
	product, err := a.catalog.UpsertByProviderName(ctx, core.Product{
		Provider: ProviderName,
		Name:     sub.ProductName,
		Category: category,
	})
	if err != nil {
		return fmt.Errorf("upsert product %q: %w", sub.ProductName, err)
	}

	now := a.clock()
	meta := map[string]string{
		"external_product_id": sub.ProductID,
		"product_info":        info.Description,
	}
	if rated.Data.Contribution != "" {
		meta["contribution"] = rated.Data.Contribution
	}
	if info.PolicyTerms != "" {
		meta["policy_terms"] = info.PolicyTerms
	}

	currency := rated.Data.Currency
	if currency == "" {
		currency = core.DefaultCurrency
	}

	q := core.Quote{
		QuoteCode:   ids.QuoteCode("external", ProviderName, sub.ProductID),
		Origin:      core.OriginExternal,
		Provider:    ProviderName,
		Category:    category,
		ProductID:   product.ID,
		ProductName: sub.ProductName,
		BasePrice:   premium.Round(2),
		Premium: core.Price{
			Amount:      premium.Round(2),
			Description: fmt.Sprintf("%s %s premium", ProviderName, sub.ProductName),
			Currency:    currency,
			Frequency:   core.FrequencyAnnual,
			Model:       core.PricingDynamic,
		},
		Metadata:  meta,
		Status:    core.QuoteStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.AddDate(0, 0, core.QuoteValidityDays),
	}

	if err := a.quotes.Upsert(ctx, q); err != nil {
		return fmt.Errorf("upsert quote %s: %w", q.QuoteCode, err)
	}
	return nil
}

// MapCategory maps a platform category to the insurer's product class,
// passing unknown categories through unchanged.
func MapCategory(c core.Category) string {
	if class, ok := categoryToClass[c]; ok {
		return class
	}
	return string(c)
}
