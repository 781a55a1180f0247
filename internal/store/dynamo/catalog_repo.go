package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"

	"github.com/superpool/superpool/internal/core"
	"github.com/superpool/superpool/internal/platform/ids"
)

// Monetary fields are persisted as canonical 2dp strings, matching the
// Mongo backend.

type CoverageItem struct {
	Name        string `dynamodbav:"name"`
	Description string `dynamodbav:"description,omitempty"`
	Limit       string `dynamodbav:"limit"`
}

type TierItem struct {
	Name        string         `dynamodbav:"name"`
	BasePremium string         `dynamodbav:"base_premium"`
	Coverages   []CoverageItem `dynamodbav:"coverages,omitempty"`
	Benefits    string         `dynamodbav:"benefits,omitempty"`
	Exclusions  string         `dynamodbav:"exclusions,omitempty"`
}

type ProductItem struct {
	ID          string     `dynamodbav:"id"`
	Provider    string     `dynamodbav:"provider"`
	Name        string     `dynamodbav:"name"`
	Category    string     `dynamodbav:"category"`
	BasePremium string     `dynamodbav:"base_premium"`
	Tiers       []TierItem `dynamodbav:"tiers,omitempty"`
	Trashed     bool       `dynamodbav:"trashed"`
}

func (i ProductItem) ToCore() core.Product {
	tiers := make([]core.ProductTier, len(i.Tiers))
	for j, t := range i.Tiers {
		covs := make([]core.Coverage, len(t.Coverages))
		for k, c := range t.Coverages {
			covs[k] = core.Coverage{Name: c.Name, Description: c.Description, Limit: parseAmount(c.Limit)}
		}
		tiers[j] = core.ProductTier{
			Name:        t.Name,
			BasePremium: parseAmount(t.BasePremium),
			Coverages:   covs,
			Benefits:    t.Benefits,
			Exclusions:  t.Exclusions,
		}
	}
	return core.Product{
		ID:          i.ID,
		Provider:    i.Provider,
		Name:        i.Name,
		Category:    core.Category(i.Category),
		BasePremium: parseAmount(i.BasePremium),
		Tiers:       tiers,
		Trashed:     i.Trashed,
	}
}

func productItemFromCore(p core.Product) ProductItem {
	tiers := make([]TierItem, len(p.Tiers))
	for j, t := range p.Tiers {
		covs := make([]CoverageItem, len(t.Coverages))
		for k, c := range t.Coverages {
			covs[k] = CoverageItem{Name: c.Name, Description: c.Description, Limit: c.Limit.StringFixed(2)}
		}
		tiers[j] = TierItem{
			Name:        t.Name,
			BasePremium: t.BasePremium.StringFixed(2),
			Coverages:   covs,
			Benefits:    t.Benefits,
			Exclusions:  t.Exclusions,
		}
	}
	return ProductItem{
		ID:          p.ID,
		Provider:    p.Provider,
		Name:        p.Name,
		Category:    string(p.Category),
		BasePremium: p.BasePremium.StringFixed(2),
		Tiers:       tiers,
		Trashed:     p.Trashed,
	}
}

type CatalogRepo struct {
	client *dynamodb.Client
}

func NewCatalogRepo(client *dynamodb.Client) *CatalogRepo {
	return &CatalogRepo{client: client}
}

func (r *CatalogRepo) List(ctx context.Context) ([]core.Product, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(TableProducts),
	})
	if err != nil {
		return nil, fmt.Errorf("products.scan: %w", err)
	}

	var items []ProductItem
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, fmt.Errorf("products.unmarshal: %w", err)
	}

	products := make([]core.Product, len(items))
	for i, item := range items {
		products[i] = item.ToCore()
	}
	return products, nil
}

func (r *CatalogRepo) ListByCategory(ctx context.Context, category core.Category, providers []string) ([]core.Product, error) {
	items, err := r.queryCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	wanted := map[string]bool{}
	for _, p := range providers {
		wanted[p] = true
	}

	products := []core.Product{}
	for _, item := range items {
		if item.Trashed {
			continue
		}
		if len(wanted) > 0 && !wanted[item.Provider] {
			continue
		}
		products = append(products, item.ToCore())
	}
	return products, nil
}

func (r *CatalogRepo) ProvidersForCategory(ctx context.Context, category core.Category) ([]string, error) {
	items, err := r.queryCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	providers := []string{}
	for _, item := range items {
		if item.Trashed || seen[item.Provider] {
			continue
		}
		seen[item.Provider] = true
		providers = append(providers, item.Provider)
	}
	return providers, nil
}

func (r *CatalogRepo) queryCategory(ctx context.Context, category core.Category) ([]ProductItem, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(TableProducts),
		IndexName:              aws.String(GSIProductsCategory),
		KeyConditionExpression: aws.String("category = :category"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":category": &types.AttributeValueMemberS{Value: string(category)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("products.queryByCategory: %w", err)
	}

	var items []ProductItem
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, fmt.Errorf("products.unmarshal: %w", err)
	}
	return items, nil
}

func (r *CatalogRepo) GetByID(ctx context.Context, id string) (core.Product, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(TableProducts),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return core.Product{}, fmt.Errorf("products.getItem: %w", err)
	}

	if out.Item == nil {
		return core.Product{}, core.ErrNotFound
	}

	var item ProductItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return core.Product{}, fmt.Errorf("products.unmarshal: %w", err)
	}

	return item.ToCore(), nil
}

// UpsertByProviderName keeps one row per (provider, name); an existing row
// keeps its id and tiers, only the category is refreshed.
func (r *CatalogRepo) UpsertByProviderName(ctx context.Context, p core.Product) (core.Product, error) {
	existing, err := r.getByProviderName(ctx, p.Provider, p.Name)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return core.Product{}, err
	}

	item := productItemFromCore(p)
	if err == nil {
		item.ID = existing.ID
		if len(item.Tiers) == 0 {
			item.Tiers = productItemFromCore(existing).Tiers
		}
	} else {
		item.ID = ids.New()
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return core.Product{}, fmt.Errorf("products.marshal: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(TableProducts),
		Item:      av,
	})
	if err != nil {
		return core.Product{}, fmt.Errorf("products.putItem: %w", err)
	}

	return item.ToCore(), nil
}

func (r *CatalogRepo) getByProviderName(ctx context.Context, provider, name string) (core.Product, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(TableProducts),
		IndexName:              aws.String(GSIProductsProviderName),
		KeyConditionExpression: aws.String("provider = :provider AND #n = :name"),
		ExpressionAttributeNames: map[string]string{
			"#n": "name",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":provider": &types.AttributeValueMemberS{Value: provider},
			":name":     &types.AttributeValueMemberS{Value: name},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return core.Product{}, fmt.Errorf("products.queryByProviderName: %w", err)
	}

	if len(out.Items) == 0 {
		return core.Product{}, core.ErrNotFound
	}

	var item ProductItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return core.Product{}, fmt.Errorf("products.unmarshal: %w", err)
	}
	return item.ToCore(), nil
}

func (r *CatalogRepo) SetTrashed(ctx context.Context, id string, trashed bool) error {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	existing.Trashed = trashed
	av, err := attributevalue.MarshalMap(productItemFromCore(existing))
	if err != nil {
		return fmt.Errorf("products.marshal: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(TableProducts),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("products.putItem: %w", err)
	}
	return nil
}

func parseAmount(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
