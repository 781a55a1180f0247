package dynamo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/superpool/superpool/internal/core"
)

type PriceItem struct {
	Amount      string `dynamodbav:"amount"`
	Description string `dynamodbav:"description,omitempty"`
	Commission  string `dynamodbav:"commission,omitempty"`
	Discount    string `dynamodbav:"discount,omitempty"`
	Surcharge   string `dynamodbav:"surcharge,omitempty"`
	Currency    string `dynamodbav:"currency"`
	Frequency   string `dynamodbav:"frequency,omitempty"`
	Model       string `dynamodbav:"model,omitempty"`
}

type QuoteItem struct {
	QuoteCode   string            `dynamodbav:"quote_code"`
	Origin      string            `dynamodbav:"origin"`
	Provider    string            `dynamodbav:"provider"`
	Category    string            `dynamodbav:"category"`
	ProductID   string            `dynamodbav:"product_id"`
	ProductName string            `dynamodbav:"product_name"`
	BasePrice   string            `dynamodbav:"base_price"`
	Premium     PriceItem         `dynamodbav:"premium"`
	Metadata    map[string]string `dynamodbav:"additional_metadata,omitempty"`
	Status      string            `dynamodbav:"status"`
	CreatedAt   string            `dynamodbav:"created_at"`
	UpdatedAt   string            `dynamodbav:"updated_at"`
	ExpiresAt   string            `dynamodbav:"expires_at"`

	PurchaseID          string `dynamodbav:"purchase_id,omitempty"`
	PurchaseIDCreatedAt string `dynamodbav:"purchase_id_created_at,omitempty"`
}

func (i QuoteItem) ToCore() core.Quote {
	createdAt, _ := time.Parse(time.RFC3339, i.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, i.UpdatedAt)
	expiresAt, _ := time.Parse(time.RFC3339, i.ExpiresAt)
	var purchaseAt time.Time
	if i.PurchaseIDCreatedAt != "" {
		purchaseAt, _ = time.Parse(time.RFC3339, i.PurchaseIDCreatedAt)
	}
	return core.Quote{
		QuoteCode:   i.QuoteCode,
		Origin:      core.Origin(i.Origin),
		Provider:    i.Provider,
		Category:    core.Category(i.Category),
		ProductID:   i.ProductID,
		ProductName: i.ProductName,
		BasePrice:   parseAmount(i.BasePrice),
		Premium: core.Price{
			Amount:      parseAmount(i.Premium.Amount),
			Description: i.Premium.Description,
			Commission:  parseAmount(i.Premium.Commission),
			Discount:    parseAmount(i.Premium.Discount),
			Surcharge:   parseAmount(i.Premium.Surcharge),
			Currency:    i.Premium.Currency,
			Frequency:   core.Frequency(i.Premium.Frequency),
			Model:       core.PricingModel(i.Premium.Model),
		},
		Metadata:            i.Metadata,
		Status:              core.QuoteStatus(i.Status),
		CreatedAt:           createdAt,
		UpdatedAt:           updatedAt,
		ExpiresAt:           expiresAt,
		PurchaseID:          i.PurchaseID,
		PurchaseIDCreatedAt: purchaseAt,
	}
}

func quoteItemFromCore(q core.Quote) QuoteItem {
	item := QuoteItem{
		QuoteCode:   q.QuoteCode,
		Origin:      string(q.Origin),
		Provider:    q.Provider,
		Category:    string(q.Category),
		ProductID:   q.ProductID,
		ProductName: q.ProductName,
		BasePrice:   q.BasePrice.StringFixed(2),
		Premium: PriceItem{
			Amount:      q.Premium.Amount.StringFixed(2),
			Description: q.Premium.Description,
			Commission:  q.Premium.Commission.StringFixed(2),
			Discount:    q.Premium.Discount.StringFixed(2),
			Surcharge:   q.Premium.Surcharge.StringFixed(2),
			Currency:    q.Premium.Currency,
			Frequency:   string(q.Premium.Frequency),
			Model:       string(q.Premium.Model),
		},
		Metadata:   q.Metadata,
		Status:     string(q.Status),
		CreatedAt:  q.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  q.UpdatedAt.Format(time.RFC3339),
		ExpiresAt:  q.ExpiresAt.Format(time.RFC3339),
		PurchaseID: q.PurchaseID,
	}
	if !q.PurchaseIDCreatedAt.IsZero() {
		item.PurchaseIDCreatedAt = q.PurchaseIDCreatedAt.Format(time.RFC3339)
	}
	return item
}

type QuoteRepo struct {
	client *dynamodb.Client
}

func NewQuoteRepo(client *dynamodb.Client) *QuoteRepo {
	return &QuoteRepo{client: client}
}

// Upsert puts the item keyed by quote code. A plain PutItem is the upsert:
// same key, same row, last writer wins. The stored row is read first so
// created_at and a live purchase handoff survive the rewrite, and a row
// already in a terminal status is left untouched.
func (r *QuoteRepo) Upsert(ctx context.Context, q core.Quote) error {
	if q.QuoteCode == "" {
		return fmt.Errorf("%w: quote missing quote code", core.ErrValidation)
	}

	if existing, err := r.Get(ctx, q.QuoteCode); err == nil {
		if existing.Status.Terminal() {
			return nil
		}
		q = carryForward(q, existing)
	}

	item := quoteItemFromCore(q)
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("quotes.marshal: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(TableQuotes),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("quotes.putItem: %w", err)
	}
	return nil
}

// carryForward keeps the write-once and purchase handoff fields of the
// stored row across a re-rate. Only Update may move those.
func carryForward(q, existing core.Quote) core.Quote {
	q.CreatedAt = existing.CreatedAt
	q.PurchaseID = existing.PurchaseID
	q.PurchaseIDCreatedAt = existing.PurchaseIDCreatedAt
	return q
}

func (r *QuoteRepo) Get(ctx context.Context, quoteCode string) (core.Quote, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(TableQuotes),
		Key: map[string]types.AttributeValue{
			"quote_code": &types.AttributeValueMemberS{Value: quoteCode},
		},
	})
	if err != nil {
		return core.Quote{}, fmt.Errorf("quotes.getItem: %w", err)
	}

	if out.Item == nil {
		return core.Quote{}, core.ErrQuoteNotFound
	}

	var item QuoteItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return core.Quote{}, fmt.Errorf("quotes.unmarshal: %w", err)
	}

	return item.ToCore(), nil
}

func (r *QuoteRepo) Find(ctx context.Context, f core.QuoteFilter) ([]core.Quote, error) {
	var items []QuoteItem
	var err error

	if f.Category != "" {
		items, err = r.queryCategory(ctx, f.Category)
	} else {
		items, err = r.scanAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	quotes := []core.Quote{}
	for _, item := range items {
		if f.ProductName != "" && item.ProductName != f.ProductName {
			continue
		}
		if f.Origin != "" && item.Origin != string(f.Origin) {
			continue
		}
		quotes = append(quotes, item.ToCore())
	}
	sort.Slice(quotes, func(i, j int) bool { return quotes[i].QuoteCode < quotes[j].QuoteCode })
	return quotes, nil
}

func (r *QuoteRepo) queryCategory(ctx context.Context, category core.Category) ([]QuoteItem, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(TableQuotes),
		IndexName:              aws.String(GSIQuotesCategory),
		KeyConditionExpression: aws.String("category = :category"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":category": &types.AttributeValueMemberS{Value: string(category)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("quotes.queryByCategory: %w", err)
	}

	var items []QuoteItem
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, fmt.Errorf("quotes.unmarshal: %w", err)
	}
	return items, nil
}

func (r *QuoteRepo) scanAll(ctx context.Context) ([]QuoteItem, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(TableQuotes),
	})
	if err != nil {
		return nil, fmt.Errorf("quotes.scan: %w", err)
	}

	var items []QuoteItem
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, fmt.Errorf("quotes.unmarshal: %w", err)
	}
	return items, nil
}

// Update rewrites an existing quote and fails if it vanished.
func (r *QuoteRepo) Update(ctx context.Context, q core.Quote) error {
	item := quoteItemFromCore(q)
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("quotes.marshal: %w", err)
	}

	cond := expression.AttributeExists(expression.Name("quote_code"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("quotes.buildExpr: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(TableQuotes),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errorAs(err, &ccf) {
			return core.ErrQuoteNotFound
		}
		return fmt.Errorf("quotes.putItem: %w", err)
	}
	return nil
}

func (r *QuoteRepo) ListPendingExpired(ctx context.Context, now time.Time, limit int) ([]core.Quote, error) {
	if limit <= 0 {
		limit = 100
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(TableQuotes),
		IndexName:              aws.String(GSIQuotesStatus),
		KeyConditionExpression: aws.String("#s = :status"),
		FilterExpression:       aws.String("expires_at <= :now"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(core.QuoteStatusPending)},
			":now":    &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
		Limit: aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("quotes.queryExpired: %w", err)
	}

	var items []QuoteItem
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, fmt.Errorf("quotes.unmarshal: %w", err)
	}

	quotes := make([]core.Quote, len(items))
	for i, item := range items {
		quotes[i] = item.ToCore()
	}
	return quotes, nil
}

func errorAs[T error](err error, target *T) bool {
	for err != nil {
		if e, ok := err.(T); ok {
			*target = e
			return true
		}
		if u, ok := err.(interface{ Unwrap() error }); ok {
			err = u.Unwrap()
		} else {
			return false
		}
	}
	return false
}
