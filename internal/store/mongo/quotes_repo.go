package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/superpool/superpool/internal/core"
)

type QuoteRepoMongo struct {
	coll      *mongodrv.Collection
	opTimeout time.Duration
}

func NewQuoteRepo(db *mongodrv.Database, opTimeout time.Duration) *QuoteRepoMongo {
	return &QuoteRepoMongo{
		coll:      db.Collection(ColQuotes),
		opTimeout: opTimeout,
	}
}

// Upsert writes a quote keyed on its quote code. The created_at of the
// first write survives later re-rates and a row already in a terminal
// status is left untouched, so a retry or a concurrent re-run lands on the
// same row without rewinding its lifecycle. The purchase handoff fields are
// never part of the write; only Update moves those.
func (r *QuoteRepoMongo) Upsert(ctx context.Context, q core.Quote) error {
	if q.QuoteCode == "" {
		return fmt.Errorf("%w: quote missing quote code", core.ErrValidation)
	}
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	doc := toQuoteDoc(q)
	_, err := r.coll.UpdateOne(
		ctx,
		quoteUpsertFilter(doc.QuoteCode),
		bson.M{
			"$set":         quoteUpsertSet(doc),
			"$setOnInsert": bson.M{"created_at": doc.CreatedAt},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		// The filter pins status=pending, so writing against a terminal row
		// matches nothing and the upsert collides on _id instead. That
		// collision means the row is settled; leave it as it is.
		if mongodrv.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("quotes.upsert: %w", err)
	}
	return nil
}

// quoteUpsertFilter matches only rows still open for re-rating. The _id and
// status equality fields also seed the inserted document when no row exists.
func quoteUpsertFilter(quoteCode string) bson.M {
	return bson.M{
		"_id":    quoteCode,
		"status": string(core.QuoteStatusPending),
	}
}

// quoteUpsertSet deliberately omits status (pinned by the filter),
// created_at (insert-only) and the purchase handoff fields.
func quoteUpsertSet(doc QuoteDoc) bson.M {
	return bson.M{
		"origin":              doc.Origin,
		"provider":            doc.Provider,
		"category":            doc.Category,
		"product_id":          doc.ProductID,
		"product_name":        doc.ProductName,
		"base_price":          doc.BasePrice,
		"premium":             doc.Premium,
		"additional_metadata": doc.Metadata,
		"updated_at":          doc.UpdatedAt,
		"expires_at":          doc.ExpiresAt,
	}
}

func (r *QuoteRepoMongo) Get(ctx context.Context, quoteCode string) (core.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	var doc QuoteDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": quoteCode}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return core.Quote{}, core.ErrQuoteNotFound
		}
		return core.Quote{}, fmt.Errorf("quotes.findOne: %w", err)
	}
	return fromQuoteDoc(doc), nil
}

func (r *QuoteRepoMongo) Find(ctx context.Context, f core.QuoteFilter) ([]core.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = string(f.Category)
	}
	if f.ProductName != "" {
		filter["product_name"] = f.ProductName
	}
	if f.Origin != "" {
		filter["origin"] = string(f.Origin)
	}

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("quotes.find: %w", err)
	}
	defer cur.Close(ctx)

	quotes := []core.Quote{}
	for cur.Next(ctx) {
		var doc QuoteDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("quotes.decode: %w", err)
		}
		quotes = append(quotes, fromQuoteDoc(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("quotes.cursor: %w", err)
	}
	return quotes, nil
}

// Update rewrites one existing quote (status moves, purchase id refresh).
func (r *QuoteRepoMongo) Update(ctx context.Context, q core.Quote) error {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": q.QuoteCode}, toQuoteDoc(q))
	if err != nil {
		return fmt.Errorf("quotes.replace: %w", err)
	}
	if res.MatchedCount == 0 {
		return core.ErrQuoteNotFound
	}
	return nil
}

func (r *QuoteRepoMongo) ListPendingExpired(ctx context.Context, now time.Time, limit int) ([]core.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 100
	}
	cur, err := r.coll.Find(ctx,
		bson.M{
			"status":     string(core.QuoteStatusPending),
			"expires_at": bson.M{"$lte": now},
		},
		options.Find().SetLimit(int64(limit)).SetSort(bson.D{{Key: "expires_at", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("quotes.findExpired: %w", err)
	}
	defer cur.Close(ctx)

	quotes := []core.Quote{}
	for cur.Next(ctx) {
		var doc QuoteDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("quotes.decode: %w", err)
		}
		quotes = append(quotes, fromQuoteDoc(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("quotes.cursor: %w", err)
	}
	return quotes, nil
}
