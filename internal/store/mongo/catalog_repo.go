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
	"github.com/superpool/superpool/internal/platform/ids"
)

type CatalogRepoMongo struct {
	coll      *mongodrv.Collection
	opTimeout time.Duration
}

func NewCatalogRepo(db *mongodrv.Database, opTimeout time.Duration) *CatalogRepoMongo {
	return &CatalogRepoMongo{
		coll:      db.Collection(ColProducts),
		opTimeout: opTimeout,
	}
}

// Lists all products. Returns an empty slice if none found.
func (r *CatalogRepoMongo) List(ctx context.Context) ([]core.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("products.find: %w", err)
	}
	defer cur.Close(ctx)

	return decodeProducts(ctx, cur)
}

// ListByCategory returns non-trashed products for a category, optionally
// narrowed to specific providers. Tiers and coverages are embedded in the
// document, so one query loads the full rating input.
func (r *CatalogRepoMongo) ListByCategory(ctx context.Context, category core.Category, providers []string) ([]core.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	filter := bson.M{"category": string(category), "trashed": false}
	if len(providers) > 0 {
		filter["provider"] = bson.M{"$in": providers}
	}

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "provider", Value: 1}, {Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("products.findByCategory: %w", err)
	}
	defer cur.Close(ctx)

	return decodeProducts(ctx, cur)
}

// ProvidersForCategory reports which providers carry a live product of the
// category; empty means no internal quotes, not an error.
func (r *CatalogRepoMongo) ProvidersForCategory(ctx context.Context, category core.Category) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	raw, err := r.coll.Distinct(ctx, "provider", bson.M{
		"category": string(category),
		"trashed":  false,
	})
	if err != nil {
		return nil, fmt.Errorf("products.distinctProviders: %w", err)
	}

	providers := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			providers = append(providers, s)
		}
	}
	return providers, nil
}

// GetByID returns a product by id. Returns core.ErrNotFound if not found.
func (r *CatalogRepoMongo) GetByID(ctx context.Context, id string) (core.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	var doc ProductDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return core.Product{}, core.ErrNotFound
		}
		return core.Product{}, fmt.Errorf("products.findOne: %w", err)
	}
	return fromProductDoc(doc), nil
}

// UpsertByProviderName is the get-or-create keyed on (provider, name) that
// the external quote path relies on. An existing row keeps its id and
// tiers; only insert seeds the full document.
func (r *CatalogRepoMongo) UpsertByProviderName(ctx context.Context, p core.Product) (core.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	doc := toProductDoc(p)
	if doc.ID == "" {
		doc.ID = ids.New()
	}

	filter := bson.M{"provider": p.Provider, "name": p.Name}
	update := bson.M{
		"$set":         bson.M{"category": doc.Category},
		"$setOnInsert": bson.M{"_id": doc.ID, "provider": doc.Provider, "name": doc.Name, "base_premium": doc.BasePremium, "tiers": doc.Tiers, "trashed": false},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var out ProductDoc
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		return core.Product{}, fmt.Errorf("products.upsertByProviderName: %w", err)
	}
	return fromProductDoc(out), nil
}

// SetTrashed soft-deletes or restores a product.
func (r *CatalogRepoMongo) SetTrashed(ctx context.Context, id string, trashed bool) error {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"trashed": trashed}})
	if err != nil {
		return fmt.Errorf("products.setTrashed: %w", err)
	}
	if res.MatchedCount == 0 {
		return core.ErrNotFound
	}
	return nil
}

func decodeProducts(ctx context.Context, cur *mongodrv.Cursor) ([]core.Product, error) {
	products := []core.Product{}
	for cur.Next(ctx) {
		var doc ProductDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("products.decode: %w", err)
		}
		products = append(products, fromProductDoc(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("products.cursor: %w", err)
	}
	return products, nil
}
