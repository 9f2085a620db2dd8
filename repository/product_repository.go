package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neeharika666/myntra-hackerramp/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProductRepository defines the interface for catalog data access.
type ProductRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Find(ctx context.Context, filter models.ProductFilter, page, limit int) ([]models.Product, int64, error)
	Suggestions(ctx context.Context, query string, limit int) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
	CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error)
	IncrementViews(ctx context.Context, ids []primitive.ObjectID) error
	// AdjustVariantStock atomically applies stockDelta to the variant matching
	// (size, color) and salesDelta to the product's sales counter. A negative
	// stockDelta only succeeds when the variant currently holds at least that
	// much stock; otherwise ErrInsufficientStock is returned and nothing
	// changes. This conditional update is the only write path for stock, so
	// concurrent checkouts cannot oversell.
	AdjustVariantStock(ctx context.Context, id primitive.ObjectID, variant models.VariantKey, stockDelta, salesDelta int) error
}

// MongoProductRepository implements ProductRepository on MongoDB.
type MongoProductRepository struct {
	coll *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{coll: db.Collection("products")}
}

func (r *MongoProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &product, nil
}

func buildProductQuery(filter models.ProductFilter) bson.M {
	query := bson.M{}
	if filter.ActiveOnly {
		query["is_active"] = true
	}
	if filter.Category != "" {
		if catID, err := primitive.ObjectIDFromHex(filter.Category); err == nil {
			query["category"] = catID
		}
	}
	if filter.Subcategory != "" {
		query["subcategory"] = filter.Subcategory
	}
	if filter.Brand != "" {
		query["brand"] = primitive.Regex{Pattern: filter.Brand, Options: "i"}
	}
	if filter.Search != "" {
		query["$text"] = bson.M{"$search": filter.Search}
	}
	if filter.MinPrice != nil || filter.MaxPrice != nil {
		price := bson.M{}
		if filter.MinPrice != nil {
			price["$gte"] = *filter.MinPrice
		}
		if filter.MaxPrice != nil {
			price["$lte"] = *filter.MaxPrice
		}
		query["variants.price"] = price
	}
	if filter.Size != "" {
		query["variants.size"] = filter.Size
	}
	if filter.Color != "" {
		query["variants.color"] = primitive.Regex{Pattern: filter.Color, Options: "i"}
	}
	if filter.InStock {
		query["variants.stock"] = bson.M{"$gt": 0}
	}
	if filter.Featured {
		query["is_featured"] = true
	}
	return query
}

func productSort(sort string) bson.D {
	switch sort {
	case "price_asc":
		return bson.D{{Key: "variants.price", Value: 1}}
	case "price_desc":
		return bson.D{{Key: "variants.price", Value: -1}}
	case "rating":
		return bson.D{{Key: "rating.average", Value: -1}}
	case "popular":
		return bson.D{{Key: "sales", Value: -1}, {Key: "views", Value: -1}}
	default: // newest
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

func (r *MongoProductRepository) Find(ctx context.Context, filter models.ProductFilter, page, limit int) ([]models.Product, int64, error) {
	query := buildProductQuery(filter)

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	opts := options.Find().
		SetSort(productSort(filter.Sort)).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("decode products: %w", err)
	}
	return products, total, nil
}

// Suggestions returns products matching a text search, ranked by text score.
func (r *MongoProductRepository) Suggestions(ctx context.Context, query string, limit int) ([]models.Product, error) {
	filter := bson.M{
		"is_active": true,
		"$text":     bson.M{"$search": query},
	}
	opts := options.Find().
		SetProjection(bson.M{"title": 1, "brand": 1, "score": bson.M{"$meta": "textScore"}}).
		SetSort(bson.M{"score": bson.M{"$meta": "textScore"}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("search suggestions: %w", err)
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode suggestions: %w", err)
	}
	return products, nil
}

func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	res, err := r.coll.InsertOne(ctx, product)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	product.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *MongoProductRepository) Update(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Product, error) {
	update["updated_at"] = time.Now()
	var product models.Product
	err := r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return &product, nil
}

// Delete deactivates a product instead of removing it; order lines keep
// pointing at the document.
func (r *MongoProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoProductRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}

func (r *MongoProductRepository) CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"category": categoryID, "is_active": true})
}

func (r *MongoProductRepository) IncrementViews(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.coll.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

func (r *MongoProductRepository) AdjustVariantStock(ctx context.Context, id primitive.ObjectID, variant models.VariantKey, stockDelta, salesDelta int) error {
	elem := bson.M{"size": variant.Size, "color": variant.Color}
	if stockDelta < 0 {
		// Decrement only when enough stock remains; the filter and $inc run
		// as one document-level atomic operation.
		elem["stock"] = bson.M{"$gte": -stockDelta}
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "variants": bson.M{"$elemMatch": elem}},
		bson.M{
			"$inc": bson.M{"variants.$.stock": stockDelta, "sales": salesDelta},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("adjust variant stock: %w", err)
	}
	if res.MatchedCount == 0 {
		if stockDelta >= 0 {
			return ErrNotFound
		}
		// Distinguish a missing variant from one that ran out of stock.
		exists, err := r.coll.CountDocuments(ctx, bson.M{
			"_id":      id,
			"variants": bson.M{"$elemMatch": bson.M{"size": variant.Size, "color": variant.Color}},
		})
		if err != nil {
			return fmt.Errorf("adjust variant stock: %w", err)
		}
		if exists == 0 {
			return ErrNotFound
		}
		return ErrInsufficientStock
	}
	return nil
}
