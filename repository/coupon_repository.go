package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/neeharika666/myntra-hackerramp/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CouponRepository defines the interface for coupon data access.
type CouponRepository interface {
	Create(ctx context.Context, coupon *models.Coupon) error
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	IncrementUsedCount(ctx context.Context, code string) error
	Deactivate(ctx context.Context, code string) error
	FindAll(ctx context.Context, page, limit int) ([]models.Coupon, int64, error)
}

type MongoCouponRepository struct {
	coll *mongo.Collection
}

func NewMongoCouponRepository(db *mongo.Database) *MongoCouponRepository {
	return &MongoCouponRepository{coll: db.Collection("coupons")}
}

func (r *MongoCouponRepository) Create(ctx context.Context, coupon *models.Coupon) error {
	now := time.Now()
	coupon.CreatedAt = now
	coupon.UpdatedAt = now
	res, err := r.coll.InsertOne(ctx, coupon)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert coupon: %w", err)
	}
	coupon.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByCode retrieves an active coupon by its code (case-insensitive).
func (r *MongoCouponRepository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.coll.FindOne(ctx, bson.M{"code": strings.ToUpper(code), "active": true}).Decode(&coupon)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find coupon: %w", err)
	}
	return &coupon, nil
}

// IncrementUsedCount atomically increments the used count of a coupon.
func (r *MongoCouponRepository) IncrementUsedCount(ctx context.Context, code string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"code": strings.ToUpper(code)},
		bson.M{"$inc": bson.M{"used_count": 1}, "$set": bson.M{"updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("increment coupon usage: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoCouponRepository) Deactivate(ctx context.Context, code string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"code": strings.ToUpper(code)},
		bson.M{"$set": bson.M{"active": false, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("deactivate coupon: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoCouponRepository) FindAll(ctx context.Context, page, limit int) ([]models.Coupon, int64, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count coupons: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find coupons: %w", err)
	}
	defer cursor.Close(ctx)

	var coupons []models.Coupon
	if err := cursor.All(ctx, &coupons); err != nil {
		return nil, 0, fmt.Errorf("decode coupons: %w", err)
	}
	return coupons, total, nil
}
