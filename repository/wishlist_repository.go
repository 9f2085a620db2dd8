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
)

// WishlistRepository defines the interface for wishlist data access.
type WishlistRepository interface {
	GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*models.Wishlist, error)
	Save(ctx context.Context, wishlist *models.Wishlist) error
}

type MongoWishlistRepository struct {
	coll *mongo.Collection
}

func NewMongoWishlistRepository(db *mongo.Database) *MongoWishlistRepository {
	return &MongoWishlistRepository{coll: db.Collection("wishlists")}
}

func (r *MongoWishlistRepository) GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*models.Wishlist, error) {
	var wishlist models.Wishlist
	err := r.coll.FindOne(ctx, bson.M{"user": userID}).Decode(&wishlist)
	if errors.Is(err, mongo.ErrNoDocuments) {
		wishlist = models.Wishlist{
			UserID:    userID,
			Items:     []models.WishlistItem{},
			UpdatedAt: time.Now(),
		}
		res, insertErr := r.coll.InsertOne(ctx, wishlist)
		if insertErr != nil {
			return nil, fmt.Errorf("insert wishlist: %w", insertErr)
		}
		wishlist.ID = res.InsertedID.(primitive.ObjectID)
		return &wishlist, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find wishlist: %w", err)
	}
	return &wishlist, nil
}

func (r *MongoWishlistRepository) Save(ctx context.Context, wishlist *models.Wishlist) error {
	wishlist.TotalItems = len(wishlist.Items)
	wishlist.UpdatedAt = time.Now()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": wishlist.ID}, wishlist)
	if err != nil {
		return fmt.Errorf("save wishlist: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
