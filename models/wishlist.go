package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WishlistItem struct {
	ProductID primitive.ObjectID `bson:"product" json:"product"`
	AddedAt   time.Time          `bson:"added_at" json:"addedAt"`
}

// Wishlist is owned 1:1 by a user.
type Wishlist struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"user" json:"user"`
	Items      []WishlistItem     `bson:"items" json:"items"`
	TotalItems int                `bson:"total_items" json:"totalItems"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updatedAt"`
}

// HasItem reports whether the wishlist already contains the product.
func (w *Wishlist) HasItem(productID primitive.ObjectID) bool {
	for _, item := range w.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}
