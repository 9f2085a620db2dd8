package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Variant is a purchasable (size, color) combination of a product with its
// own price and stock count.
type Variant struct {
	Size          string   `bson:"size" json:"size" validate:"required"`
	Color         string   `bson:"color" json:"color" validate:"required"`
	Price         float64  `bson:"price" json:"price" validate:"gte=0"`
	OriginalPrice *float64 `bson:"original_price,omitempty" json:"originalPrice,omitempty"`
	Stock         int      `bson:"stock" json:"stock" validate:"gte=0"`
	Image         string   `bson:"image,omitempty" json:"image,omitempty"`
}

// Rating aggregates review scores for a product.
type Rating struct {
	Average float64 `bson:"average" json:"average"`
	Count   int     `bson:"count" json:"count"`
}

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Brand       string             `bson:"brand" json:"brand"`
	Images      []string           `bson:"images,omitempty" json:"images,omitempty"`
	Category    primitive.ObjectID `bson:"category,omitempty" json:"category,omitempty"`
	Subcategory string             `bson:"subcategory,omitempty" json:"subcategory,omitempty"`
	Variants    []Variant          `bson:"variants" json:"variants"`
	Rating      Rating             `bson:"rating" json:"rating"`
	Sales       int                `bson:"sales" json:"sales"`
	Views       int                `bson:"views" json:"views"`
	IsActive    bool               `bson:"is_active" json:"isActive"`
	IsFeatured  bool               `bson:"is_featured" json:"isFeatured"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// FindVariant returns the variant matching the given size and color, or nil.
func (p *Product) FindVariant(size, color string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].Size == size && p.Variants[i].Color == color {
			return &p.Variants[i]
		}
	}
	return nil
}

// ProductFilter captures the catalog listing filters.
type ProductFilter struct {
	Category    string
	Subcategory string
	Brand       string
	Search      string
	MinPrice    *float64
	MaxPrice    *float64
	Size        string
	Color       string
	InStock     bool
	Featured    bool
	// ActiveOnly is false only for admin listings.
	ActiveOnly bool
	Sort       string
}
