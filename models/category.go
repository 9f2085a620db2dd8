package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CategoryImage struct {
	URL string `bson:"url" json:"url" binding:"required"`
	Alt string `bson:"alt,omitempty" json:"alt,omitempty"`
}

type Subcategory struct {
	Name string `bson:"name" json:"name" binding:"required"`
	Slug string `bson:"slug" json:"slug" binding:"required"`
}

type Category struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Slug          string             `bson:"slug" json:"slug"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Image         CategoryImage      `bson:"image" json:"image"`
	Subcategories []Subcategory      `bson:"subcategories,omitempty" json:"subcategories,omitempty"`
	IsActive      bool               `bson:"is_active" json:"isActive"`
	SortOrder     int                `bson:"sort_order" json:"sortOrder"`
	ProductCount  int64              `bson:"-" json:"productCount"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updatedAt"`
}
