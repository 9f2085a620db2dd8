package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CouponType represents the type of discount a coupon provides.
type CouponType string

const (
	CouponTypePercentage CouponType = "percentage"
	CouponTypeFlat       CouponType = "flat"
)

// Coupon represents a promotional coupon.
type Coupon struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code          string             `bson:"code" json:"code"`
	Type          CouponType         `bson:"type" json:"type"`
	Value         float64            `bson:"value" json:"value"`                       // discount amount or percentage
	MinOrderValue float64            `bson:"min_order_value" json:"min_order_value"`   // minimum subtotal to apply
	UsageLimit    int                `bson:"usage_limit" json:"usage_limit"`           // 0 = unlimited
	UsedCount     int                `bson:"used_count" json:"used_count"`
	ExpiresAt     time.Time          `bson:"expires_at" json:"expires_at"`
	Active        bool               `bson:"active" json:"active"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// CreateCouponRequest is the payload for creating a new coupon.
type CreateCouponRequest struct {
	Code          string     `json:"code" binding:"required,min=3,max=64"`
	Type          CouponType `json:"type" binding:"required,oneof=percentage flat"`
	Value         float64    `json:"value" binding:"required,gte=0"`
	MinOrderValue float64    `json:"min_order_value" binding:"gte=0"`
	UsageLimit    int        `json:"usage_limit" binding:"gte=0"`
	ExpiresAt     time.Time  `json:"expires_at" binding:"required"`
}
