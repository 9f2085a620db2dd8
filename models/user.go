package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// UserAddress is a saved delivery address. At most one address per user is
// marked default.
type UserAddress struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Phone     string             `bson:"phone" json:"phone"`
	Pincode   string             `bson:"pincode" json:"pincode"`
	Address   string             `bson:"address" json:"address"`
	City      string             `bson:"city" json:"city"`
	State     string             `bson:"state" json:"state"`
	IsDefault bool               `bson:"is_default" json:"isDefault"`
}

type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Email       string             `bson:"email" json:"email"`
	Password    string             `bson:"password" json:"-"`
	Phone       string             `bson:"phone" json:"phone"`
	Gender      string             `bson:"gender" json:"gender"`
	DateOfBirth time.Time          `bson:"date_of_birth" json:"dateOfBirth"`
	Role        string             `bson:"role" json:"role"`
	Addresses   []UserAddress      `bson:"addresses,omitempty" json:"addresses,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}
