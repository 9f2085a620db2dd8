package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neeharika666/myntra-hackerramp/models"
	"github.com/neeharika666/myntra-hackerramp/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// WishlistResponse returns the wishlist with its products hydrated so the
// client does not need a second round trip.
type WishlistResponse struct {
	Wishlist *models.Wishlist `json:"wishlist"`
	Products []models.Product `json:"products"`
}

// WishlistService owns the per-user wishlist. Unlike the cart, wishlist
// entries carry no variant or quantity; a product is either saved or not.
type WishlistService struct {
	wishlists repository.WishlistRepository
	products  repository.ProductRepository
	logger    *zap.Logger
}

func NewWishlistService(wishlists repository.WishlistRepository, products repository.ProductRepository, logger *zap.Logger) *WishlistService {
	return &WishlistService{wishlists: wishlists, products: products, logger: logger}
}

// GetWishlist returns the user's wishlist with its products resolved.
// Products that have been deleted or deactivated since saving are dropped
// from the hydrated view.
func (s *WishlistService) GetWishlist(ctx context.Context, userID string) (*WishlistResponse, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	wishlist, err := s.wishlists.GetOrCreate(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("load wishlist: %w", err)
	}

	products := make([]models.Product, 0, len(wishlist.Items))
	for _, item := range wishlist.Items {
		product, err := s.products.FindByID(ctx, item.ProductID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolve wishlist product: %w", err)
		}
		if product.IsActive {
			products = append(products, *product)
		}
	}

	return &WishlistResponse{Wishlist: wishlist, Products: products}, nil
}

// AddItem saves a product to the wishlist. Adding an already-saved product
// is a no-op rather than an error.
func (s *WishlistService) AddItem(ctx context.Context, userID, productID string) (*models.Wishlist, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, &ValidationError{Field: "productId", Message: "invalid product ID"}
	}

	product, err := s.products.FindByID(ctx, pid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Resource: "product"}
	}
	if err != nil {
		return nil, fmt.Errorf("fetch product: %w", err)
	}
	if !product.IsActive {
		return nil, &ProductUnavailableError{ProductID: productID, Title: product.Title}
	}

	wishlist, err := s.wishlists.GetOrCreate(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("load wishlist: %w", err)
	}
	if wishlist.HasItem(pid) {
		return wishlist, nil
	}

	wishlist.Items = append(wishlist.Items, models.WishlistItem{ProductID: pid, AddedAt: time.Now()})
	if err := s.wishlists.Save(ctx, wishlist); err != nil {
		return nil, fmt.Errorf("save wishlist: %w", err)
	}
	return wishlist, nil
}

// RemoveItem drops a product from the wishlist.
func (s *WishlistService) RemoveItem(ctx context.Context, userID, productID string) (*models.Wishlist, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, &ValidationError{Field: "productId", Message: "invalid product ID"}
	}

	wishlist, err := s.wishlists.GetOrCreate(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("load wishlist: %w", err)
	}

	found := false
	items := wishlist.Items[:0]
	for _, item := range wishlist.Items {
		if item.ProductID == pid {
			found = true
			continue
		}
		items = append(items, item)
	}
	if !found {
		return nil, &NotFoundError{Resource: "wishlist item"}
	}

	wishlist.Items = items
	if err := s.wishlists.Save(ctx, wishlist); err != nil {
		return nil, fmt.Errorf("save wishlist: %w", err)
	}
	return wishlist, nil
}

// ClearWishlist removes every saved product.
func (s *WishlistService) ClearWishlist(ctx context.Context, userID string) (*models.Wishlist, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	wishlist, err := s.wishlists.GetOrCreate(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("load wishlist: %w", err)
	}

	wishlist.Items = []models.WishlistItem{}
	if err := s.wishlists.Save(ctx, wishlist); err != nil {
		return nil, fmt.Errorf("save wishlist: %w", err)
	}
	return wishlist, nil
}

// Contains reports whether a product is saved in the user's wishlist.
func (s *WishlistService) Contains(ctx context.Context, userID, productID string) (bool, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return false, err
	}
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return false, &ValidationError{Field: "productId", Message: "invalid product ID"}
	}

	wishlist, err := s.wishlists.GetOrCreate(ctx, uid)
	if err != nil {
		return false, fmt.Errorf("load wishlist: %w", err)
	}
	return wishlist.HasItem(pid), nil
}

func parseUserID(userID string) (primitive.ObjectID, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return primitive.NilObjectID, &ValidationError{Field: "user", Message: "invalid user ID"}
	}
	return uid, nil
}
