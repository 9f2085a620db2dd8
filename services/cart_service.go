package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/neeharika666/myntra-hackerramp/models"
	"github.com/neeharika666/myntra-hackerramp/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	minLineQuantity = 1
	maxLineQuantity = 10
)

// AddItemRequest adds a (product, variant, quantity) line to the cart.
type AddItemRequest struct {
	ProductID string            `json:"productId" binding:"required"`
	Variant   models.VariantKey `json:"variant" binding:"required"`
	Quantity  int               `json:"quantity" binding:"required,min=1,max=10"`
}

// UpdateItemRequest changes a line's quantity; zero removes the line.
type UpdateItemRequest struct {
	ProductID string            `json:"productId" binding:"required"`
	Variant   models.VariantKey `json:"variant" binding:"required"`
	Quantity  int               `json:"quantity" binding:"min=0,max=10"`
}

// RemoveItemRequest removes one (product, variant) line.
type RemoveItemRequest struct {
	ProductID string            `json:"productId" binding:"required"`
	Variant   models.VariantKey `json:"variant" binding:"required"`
}

// CartService owns cart mutations. Every mutation recalculates the derived
// totals before saving, and keeps at most one line per (product, variant).
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	logger   *zap.Logger
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository, logger *zap.Logger) *CartService {
	return &CartService{carts: carts, products: products, logger: logger}
}

// GetCart returns the user's cart, creating an empty one on first access.
func (s *CartService) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return cart, nil
}

// AddItem adds a line to the cart, merging quantity into an existing line
// for the same (product, variant). The merged quantity still honors the
// per-line maximum.
func (s *CartService) AddItem(ctx context.Context, userID string, req *AddItemRequest) (*models.Cart, error) {
	variant, product, err := s.lookupVariant(ctx, req.ProductID, req.Variant)
	if err != nil {
		return nil, err
	}
	if variant.Stock < req.Quantity {
		return nil, &InsufficientStockError{
			ProductID: req.ProductID,
			Title:     product.Title,
			Size:      req.Variant.Size,
			Color:     req.Variant.Color,
			Available: variant.Stock,
		}
	}

	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	if i := cart.FindLine(req.ProductID, req.Variant); i >= 0 {
		merged := cart.Items[i].Quantity + req.Quantity
		if merged > maxLineQuantity {
			return nil, &ValidationError{Field: "quantity", Message: fmt.Sprintf("quantity cannot exceed %d", maxLineQuantity)}
		}
		cart.Items[i].Quantity = merged
		cart.Items[i].Price = variant.Price
	} else {
		cart.Items = append(cart.Items, models.CartLine{
			ProductID: req.ProductID,
			Variant:   req.Variant,
			Quantity:  req.Quantity,
			Price:     variant.Price,
		})
	}

	cart.Recalculate()
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return cart, nil
}

// UpdateItem sets a line's quantity against current stock; quantity zero
// removes the line.
func (s *CartService) UpdateItem(ctx context.Context, userID string, req *UpdateItemRequest) (*models.Cart, error) {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	i := cart.FindLine(req.ProductID, req.Variant)
	if i < 0 {
		return nil, &NotFoundError{Resource: "cart item"}
	}

	if req.Quantity == 0 {
		cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
	} else {
		variant, product, err := s.lookupVariant(ctx, req.ProductID, req.Variant)
		if err != nil {
			return nil, err
		}
		if variant.Stock < req.Quantity {
			return nil, &InsufficientStockError{
				ProductID: req.ProductID,
				Title:     product.Title,
				Size:      req.Variant.Size,
				Color:     req.Variant.Color,
				Available: variant.Stock,
			}
		}
		cart.Items[i].Quantity = req.Quantity
		cart.Items[i].Price = variant.Price
	}

	cart.Recalculate()
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return cart, nil
}

// RemoveItem drops one (product, variant) line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, userID string, req *RemoveItemRequest) (*models.Cart, error) {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	i := cart.FindLine(req.ProductID, req.Variant)
	if i < 0 {
		return nil, &NotFoundError{Resource: "cart item"}
	}
	cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)

	cart.Recalculate()
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return cart, nil
}

// ClearCart empties the cart. The cart document survives; only its lines
// go away.
func (s *CartService) ClearCart(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.carts.Clear(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}
	return cart, nil
}

func (s *CartService) lookupVariant(ctx context.Context, productID string, key models.VariantKey) (*models.Variant, *models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, nil, &ValidationError{Field: "productId", Message: "invalid product ID"}
	}

	product, err := s.products.FindByID(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, &ProductUnavailableError{ProductID: productID}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("fetch product: %w", err)
	}
	if !product.IsActive {
		return nil, nil, &ProductUnavailableError{ProductID: productID, Title: product.Title}
	}

	variant := product.FindVariant(key.Size, key.Color)
	if variant == nil {
		return nil, nil, &ProductUnavailableError{ProductID: productID, Title: product.Title}
	}
	return variant, product, nil
}
