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

// ProductListResponse pairs a page of products with its metadata.
type ProductListResponse struct {
	Products []models.Product `json:"products"`
	Meta     Pagination       `json:"meta"`
}

// CategoryProductsResponse adds the resolved category to a product page.
type CategoryProductsResponse struct {
	Category *models.Category `json:"category"`
	Products []models.Product `json:"products"`
	Meta     Pagination       `json:"meta"`
}

// ProductService serves catalog reads: listings, search, trending and
// per-product detail.
type ProductService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	logger     *zap.Logger
}

func NewProductService(products repository.ProductRepository, categories repository.CategoryRepository, logger *zap.Logger) *ProductService {
	return &ProductService{products: products, categories: categories, logger: logger}
}

// ListProducts returns a filtered, sorted page of the active catalog and
// bumps the view counter of everything it returns.
func (s *ProductService) ListProducts(ctx context.Context, filter models.ProductFilter, page, limit int) (*ProductListResponse, error) {
	filter.ActiveOnly = true

	products, total, err := s.products.Find(ctx, filter, page, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}

	if len(products) > 0 {
		ids := make([]primitive.ObjectID, 0, len(products))
		for _, p := range products {
			ids = append(ids, p.ID)
		}
		if err := s.products.IncrementViews(ctx, ids); err != nil {
			s.logger.Warn("Failed to increment product views", zap.Error(err))
		}
	}

	return &ProductListResponse{Products: products, Meta: paginate(page, limit, total)}, nil
}

// GetProduct returns one active product and bumps its view counter.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, &ValidationError{Field: "id", Message: "invalid product ID"}
	}

	product, err := s.products.FindByID(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Resource: "product"}
	}
	if err != nil {
		return nil, fmt.Errorf("fetch product: %w", err)
	}
	if !product.IsActive {
		return nil, &NotFoundError{Resource: "product"}
	}

	if err := s.products.IncrementViews(ctx, []primitive.ObjectID{product.ID}); err != nil {
		s.logger.Warn("Failed to increment product views", zap.Error(err))
	}
	return product, nil
}

// ListByCategory resolves a category slug and returns its product page.
func (s *ProductService) ListByCategory(ctx context.Context, slug string, filter models.ProductFilter, page, limit int) (*CategoryProductsResponse, error) {
	category, err := s.categories.FindBySlug(ctx, slug, true)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Resource: "category"}
	}
	if err != nil {
		return nil, fmt.Errorf("fetch category: %w", err)
	}

	filter.Category = category.ID.Hex()
	filter.ActiveOnly = true

	products, total, err := s.products.Find(ctx, filter, page, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch category products: %w", err)
	}

	return &CategoryProductsResponse{
		Category: category,
		Products: products,
		Meta:     paginate(page, limit, total),
	}, nil
}

// Categories returns the active category tree with live product counts.
func (s *ProductService) Categories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categories.FindAll(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	for i := range categories {
		count, err := s.products.CountByCategory(ctx, categories[i].ID)
		if err != nil {
			s.logger.Warn("Failed to count category products",
				zap.String("category", categories[i].Slug), zap.Error(err))
			continue
		}
		categories[i].ProductCount = count
	}
	return categories, nil
}

// Suggestions returns up to limit text-search matches for a query of at
// least two characters.
func (s *ProductService) Suggestions(ctx context.Context, query string, limit int) ([]models.Product, error) {
	if len(query) < 2 {
		return []models.Product{}, nil
	}
	products, err := s.products.Suggestions(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch suggestions: %w", err)
	}
	return products, nil
}

// Trending returns the most viewed/sold active products.
func (s *ProductService) Trending(ctx context.Context, limit int) ([]models.Product, error) {
	filter := models.ProductFilter{ActiveOnly: true, Sort: "popular"}
	products, _, err := s.products.Find(ctx, filter, 1, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch trending products: %w", err)
	}
	return products, nil
}

// Featured returns the newest featured products.
func (s *ProductService) Featured(ctx context.Context, limit int) ([]models.Product, error) {
	filter := models.ProductFilter{ActiveOnly: true, Featured: true}
	products, _, err := s.products.Find(ctx, filter, 1, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch featured products: %w", err)
	}
	return products, nil
}
