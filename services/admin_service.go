package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/neeharika666/myntra-hackerramp/models"
	"github.com/neeharika666/myntra-hackerramp/repository"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var validate = validator.New()

// CreateProductRequest is the admin catalog-create payload.
type CreateProductRequest struct {
	Title       string           `json:"title" binding:"required,min=3"`
	Description string           `json:"description"`
	Brand       string           `json:"brand" binding:"required"`
	Images      []string         `json:"images"`
	Category    string           `json:"category" binding:"required"`
	Subcategory string           `json:"subcategory"`
	Variants    []models.Variant `json:"variants" binding:"required,min=1,dive"`
	IsFeatured  bool             `json:"isFeatured"`
}

// UpdateProductRequest carries partial catalog updates; nil fields are
// left untouched.
type UpdateProductRequest struct {
	Title       *string           `json:"title"`
	Description *string           `json:"description"`
	Brand       *string           `json:"brand"`
	Images      *[]string         `json:"images"`
	Subcategory *string           `json:"subcategory"`
	Variants    *[]models.Variant `json:"variants"`
	IsActive    *bool             `json:"isActive"`
	IsFeatured  *bool             `json:"isFeatured"`
}

// CreateCategoryRequest is the admin category-create payload.
type CreateCategoryRequest struct {
	Name          string               `json:"name" binding:"required"`
	Slug          string               `json:"slug"`
	Description   string               `json:"description"`
	Image         models.CategoryImage `json:"image" binding:"required"`
	Subcategories []models.Subcategory `json:"subcategories"`
	SortOrder     int                  `json:"sortOrder"`
}

// DashboardStats is the admin overview: headline counts, revenue over
// shipped and delivered orders, and the latest orders.
type DashboardStats struct {
	Users        int64          `json:"users"`
	Products     int64          `json:"products"`
	Orders       int64          `json:"orders"`
	Revenue      float64        `json:"revenue"`
	RecentOrders []models.Order `json:"recentOrders"`
}

// AdminService serves the admin surface: catalog and category management
// plus the dashboard.
type AdminService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	orders     repository.OrderRepository
	users      repository.UserRepository
	logger     *zap.Logger
}

func NewAdminService(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	orders repository.OrderRepository,
	users repository.UserRepository,
	logger *zap.Logger,
) *AdminService {
	return &AdminService{
		products:   products,
		categories: categories,
		orders:     orders,
		users:      users,
		logger:     logger,
	}
}

// Dashboard aggregates the store overview.
func (s *AdminService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	products, err := s.products.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	orders, err := s.orders.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	revenue, err := s.orders.Revenue(ctx)
	if err != nil {
		return nil, fmt.Errorf("compute revenue: %w", err)
	}
	recent, _, err := s.orders.FindAll(ctx, "", "", 1, 5)
	if err != nil {
		return nil, fmt.Errorf("fetch recent orders: %w", err)
	}

	return &DashboardStats{
		Users:        users,
		Products:     products,
		Orders:       orders,
		Revenue:      revenue,
		RecentOrders: recent,
	}, nil
}

// CreateProduct adds a product to the catalog. New products go live
// immediately.
func (s *AdminService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	categoryID, err := primitive.ObjectIDFromHex(req.Category)
	if err != nil {
		return nil, &ValidationError{Field: "category", Message: "invalid category ID"}
	}
	if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Resource: "category"}
		}
		return nil, fmt.Errorf("fetch category: %w", err)
	}

	seen := make(map[models.VariantKey]bool, len(req.Variants))
	for _, v := range req.Variants {
		key := models.VariantKey{Size: v.Size, Color: v.Color}
		if seen[key] {
			return nil, &ValidationError{Field: "variants", Message: fmt.Sprintf("duplicate variant %s/%s", v.Size, v.Color)}
		}
		seen[key] = true
		if err := validate.Struct(v); err != nil {
			return nil, &ValidationError{Field: "variants", Message: err.Error()}
		}
	}

	product := &models.Product{
		Title:       req.Title,
		Description: req.Description,
		Brand:       req.Brand,
		Images:      req.Images,
		Category:    categoryID,
		Subcategory: req.Subcategory,
		Variants:    req.Variants,
		IsActive:    true,
		IsFeatured:  req.IsFeatured,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.Info("Product created", zap.String("product_id", product.ID.Hex()), zap.String("title", product.Title))
	return product, nil
}

// UpdateProduct applies a partial update and returns the updated product.
// Variant updates replace the whole array; stock corrections go through
// here only for full restocks, live decrements stay on the order path.
func (s *AdminService) UpdateProduct(ctx context.Context, id string, req *UpdateProductRequest) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, &ValidationError{Field: "id", Message: "invalid product ID"}
	}

	update := bson.M{}
	if req.Title != nil {
		update["title"] = *req.Title
	}
	if req.Description != nil {
		update["description"] = *req.Description
	}
	if req.Brand != nil {
		update["brand"] = *req.Brand
	}
	if req.Images != nil {
		update["images"] = *req.Images
	}
	if req.Subcategory != nil {
		update["subcategory"] = *req.Subcategory
	}
	if req.Variants != nil {
		for _, v := range *req.Variants {
			if err := validate.Struct(v); err != nil {
				return nil, &ValidationError{Field: "variants", Message: err.Error()}
			}
		}
		update["variants"] = *req.Variants
	}
	if req.IsActive != nil {
		update["is_active"] = *req.IsActive
	}
	if req.IsFeatured != nil {
		update["is_featured"] = *req.IsFeatured
	}
	if len(update) == 0 {
		return nil, &ValidationError{Field: "body", Message: "no fields to update"}
	}

	product, err := s.products.Update(ctx, oid, update)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Resource: "product"}
	}
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.logger.Info("Product updated", zap.String("product_id", id))
	return product, nil
}

// DeleteProduct deactivates a product. The document stays so past orders
// keep resolving their lines.
func (s *AdminService) DeleteProduct(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &ValidationError{Field: "id", Message: "invalid product ID"}
	}
	err = s.products.Delete(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Resource: "product"}
	}
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.logger.Info("Product deactivated", zap.String("product_id", id))
	return nil
}

// ListAllProducts returns the unfiltered catalog, inactive included.
func (s *AdminService) ListAllProducts(ctx context.Context, filter models.ProductFilter, page, limit int) (*ProductListResponse, error) {
	filter.ActiveOnly = false
	products, total, err := s.products.Find(ctx, filter, page, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	return &ProductListResponse{Products: products, Meta: paginate(page, limit, total)}, nil
}

// ListCategories returns categories with their live product counts.
func (s *AdminService) ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	categories, err := s.categories.FindAll(ctx, activeOnly)
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

// CreateCategory adds a category; the slug defaults to a slugified name.
func (s *AdminService) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*models.Category, error) {
	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Name)
	}

	category := &models.Category{
		Name:          req.Name,
		Slug:          slug,
		Description:   req.Description,
		Image:         req.Image,
		Subcategories: req.Subcategories,
		IsActive:      true,
		SortOrder:     req.SortOrder,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &ValidationError{Field: "slug", Message: "category slug already exists"}
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.logger.Info("Category created", zap.String("slug", category.Slug))
	return category, nil
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	var b strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
