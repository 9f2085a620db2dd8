package controllers

import (
	"net/http"
	"strconv"

	"github.com/neeharika666/myntra-hackerramp/models"
	"github.com/neeharika666/myntra-hackerramp/services"

	"github.com/gin-gonic/gin"
)

type ProductController struct {
	products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{products: products}
}

func parsePagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func parseProductFilter(c *gin.Context) models.ProductFilter {
	filter := models.ProductFilter{
		Category:    c.Query("category"),
		Subcategory: c.Query("subcategory"),
		Brand:       c.Query("brand"),
		Search:      c.Query("search"),
		Size:        c.Query("size"),
		Color:       c.Query("color"),
		InStock:     c.Query("inStock") == "true",
		Featured:    c.Query("featured") == "true",
		Sort:        c.Query("sort"),
	}
	if v, err := strconv.ParseFloat(c.Query("minPrice"), 64); err == nil {
		filter.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(c.Query("maxPrice"), 64); err == nil {
		filter.MaxPrice = &v
	}
	return filter
}

// List handles GET /api/products.
func (pc *ProductController) List(c *gin.Context) {
	page, limit := parsePagination(c)

	resp, err := pc.products.ListProducts(c.Request.Context(), parseProductFilter(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get handles GET /api/products/:id.
func (pc *ProductController) Get(c *gin.Context) {
	product, err := pc.products.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// Suggestions handles GET /api/products/search/suggestions?q=.
func (pc *ProductController) Suggestions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "8"))
	if limit < 1 || limit > 20 {
		limit = 8
	}

	products, err := pc.products.Suggestions(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": products})
}

// Trending handles GET /api/products/trending.
func (pc *ProductController) Trending(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))
	if limit < 1 || limit > 50 {
		limit = 12
	}

	products, err := pc.products.Trending(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// Featured handles GET /api/products/featured.
func (pc *ProductController) Featured(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))
	if limit < 1 || limit > 50 {
		limit = 12
	}

	products, err := pc.products.Featured(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// Categories handles GET /api/categories.
func (pc *ProductController) Categories(c *gin.Context) {
	categories, err := pc.products.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CategoryProducts handles GET /api/products/category/:slug and
// GET /api/categories/:slug.
func (pc *ProductController) CategoryProducts(c *gin.Context) {
	page, limit := parsePagination(c)
	filter := parseProductFilter(c)
	filter.Category = ""

	resp, err := pc.products.ListByCategory(c.Request.Context(), c.Param("slug"), filter, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
