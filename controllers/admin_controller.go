package controllers

import (
	"net/http"

	"github.com/neeharika666/myntra-hackerramp/models"
	"github.com/neeharika666/myntra-hackerramp/services"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	admin   *services.AdminService
	orders  *services.OrderService
	coupons *services.CouponService
}

func NewAdminController(admin *services.AdminService, orders *services.OrderService, coupons *services.CouponService) *AdminController {
	return &AdminController{admin: admin, orders: orders, coupons: coupons}
}

// Dashboard handles GET /api/admin/dashboard.
func (ac *AdminController) Dashboard(c *gin.Context) {
	stats, err := ac.admin.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListProducts handles GET /api/admin/products, inactive included.
func (ac *AdminController) ListProducts(c *gin.Context) {
	page, limit := parsePagination(c)

	resp, err := ac.admin.ListAllProducts(c.Request.Context(), parseProductFilter(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateProduct handles POST /api/admin/products.
func (ac *AdminController) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := ac.admin.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// UpdateProduct handles PUT /api/admin/products/:id.
func (ac *AdminController) UpdateProduct(c *gin.Context) {
	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := ac.admin.UpdateProduct(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// DeleteProduct handles DELETE /api/admin/products/:id.
func (ac *AdminController) DeleteProduct(c *gin.Context) {
	if err := ac.admin.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product deactivated"})
}

// ListCategories handles GET /api/admin/categories, inactive included.
func (ac *AdminController) ListCategories(c *gin.Context) {
	categories, err := ac.admin.ListCategories(c.Request.Context(), false)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CreateCategory handles POST /api/admin/categories.
func (ac *AdminController) CreateCategory(c *gin.Context) {
	var req services.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	category, err := ac.admin.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// ListOrders handles GET /api/admin/orders.
func (ac *AdminController) ListOrders(c *gin.Context) {
	page, limit := parsePagination(c)

	resp, err := ac.orders.GetAllOrders(c.Request.Context(), c.Query("status"), c.Query("search"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateOrderStatus handles PUT /api/admin/orders/:id/status.
func (ac *AdminController) UpdateOrderStatus(c *gin.Context) {
	var req services.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	order, err := ac.orders.UpdateStatus(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// CreateCoupon handles POST /api/admin/coupons.
func (ac *AdminController) CreateCoupon(c *gin.Context) {
	var req models.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	coupon, err := ac.coupons.CreateCoupon(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"coupon": coupon})
}

// ListCoupons handles GET /api/admin/coupons.
func (ac *AdminController) ListCoupons(c *gin.Context) {
	page, limit := parsePagination(c)

	coupons, meta, err := ac.coupons.ListCoupons(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupons": coupons, "meta": meta})
}

// DeactivateCoupon handles DELETE /api/admin/coupons/:code.
func (ac *AdminController) DeactivateCoupon(c *gin.Context) {
	if err := ac.coupons.DeactivateCoupon(c.Request.Context(), c.Param("code")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "coupon deactivated"})
}
