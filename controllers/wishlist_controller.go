package controllers

import (
	"net/http"

	"github.com/neeharika666/myntra-hackerramp/middleware"
	"github.com/neeharika666/myntra-hackerramp/services"

	"github.com/gin-gonic/gin"
)

type WishlistController struct {
	wishlists *services.WishlistService
}

func NewWishlistController(wishlists *services.WishlistService) *WishlistController {
	return &WishlistController{wishlists: wishlists}
}

// GetWishlist handles GET /api/wishlist.
func (wc *WishlistController) GetWishlist(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}

	resp, err := wc.wishlists.GetWishlist(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// wishlistItemRequest names the product to add or remove.
type wishlistItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

// AddItem handles POST /api/wishlist/add.
func (wc *WishlistController) AddItem(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}

	var req wishlistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	wishlist, err := wc.wishlists.AddItem(c.Request.Context(), userID, req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wishlist": wishlist})
}

// RemoveItem handles DELETE /api/wishlist/remove.
func (wc *WishlistController) RemoveItem(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}

	var req wishlistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	wishlist, err := wc.wishlists.RemoveItem(c.Request.Context(), userID, req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wishlist": wishlist})
}

// Clear handles DELETE /api/wishlist/clear.
func (wc *WishlistController) Clear(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}

	wishlist, err := wc.wishlists.ClearWishlist(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wishlist": wishlist})
}

// Contains handles GET /api/wishlist/check/:productId.
func (wc *WishlistController) Contains(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}

	saved, err := wc.wishlists.Contains(c.Request.Context(), userID, c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inWishlist": saved})
}
