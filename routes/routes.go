package routes

import (
	"net/http"

	"github.com/neeharika666/myntra-hackerramp/controllers"
	"github.com/neeharika666/myntra-hackerramp/middleware"

	"github.com/gin-gonic/gin"
)

// Controllers bundles everything the router wires up.
type Controllers struct {
	Auth     *controllers.AuthController
	User     *controllers.UserController
	Product  *controllers.ProductController
	Cart     *controllers.CartController
	Wishlist *controllers.WishlistController
	Order    *controllers.OrderController
	Admin    *controllers.AdminController
	ML       *controllers.MLController
}

// Register mounts the full API surface on the router.
func Register(r *gin.Engine, ctrl Controllers, jwtSecret string) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(middleware.RateLimit())

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/register", ctrl.Auth.Register)
		auth.POST("/login", ctrl.Auth.Login)
	}

	products := api.Group("/products")
	{
		products.GET("", ctrl.Product.List)
		products.GET("/trending", ctrl.Product.Trending)
		products.GET("/featured", ctrl.Product.Featured)
		products.GET("/search/suggestions", ctrl.Product.Suggestions)
		products.GET("/category/:slug", ctrl.Product.CategoryProducts)
		products.GET("/:id", ctrl.Product.Get)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", ctrl.Product.Categories)
		categories.GET("/:slug", ctrl.Product.CategoryProducts)
	}

	// ML proxy routes
	api.POST("/recommend", ctrl.ML.Recommend)
	api.GET("/recommend/trending", ctrl.ML.Trending)
	api.POST("/color-map", ctrl.ML.MapColor)
	api.POST("/try-on", ctrl.ML.TryOn)

	// Authenticated routes
	authed := api.Group("")
	authed.Use(middleware.Auth(jwtSecret))
	{
		authed.GET("/auth/me", ctrl.Auth.Me)

		addresses := authed.Group("/users/addresses")
		{
			addresses.GET("", ctrl.User.ListAddresses)
			addresses.POST("", ctrl.User.AddAddress)
			addresses.PUT("/:id", ctrl.User.UpdateAddress)
			addresses.DELETE("/:id", ctrl.User.DeleteAddress)
		}

		cart := authed.Group("/cart")
		{
			cart.GET("", ctrl.Cart.GetCart)
			cart.POST("/add", ctrl.Cart.AddItem)
			cart.PUT("/update", ctrl.Cart.UpdateItem)
			cart.DELETE("/remove", ctrl.Cart.RemoveItem)
			cart.DELETE("/clear", ctrl.Cart.ClearCart)
		}

		wishlist := authed.Group("/wishlist")
		{
			wishlist.GET("", ctrl.Wishlist.GetWishlist)
			wishlist.POST("/add", ctrl.Wishlist.AddItem)
			wishlist.DELETE("/remove", ctrl.Wishlist.RemoveItem)
			wishlist.DELETE("/clear", ctrl.Wishlist.Clear)
			wishlist.GET("/check/:productId", ctrl.Wishlist.Contains)
		}

		orders := authed.Group("/orders")
		{
			orders.POST("", ctrl.Order.Checkout)
			orders.GET("", ctrl.Order.ListMine)
			orders.GET("/:id", ctrl.Order.Get)
			orders.PUT("/:id/cancel", ctrl.Order.Cancel)
			orders.PUT("/:id/return", ctrl.Order.Return)
		}
	}

	// Admin routes
	admin := api.Group("/admin")
	admin.Use(middleware.Auth(jwtSecret), middleware.RequireAdmin())
	{
		admin.GET("/dashboard", ctrl.Admin.Dashboard)

		admin.GET("/products", ctrl.Admin.ListProducts)
		admin.POST("/products", ctrl.Admin.CreateProduct)
		admin.PUT("/products/:id", ctrl.Admin.UpdateProduct)
		admin.DELETE("/products/:id", ctrl.Admin.DeleteProduct)

		admin.GET("/categories", ctrl.Admin.ListCategories)
		admin.POST("/categories", ctrl.Admin.CreateCategory)

		admin.GET("/orders", ctrl.Admin.ListOrders)
		admin.PUT("/orders/:id/status", ctrl.Admin.UpdateOrderStatus)

		admin.GET("/coupons", ctrl.Admin.ListCoupons)
		admin.POST("/coupons", ctrl.Admin.CreateCoupon)
		admin.DELETE("/coupons/:code", ctrl.Admin.DeactivateCoupon)
	}
}
