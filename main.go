package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neeharika666/myntra-hackerramp/clients"
	"github.com/neeharika666/myntra-hackerramp/config"
	"github.com/neeharika666/myntra-hackerramp/controllers"
	"github.com/neeharika666/myntra-hackerramp/database"
	"github.com/neeharika666/myntra-hackerramp/logger"
	"github.com/neeharika666/myntra-hackerramp/repository"
	"github.com/neeharika666/myntra-hackerramp/routes"
	"github.com/neeharika666/myntra-hackerramp/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger.Initialize(cfg.Env)
	defer logger.Log.Sync()

	if err := database.Connect(cfg.MongoURI, cfg.MongoDB); err != nil {
		logger.Log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer database.Close()

	redisClient := database.NewRedisClient(cfg.RedisURL)
	defer redisClient.Close()

	// Repositories
	productRepo := repository.NewMongoProductRepository(database.DB)
	orderRepo := repository.NewMongoOrderRepository(database.DB)
	userRepo := repository.NewMongoUserRepository(database.DB)
	categoryRepo := repository.NewMongoCategoryRepository(database.DB)
	wishlistRepo := repository.NewMongoWishlistRepository(database.DB)
	couponRepo := repository.NewMongoCouponRepository(database.DB)
	cartRepo := repository.NewRedisCartRepository(redisClient, cfg.CartTTL, cfg.IdempotencyTTL)

	// Services
	couponSvc := services.NewCouponService(couponRepo, logger.Log)
	orderSvc := services.NewOrderService(orderRepo, productRepo, cartRepo, couponSvc, services.OrderServiceOptions{
		Rules: services.PricingRules{
			FreeShippingThreshold: cfg.FreeShippingThreshold,
			ShippingFee:           cfg.ShippingFee,
			TaxRate:               cfg.TaxRate,
		},
		ReturnWindowDays: cfg.ReturnWindowDays,
		RestockOnReturn:  cfg.RestockOnReturn,
	}, logger.Log)
	authSvc := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry, logger.Log)
	userSvc := services.NewUserService(userRepo, logger.Log)
	productSvc := services.NewProductService(productRepo, categoryRepo, logger.Log)
	cartSvc := services.NewCartService(cartRepo, productRepo, logger.Log)
	wishlistSvc := services.NewWishlistService(wishlistRepo, productRepo, logger.Log)
	adminSvc := services.NewAdminService(productRepo, categoryRepo, orderRepo, userRepo, logger.Log)
	mlClient := clients.NewHTTPMLClient(cfg.MLServiceURL, cfg.MLTimeout, logger.Log)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), logger.RequestLogger())

	routes.Register(router, routes.Controllers{
		Auth:     controllers.NewAuthController(authSvc),
		User:     controllers.NewUserController(userSvc),
		Product:  controllers.NewProductController(productSvc),
		Cart:     controllers.NewCartController(cartSvc),
		Wishlist: controllers.NewWishlistController(wishlistSvc),
		Order:    controllers.NewOrderController(orderSvc),
		Admin:    controllers.NewAdminController(adminSvc, orderSvc, couponSvc),
		ML:       controllers.NewMLController(mlClient),
	}, cfg.JWTSecret)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Log.Info("Server is running", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Log.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("Shutdown error", zap.Error(err))
	}
	logger.Log.Info("Server shutdown complete")
}
