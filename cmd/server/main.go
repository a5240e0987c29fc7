package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/campuskart/campus-market-api/internal/auth"
	"github.com/campuskart/campus-market-api/internal/captcha"
	"github.com/campuskart/campus-market-api/internal/cart"
	"github.com/campuskart/campus-market-api/internal/database"
	"github.com/campuskart/campus-market-api/internal/items"
	"github.com/campuskart/campus-market-api/internal/orders"
	"github.com/campuskart/campus-market-api/pkg/cache"
	"github.com/campuskart/campus-market-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// init configures the application logging based on environment settings
// In development mode, it enables pretty printing with timestamps
// Debug logging can be enabled via DEBUG environment variable
func init() {
	// Configure pretty logging for development
	if os.Getenv("ENV") != "production" {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		zlog.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	// Set global log level
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("DEBUG") == "true" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// main initializes and runs the marketplace API server with graceful
// shutdown support.
func main() {
	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "campuskart.db"
	}

	db, err := database.NewDatabase(dbPath)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize database")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "campuskart-secret-key"
	}

	// Initialize router
	router := gin.Default()

	// Captcha challenges live in the expiring cache; the sweep runs
	// until shutdown.
	challengeStore := cache.New(time.Minute)
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	go challengeStore.Start(sweepCtx)

	// Initialize services and handlers
	captchaService := captcha.NewService(challengeStore)

	authService := auth.NewService(db, jwtSecret)
	authHandlers := auth.NewGinHandlers(authService, captchaService)

	itemService := items.NewService(db)
	itemHandlers := items.NewGinHandlers(itemService)

	cartService := cart.NewService(db, itemService)
	cartHandlers := cart.NewGinHandlers(cartService)

	orderService := orders.NewService(db, cartService)
	orderHandlers := orders.NewGinHandlers(orderService)

	// Setup middleware
	router.Use(middleware.RateLimit())

	// Setup API routes
	setupRoutes(router, jwtSecret, authHandlers, captchaService, itemHandlers, cartHandlers, orderHandlers)

	// Get port from env otherwise it's 8080
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Create server
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Graceful shutdown setup
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msg("listen")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info().Msg("Shutting down server...")

	// Give outstanding operations 5 seconds to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	zlog.Info().Msg("Server exiting")
}

// setupRoutes configures all API endpoints and their handlers.
// Catalog browsing and auth are public; cart and order routes require
// a valid JWT, which supplies the requester identity every order
// operation keys its role checks on.
func setupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authHandlers *auth.GinHandlers,
	captchaService *captcha.Service,
	itemHandlers *items.GinHandlers,
	cartHandlers *cart.GinHandlers,
	orderHandlers *orders.GinHandlers,
) {
	v1 := router.Group("/api/v1")
	{
		// Auth routes
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandlers.RegisterHandler())
			authGroup.POST("/login", authHandlers.LoginHandler())
			authGroup.POST("/logout", middleware.JWTAuth(jwtSecret), authHandlers.LogoutHandler())
		}

		// Account routes
		usersGroup := v1.Group("/users")
		usersGroup.Use(middleware.JWTAuth(jwtSecret))
		{
			usersGroup.GET("/profile", authHandlers.ProfileHandler())
			usersGroup.PUT("/profile", authHandlers.UpdateProfileHandler())
			usersGroup.GET("/items", itemHandlers.OwnItemsHandler())
		}

		v1.GET("/captcha", captchaService.ChallengeHandler())

		// Catalog routes; listing an item requires auth
		itemsGroup := v1.Group("/items")
		{
			itemsGroup.GET("", itemHandlers.ListItemsHandler())
			itemsGroup.GET("/:id", itemHandlers.GetItemHandler())
			itemsGroup.POST("", middleware.JWTAuth(jwtSecret), itemHandlers.CreateItemHandler())
			itemsGroup.DELETE("/:id", middleware.JWTAuth(jwtSecret), itemHandlers.DeleteItemHandler())
		}

		// Cart routes
		cartGroup := v1.Group("/cart")
		cartGroup.Use(middleware.JWTAuth(jwtSecret))
		{
			cartGroup.GET("", cartHandlers.GetCartHandler())
			cartGroup.POST("/add", cartHandlers.AddToCartHandler())
			cartGroup.DELETE("/:item_id", cartHandlers.RemoveFromCartHandler())
		}

		// Order routes
		ordersGroup := v1.Group("/orders")
		ordersGroup.Use(middleware.JWTAuth(jwtSecret))
		{
			ordersGroup.POST("/create", orderHandlers.CreateOrdersHandler())
			ordersGroup.GET("", orderHandlers.ListOrdersHandler())
			ordersGroup.GET("/pending-deliveries", orderHandlers.PendingDeliveriesHandler())
			ordersGroup.POST("/:id/generate-otp", orderHandlers.GenerateOTPHandler())
			ordersGroup.POST("/:id/verify-otp", orderHandlers.VerifyOTPHandler())
			ordersGroup.PUT("/:id/complete", orderHandlers.CompleteDeliveryHandler())
		}
	}
}
