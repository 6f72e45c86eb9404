package main

import (
	"freshbulk-service/internal/handler"
	"freshbulk-service/internal/mailer"
	mid "freshbulk-service/internal/middleware"
	"freshbulk-service/internal/storage"
	"freshbulk-service/pkg/config"
	"freshbulk-service/pkg/jwtutil"
	"freshbulk-service/pkg/logger"
	"freshbulk-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(appConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting freshbulk-service", appConfig.LogConfig()...)

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize storage backend (memory or postgres)
	if err := storage.Init(appConfig); err != nil {
		log.Fatal("Failed to initialize storage", zap.Error(err))
	}
	log.Info("Storage initialized", zap.String("driver", appConfig.Storage.Driver))

	// Initialize email notifications
	mailer.Init(&appConfig.Mail)

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Auth routes
	authAPI := e.Group("/api/auth")
	authAPI.POST("/register", handler.Register)
	authAPI.POST("/login", handler.Login)
	authAPI.GET("/me", handler.Me, mid.AuthMiddleware)

	// Product routes - catalog is public, management is admin-only
	productAPI := e.Group("/api/products")
	productAPI.GET("", handler.ListProducts)
	productAPI.GET("/categories", handler.ListCategories)
	productAPI.GET("/:id", handler.GetProduct)
	productAPI.POST("", handler.CreateProduct, mid.AuthMiddleware, mid.AdminMiddleware)
	productAPI.PUT("/:id", handler.UpdateProduct, mid.AuthMiddleware, mid.AdminMiddleware)
	productAPI.DELETE("/:id", handler.DeleteProduct, mid.AuthMiddleware, mid.AdminMiddleware)

	// Order routes - guests can place and track orders
	orderAPI := e.Group("/api/orders")
	orderAPI.POST("", handler.CreateOrder)
	orderAPI.GET("/track/:orderNumber", handler.TrackOrder)
	orderAPI.GET("", handler.ListOrders, mid.AuthMiddleware, mid.AdminMiddleware)
	orderAPI.GET("/:id", handler.GetOrder, mid.AuthMiddleware)
	orderAPI.PATCH("/:id/status", handler.UpdateOrderStatus, mid.AuthMiddleware, mid.AdminMiddleware)

	// Address routes - authenticated; customers limited to their own email
	addressAPI := e.Group("/api/addresses", mid.AuthMiddleware)
	addressAPI.GET("", handler.ListAddresses)
	addressAPI.GET("/:id", handler.GetAddress)
	addressAPI.POST("", handler.CreateAddress)
	addressAPI.PUT("/:id", handler.UpdateAddress)
	addressAPI.DELETE("/:id", handler.DeleteAddress)
	addressAPI.PATCH("/:id/set-default", handler.SetDefaultAddress)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
