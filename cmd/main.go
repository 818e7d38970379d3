package main

import (
	"net/http"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/JenilDobariya6132/shop/internal/handler"
	mid "github.com/JenilDobariya6132/shop/internal/middleware"
	"github.com/JenilDobariya6132/shop/pkg/config"
	"github.com/JenilDobariya6132/shop/pkg/database"
	"github.com/JenilDobariya6132/shop/pkg/jwtutil"
	"github.com/JenilDobariya6132/shop/pkg/logger"
	"github.com/JenilDobariya6132/shop/prometheus"
)

func main() {
	// Load .env file; env vars set by the environment win either way
	_ = godotenv.Load()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting billing service",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics()
	log.Info("Prometheus metrics initialized")

	// Initialize database
	if err := database.InitDB(appConfig); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	handler.UploadDir = appConfig.Upload.Dir

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(mid.RequestIDMiddleware)
	e.Use(prometheus.MetricsMiddleware())
	e.Use(logger.Middleware(log))

	// Metrics endpoint
	e.GET("/metrics", prometheus.HandlerFunc())

	// Health check endpoint
	e.GET("/api/health", handler.Health)

	// Auth routes
	e.POST("/api/auth/signup", handler.Signup)
	e.POST("/api/auth/login", handler.Login)
	e.GET("/api/auth/me", handler.Me, mid.AuthMiddleware)

	// Customer routes
	customerAPI := e.Group("/api/customers", mid.AuthMiddleware)
	customerAPI.GET("", handler.ListCustomers)
	customerAPI.POST("", handler.CreateCustomer)
	customerAPI.PUT("/:id", handler.UpdateCustomer)
	customerAPI.DELETE("/:id", handler.DeleteCustomer)

	// Item routes
	itemAPI := e.Group("/api/items", mid.AuthMiddleware)
	itemAPI.GET("", handler.ListItems)
	itemAPI.POST("", handler.CreateItem)
	itemAPI.PUT("/:id", handler.UpdateItem)
	itemAPI.DELETE("/:id", handler.DeleteItem)

	// Bill routes
	billAPI := e.Group("/api/bills", mid.AuthMiddleware)
	billAPI.GET("", handler.ListBills)
	billAPI.GET("/search", handler.SearchBills)
	billAPI.GET("/:id", handler.GetBill)
	billAPI.POST("", handler.CreateBill)
	billAPI.PUT("/:id", handler.UpdateBill)
	billAPI.PATCH("/:id/payment", handler.UpdateBillPayment)
	billAPI.DELETE("/:id", handler.DeleteBill)

	// Company profile routes
	profileAPI := e.Group("/api/profile", mid.AuthMiddleware)
	profileAPI.GET("", handler.GetProfile)
	profileAPI.POST("", handler.SaveProfile)

	// Report routes
	reportAPI := e.Group("/api/reports", mid.AuthMiddleware)
	reportAPI.GET("/monthly", handler.MonthlyReport)
	reportAPI.GET("/outstanding", handler.OutstandingSummary)
	reportAPI.GET("/outstanding/:customerId", handler.OutstandingDetail)

	// Uploaded item photos and company logos
	e.Static("/item_photos", appConfig.Upload.Dir+"/item_photos")
	e.Static("/company_logos", appConfig.Upload.Dir+"/company_logos")

	// Start server
	if err := e.Start(":" + appConfig.Server.Port); err != nil && err != http.ErrServerClosed {
		log.Fatal("Server error", zap.Error(err))
	}
}
