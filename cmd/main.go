package main

import (
	"pos-service/internal/handler"
	mid "pos-service/internal/middleware"
	"pos-service/internal/pos"
	"pos-service/internal/store"
	"pos-service/internal/store/gormstore"
	"pos-service/internal/store/memstore"
	"pos-service/pkg/cache"
	"pos-service/pkg/config"
	"pos-service/pkg/database"
	"pos-service/pkg/jwtutil"
	"pos-service/pkg/logger"
	"pos-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration (reads .env if present)
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting pos-service", appConfig.LogConfig()...)

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize the backing store
	var st store.Store
	if appConfig.Store == "memory" {
		st = memstore.NewSeeded(appConfig.POS.AdminPassword, appConfig.POS.EmployeePassword)
		log.Info("Using in-memory store with seed data")
	} else {
		db, err := database.InitDB(appConfig)
		if err != nil {
			log.Fatal("Failed to initialize database", zap.Error(err))
		}
		if err := database.SeedUsers(db, &appConfig.POS, log); err != nil {
			log.Fatal("Failed to seed users", zap.Error(err))
		}
		st = gormstore.New(db)
		log.Info("Database connection established")
	}

	// Redis cache, nil when disabled
	appCache := cache.New(appConfig.Redis, log)

	// Services
	catalog := pos.NewCatalogService(st, appCache, log)
	checkout := pos.NewCheckoutService(st, appCache, log, appConfig.POS.PointsDivisor)
	members := pos.NewMemberService(st, log)
	reports := pos.NewReportService(st, appCache, log,
		appConfig.POS.LowStockThreshold,
		appConfig.POS.TopSellingDashboard,
		appConfig.POS.TopSellingReport)

	// Handlers
	authHandler := handler.NewAuthHandler(st)
	productHandler := handler.NewProductHandler(catalog)
	saleHandler := handler.NewSaleHandler(checkout)
	memberHandler := handler.NewMemberHandler(members)
	reportHandler := handler.NewReportHandler(reports)

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Open endpoints
	e.GET("/api/health", handler.Health)
	e.POST("/api/login", authHandler.Login, mid.RateLimitMiddleware("10-M"))

	// Product API routes
	productAPI := e.Group("/api/products", mid.AuthMiddleware)
	productAPI.GET("", productHandler.List)
	productAPI.POST("", productHandler.Create)
	productAPI.PUT("/:id", productHandler.Update)
	productAPI.DELETE("/:id", productHandler.Delete)
	productAPI.POST("/:id/stock", productHandler.AdjustStock)
	productAPI.POST("/scan", productHandler.Scan)
	productAPI.POST("/scan-in", productHandler.ScanIn)
	productAPI.POST("/find", productHandler.Find)
	productAPI.POST("/update-stock", productHandler.UpdateStock)

	// Stock movement log
	e.GET("/api/stock-movements", productHandler.Movements, mid.AuthMiddleware)

	// Sales
	e.POST("/api/sales", saleHandler.Create, mid.AuthMiddleware)

	// Members
	memberAPI := e.Group("/api/members", mid.AuthMiddleware)
	memberAPI.GET("", memberHandler.List)
	memberAPI.POST("", memberHandler.Create)
	memberAPI.GET("/:id/transactions", memberHandler.Transactions)

	// Dashboard and reports
	e.GET("/api/dashboard/summary", reportHandler.Summary, mid.AuthMiddleware)
	e.GET("/api/reports/sales", reportHandler.Sales, mid.AuthMiddleware)
	e.GET("/api/reports/products", reportHandler.Products, mid.AuthMiddleware)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
