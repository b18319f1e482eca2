package main

import (
	"context"
	"log"
	"time"

	"filetable-gateway/internal/config"
	"filetable-gateway/internal/controller"
	"filetable-gateway/internal/format"
	"filetable-gateway/internal/middleware"
	"filetable-gateway/internal/model"
	"filetable-gateway/internal/repository"
	"filetable-gateway/internal/security"
	"filetable-gateway/internal/service"
	"filetable-gateway/internal/table"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Set Gin mode
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database connection
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Auto migrate database schema
	if err := db.AutoMigrate(&model.TableDefinition{}); err != nil {
		log.Printf("Warning: Database migration failed: %v", err)
		log.Println("Continuing with existing database schema...")
	}

	// Initialize repositories
	tableRepo := repository.NewTableRepository(db)

	// Initialize security
	jwtManager := security.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.JWTExpiration)
	authMiddleware := security.NewAuthMiddleware(jwtManager)

	// Initialize rate limiting
	rateLimitConfig := middleware.RateLimiterConfig{
		RPM:             cfg.Security.RateLimitPerMinute,
		Burst:           cfg.Security.RateLimitBurst,
		CleanupInterval: 5 * time.Minute,
	}
	rateLimiter := middleware.NewRateLimiter(rateLimitConfig)

	// Initialize Prometheus metrics
	middleware.InitMetrics()

	// Case sensitivity applies to every table served by this instance.
	mode := table.CaseInsensitive
	if cfg.Resolver.CaseSensitive {
		mode = table.CaseSensitive
	}

	// Initialize services
	formats := format.DefaultRegistry()
	resolutionMetrics := service.NewResolutionMetricsCollector(cfg.Resolver.MetricsRetention)
	tableService := service.NewTableService(tableRepo, formats, resolutionMetrics, mode, cfg.Resolver.CacheTTL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go resolutionMetrics.StartCleanupRoutine(ctx)
	go tableService.StartCacheCleanup(ctx)

	// Initialize controllers
	tableController := controller.NewTableController(tableService, resolutionMetrics)
	healthController := controller.NewHealthController(db)

	// Create Gin router
	router := gin.New()

	// Add middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.Cors())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.PrometheusMiddleware())

	// Add rate limiting if enabled
	if cfg.Security.EnableRateLimit {
		router.Use(rateLimiter.RateLimit())
	}

	// Health check endpoint (always available)
	router.GET("/health", healthController.HealthCheck)

	// Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 group
	api := router.Group("/api/v1")

	// Public endpoints (no authentication required)
	public := api.Group("")
	{
		public.GET("/health", healthController.HealthCheck)
		public.GET("/formats", tableController.ListFormats)
	}

	// Auth endpoints (authentication required)
	auth := api.Group("")
	if cfg.Security.EnableAuth {
		auth.Use(authMiddleware.RequireAuth())
	}
	{
		// Table endpoints
		tables := auth.Group("/tables")
		{
			tables.POST("", tableController.CreateTable)
			tables.GET("", tableController.ListTables)
			tables.GET("/:id", tableController.GetTable)
			tables.DELETE("/:id", tableController.DeleteTable)
			tables.GET("/:id/schema", tableController.GetSchema)
			tables.GET("/:id/capabilities", tableController.GetCapabilities)
			tables.POST("/:id/refresh", tableController.RefreshTable)
		}

		// Resolution metrics endpoint
		metrics := auth.Group("/metrics")
		{
			metrics.GET("/resolutions", tableController.GetResolutionMetrics)
		}
	}

	// Start server
	log.Printf("Starting server on port %s", cfg.Server.Port)
	log.Printf("Health check available at: http://localhost:%s/health", cfg.Server.Port)

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
