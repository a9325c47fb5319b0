package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"inkchain/internal/chain"
	"inkchain/internal/config"
	"inkchain/internal/handlers"
	"inkchain/internal/jobs"
	"inkchain/internal/logging"
	"inkchain/internal/middleware"
	"inkchain/internal/registry"
	"inkchain/internal/services"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting InkChain Server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// Load configuration
	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s, RPC: %s)", cfg.Port, cfg.RPCURL)

	// Connect to the chain node (read-only; nothing is persisted locally)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	chainClient, err := chain.Dial(ctx, cfg.RPCURL, chain.Options{
		Timeout:       cfg.RPCTimeout,
		RateLimit:     cfg.RPCRateLimit,
		BlockCacheTTL: cfg.BlockCacheTTL,
	})
	cancel()
	if err != nil {
		log.Fatalf("❌ Failed to connect to chain node: %v", err)
	}
	defer chainClient.Close()
	log.Println("✅ Chain node connection established")

	// Contract read surfaces
	identityToken := chain.NewIdentityToken(chainClient, common.HexToAddress(cfg.IdentityTokenAddr))
	bookmarkStore := chain.NewBookmarkStore(chainClient, common.HexToAddress(cfg.BookmarkStoreAddr))
	nativeRegistry := chain.NewNativeRegistry(chainClient, common.HexToAddress(cfg.NativeRegistryAddr))
	communityRegistry := chain.NewCommunityRegistry(chainClient, common.HexToAddress(cfg.CommunityRegistryAddr))
	portfolioRegistry := chain.NewPortfolioRegistry(chainClient, common.HexToAddress(cfg.PortfolioRegistryAddr))

	// Event source table: one entry per event family that counts as activity
	sources := registry.Sources(cfg)
	log.Printf("✅ Event source registry loaded: %d sources, lookback %d blocks",
		len(sources), cfg.LookbackBlocks())

	// Core services
	addressResolver := services.NewAddressResolver(identityToken)
	activityService := services.NewActivityService(
		chainClient, sources, cfg.ActivityWindow(), cfg.LookbackBlocks(), cfg.SourceTimeout)
	contentService := services.NewContentService(nativeRegistry, communityRegistry, portfolioRegistry)
	bookmarkService := services.NewBookmarkService(contentService, cfg.ContentTimeout)

	// Background jobs
	chainHealth := jobs.NewChainHealthChecker(chainClient, cfg.RPCTimeout)
	scheduler, err := jobs.NewScheduler()
	if err != nil {
		log.Fatalf("❌ Failed to create job scheduler: %v", err)
	}
	if err := scheduler.RegisterCron("chain-health", cfg.HealthCheckCron, chainHealth.Run); err != nil {
		log.Fatalf("❌ Failed to register chain health job: %v", err)
	}
	scheduler.Start()
	// Prime the health status so /health is meaningful before the first tick
	go chainHealth.Run(context.Background())

	app := fiber.New(fiber.Config{
		AppName:      "InkChain v1.0",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    1 * 1024 * 1024, // bookmark lists are small
		UnescapePath: true,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	// Prometheus metrics middleware
	prometheus := fiberprometheus.New("inkchain")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	// Load rate limiting configuration
	rateLimitConfig := middleware.LoadRateLimitConfig()
	log.Printf("🛡️  [RATE-LIMIT] Loaded config: Global=%d/min, Feed=%d/min, Bookmarks=%d/min",
		rateLimitConfig.GlobalAPIMax,
		rateLimitConfig.FeedMax,
		rateLimitConfig.BookmarkMax,
	)

	// CORS configuration with environment-based origins
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173,http://localhost:3000"
		log.Println("⚠️  ALLOWED_ORIGINS not set, using development defaults")
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept",
		AllowCredentials: allowedOrigins != "*",
	}))

	// Global API rate limiter - first line of defense
	app.Use("/api", middleware.GlobalAPIRateLimiter(rateLimitConfig))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(chainHealth)
	activityHandler := handlers.NewActivityHandler(addressResolver, activityService)
	bookmarkHandler := handlers.NewBookmarkHandler(addressResolver, bookmarkStore, bookmarkService)

	// Routes
	app.Get("/health", healthHandler.Handle)

	api := app.Group("/api")
	api.Get("/profiles/:identifier/activities",
		middleware.FeedRateLimiter(rateLimitConfig), activityHandler.List)
	api.Get("/profiles/:identifier/bookmarks",
		middleware.BookmarkRateLimiter(rateLimitConfig), bookmarkHandler.ListForProfile)
	api.Post("/bookmarks/resolve",
		middleware.BookmarkRateLimiter(rateLimitConfig), bookmarkHandler.Resolve)

	log.Printf("📡 Health check: http://localhost:%s/health", cfg.Port)
	log.Printf("📰 Activity feed: http://localhost:%s/api/profiles/:identifier/activities", cfg.Port)
	log.Printf("🔖 Bookmarks: http://localhost:%s/api/profiles/:identifier/bookmarks", cfg.Port)

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")

		if err := scheduler.Stop(); err != nil {
			log.Printf("⚠️ Error stopping scheduler: %v", err)
		}

		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
