package middleware

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimitConfig holds rate limiting settings
type RateLimitConfig struct {
	// Global limits (per IP)
	GlobalAPIMax        int           // Max requests per minute for all API endpoints
	GlobalAPIExpiration time.Duration // Expiration window

	// Feed endpoint limits (per IP) - every request fans out to the node
	FeedMax        int
	FeedExpiration time.Duration

	// Bookmark endpoint limits (per IP) - sequential node reads per entry
	BookmarkMax        int
	BookmarkExpiration time.Duration
}

// DefaultRateLimitConfig returns production-safe defaults
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		// Global: 200/min - very generous for normal browsing
		GlobalAPIMax:        200,
		GlobalAPIExpiration: 1 * time.Minute,

		// Feed: each request costs one fan-out across every event source
		FeedMax:        30,
		FeedExpiration: 1 * time.Minute,

		// Bookmarks: each request costs one node read per bookmark entry
		BookmarkMax:        20,
		BookmarkExpiration: 1 * time.Minute,
	}
}

// LoadRateLimitConfig loads config from environment variables with defaults
func LoadRateLimitConfig() *RateLimitConfig {
	config := DefaultRateLimitConfig()

	if v := os.Getenv("RATE_LIMIT_GLOBAL_API"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.GlobalAPIMax = n
		}
	}

	if v := os.Getenv("RATE_LIMIT_FEED"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.FeedMax = n
		}
	}

	if v := os.Getenv("RATE_LIMIT_BOOKMARKS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.BookmarkMax = n
		}
	}

	// Development mode: more lenient limits
	if os.Getenv("ENVIRONMENT") == "development" {
		config.GlobalAPIMax = 1000
		config.FeedMax = 300
		config.BookmarkMax = 200
		log.Println("⚠️  [RATE-LIMIT] Development mode: using relaxed rate limits")
	}

	return config
}

// GlobalAPIRateLimiter creates a rate limiter for all API requests
func GlobalAPIRateLimiter(config *RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.GlobalAPIMax,
		Expiration: config.GlobalAPIExpiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "global:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Printf("🚫 [RATE-LIMIT] Global limit reached for IP: %s", c.IP())
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Too many requests. Please slow down.",
				"retry_after": int(config.GlobalAPIExpiration.Seconds()),
			})
		},
		SkipFailedRequests:     false,
		SkipSuccessfulRequests: false,
	})
}

// FeedRateLimiter for the activity feed endpoints
func FeedRateLimiter(config *RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.FeedMax,
		Expiration: config.FeedExpiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "feed:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Printf("⚠️  [RATE-LIMIT] Feed limit reached for IP: %s on %s", c.IP(), c.Path())
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Too many requests to this endpoint.",
				"retry_after": int(config.FeedExpiration.Seconds()),
			})
		},
	})
}

// BookmarkRateLimiter for the bookmark resolution endpoints
func BookmarkRateLimiter(config *RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.BookmarkMax,
		Expiration: config.BookmarkExpiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "bookmarks:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Printf("⚠️  [RATE-LIMIT] Bookmark limit reached for IP: %s on %s", c.IP(), c.Path())
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Too many requests to this endpoint.",
				"retry_after": int(config.BookmarkExpiration.Seconds()),
			})
		},
	})
}
