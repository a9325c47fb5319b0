package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Port        string
	Environment string

	// Ledger node
	RPCURL         string
	RPCTimeout     time.Duration // per-RPC deadline inside the chain client
	RPCRateLimit   float64       // outbound requests per second against the node
	BlockCacheTTL  time.Duration // block-timestamp cache lifetime
	SourceTimeout  time.Duration // per-event-source query budget in the aggregator
	ContentTimeout time.Duration // per-bookmark resolution budget

	// Contract deployments
	IdentityTokenAddr     string
	GreetingAddr          string
	BookmarkStoreAddr     string
	NativeRegistryAddr    string
	CommunityRegistryAddr string
	PortfolioRegistryAddr string
	LicenseAddr           string
	LeaderboardAddr       string
	TokenSaleAddr         string
	TipJarAddr            string

	// Activity feed window
	ActivityWindowDays int     // timestamp filter applied by the aggregator
	AvgBlockTimeSec    float64 // used to derive the block lookback from the window
	BlockLookback      uint64  // explicit override; 0 means derive

	// Scheduled jobs
	HealthCheckCron string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "3001"),
		Environment: getEnv("ENVIRONMENT", "development"),

		RPCURL:         getEnv("RPC_URL", "http://localhost:8545"),
		RPCTimeout:     getDurationEnv("RPC_TIMEOUT", 10*time.Second),
		RPCRateLimit:   getFloatEnv("RPC_RATE_LIMIT", 20.0),
		BlockCacheTTL:  getDurationEnv("BLOCK_CACHE_TTL", 10*time.Minute),
		SourceTimeout:  getDurationEnv("SOURCE_TIMEOUT", 15*time.Second),
		ContentTimeout: getDurationEnv("CONTENT_TIMEOUT", 10*time.Second),

		IdentityTokenAddr:     getEnv("IDENTITY_TOKEN_ADDR", ""),
		GreetingAddr:          getEnv("GREETING_ADDR", ""),
		BookmarkStoreAddr:     getEnv("BOOKMARK_STORE_ADDR", ""),
		NativeRegistryAddr:    getEnv("NATIVE_REGISTRY_ADDR", ""),
		CommunityRegistryAddr: getEnv("COMMUNITY_REGISTRY_ADDR", ""),
		PortfolioRegistryAddr: getEnv("PORTFOLIO_REGISTRY_ADDR", ""),
		LicenseAddr:           getEnv("LICENSE_ADDR", ""),
		LeaderboardAddr:       getEnv("LEADERBOARD_ADDR", ""),
		TokenSaleAddr:         getEnv("TOKEN_SALE_ADDR", ""),
		TipJarAddr:            getEnv("TIP_JAR_ADDR", ""),

		ActivityWindowDays: getIntEnv("ACTIVITY_WINDOW_DAYS", 30),
		AvgBlockTimeSec:    getFloatEnv("AVG_BLOCK_TIME_SEC", 12.0),
		BlockLookback:      uint64(getIntEnv("BLOCK_LOOKBACK", 0)),

		HealthCheckCron: getEnv("HEALTH_CHECK_CRON", "*/2 * * * *"),
	}
}

// ActivityWindow returns the feed time window as a duration.
func (c *Config) ActivityWindow() time.Duration {
	return time.Duration(c.ActivityWindowDays) * 24 * time.Hour
}

// LookbackBlocks returns how many blocks back the aggregator scans.
// Unless overridden, it is derived from the activity window and the average
// block time with a 2x safety factor, so a slower chain still covers the
// full window.
func (c *Config) LookbackBlocks() uint64 {
	if c.BlockLookback > 0 {
		return c.BlockLookback
	}
	windowSec := float64(c.ActivityWindowDays) * 24 * 3600
	blockTime := c.AvgBlockTimeSec
	if blockTime <= 0 {
		blockTime = 12.0
	}
	return uint64(windowSec/blockTime) * 2
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
