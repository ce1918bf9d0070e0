package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// Idempotency
	IdempotencyKeyTTL    time.Duration
	IdempotencySweepTick time.Duration

	// Single-writer dispatcher
	WorkerPoolSize int

	// Payment retry
	CircuitFailureThreshold int
	CircuitCooldown         time.Duration

	// Rate limiting, e.g. "100-M" for 100 requests per minute
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("IDEMPOTENCY_KEY_TTL", "24h")
	viper.SetDefault("IDEMPOTENCY_SWEEP_TICK", "1h")
	viper.SetDefault("WORKER_POOL_SIZE", 64)
	viper.SetDefault("CIRCUIT_FAILURE_THRESHOLD", 6)
	viper.SetDefault("CIRCUIT_COOLDOWN", "60s")
	viper.SetDefault("RATE_LIMIT", "300-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IdempotencyKeyTTL = parseDurationOr("IDEMPOTENCY_KEY_TTL", 24*time.Hour)
	cfg.IdempotencySweepTick = parseDurationOr("IDEMPOTENCY_SWEEP_TICK", time.Hour)
	cfg.CircuitCooldown = parseDurationOr("CIRCUIT_COOLDOWN", 60*time.Second)

	cfg.WorkerPoolSize = viper.GetInt("WORKER_POOL_SIZE")
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = 64
		log.Printf("Warning: Invalid WORKER_POOL_SIZE. Defaulting to %d.\n", cfg.WorkerPoolSize)
	}

	cfg.CircuitFailureThreshold = viper.GetInt("CIRCUIT_FAILURE_THRESHOLD")
	if cfg.CircuitFailureThreshold <= 0 {
		cfg.CircuitFailureThreshold = 6
		log.Printf("Warning: Invalid CIRCUIT_FAILURE_THRESHOLD. Defaulting to %d.\n", cfg.CircuitFailureThreshold)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}

func parseDurationOr(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}
