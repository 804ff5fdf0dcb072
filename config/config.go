package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// NATS configuration; empty disables the message bus
	NatsURL string

	// Platform configuration
	PlatformAdminAddress string

	// Default round parameters, used when a create command omits them
	DefaultEntryFee           int64
	DefaultMaxEntries         int
	DefaultLotteryFeeDivisor  int64
	DefaultPlatformFeeDivisor int64

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Database
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// NATS
		NatsURL: os.Getenv("NATS_URL"),

		// Platform
		PlatformAdminAddress: os.Getenv("PLATFORM_ADMIN_ADDRESS"),

		// Round defaults: divisor semantics, fee = pool / divisor
		DefaultEntryFee:           1000,
		DefaultMaxEntries:         10,
		DefaultLotteryFeeDivisor:  25,
		DefaultPlatformFeeDivisor: 50,

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if fee := os.Getenv("DEFAULT_ENTRY_FEE"); fee != "" {
		if parsedFee, err := strconv.ParseInt(fee, 10, 64); err == nil {
			config.DefaultEntryFee = parsedFee
		}
	}
	if max := os.Getenv("DEFAULT_MAX_ENTRIES"); max != "" {
		if parsedMax, err := strconv.Atoi(max); err == nil {
			config.DefaultMaxEntries = parsedMax
		}
	}
	if div := os.Getenv("DEFAULT_LOTTERY_FEE_DIVISOR"); div != "" {
		if parsedDiv, err := strconv.ParseInt(div, 10, 64); err == nil {
			config.DefaultLotteryFeeDivisor = parsedDiv
		}
	}
	if div := os.Getenv("DEFAULT_PLATFORM_FEE_DIVISOR"); div != "" {
		if parsedDiv, err := strconv.ParseInt(div, 10, 64); err == nil {
			config.DefaultPlatformFeeDivisor = parsedDiv
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.PlatformAdminAddress == "" {
			return nil, fmt.Errorf("PLATFORM_ADMIN_ADDRESS is required")
		}
	}

	return config, nil
}
