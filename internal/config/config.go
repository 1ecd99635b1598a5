// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	defaultPort        = 8080
	defaultMetricsPort = 9090
	defaultGinMode     = "release"
	defaultSeedLevels  = 20
	defaultBTCMid      = "50000.50"
	defaultETHMid      = "3000.50"
)

// SeedConfig controls the synthetic liquidity one book starts with.
type SeedConfig struct {
	Mid    decimal.Decimal
	Levels int
}

// Config keeps the runtime configuration for the service.
type Config struct {
	Port        int
	MetricsPort int
	GinMode     string
	BTCSeed     SeedConfig
	ETHSeed     SeedConfig
}

// Load builds Config from environment variables, reading an optional
// .env file first. Unset variables fall back to defaults.
func Load() (*Config, error) {
	// Missing .env is fine; it only exists in development setups.
	_ = godotenv.Load()

	port, err := getInt("PORT", defaultPort)
	if err != nil {
		return nil, err
	}
	metricsPort, err := getInt("METRICS_PORT", defaultMetricsPort)
	if err != nil {
		return nil, err
	}
	levels, err := getInt("SEED_LEVELS", defaultSeedLevels)
	if err != nil {
		return nil, err
	}
	btcMid, err := getDecimal("SEED_BTC_MID", defaultBTCMid)
	if err != nil {
		return nil, err
	}
	ethMid, err := getDecimal("SEED_ETH_MID", defaultETHMid)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:        port,
		MetricsPort: metricsPort,
		GinMode:     getString("GIN_MODE", defaultGinMode),
		BTCSeed:     SeedConfig{Mid: btcMid, Levels: levels},
		ETHSeed:     SeedConfig{Mid: ethMid, Levels: levels},
	}, nil
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getDecimal(key, fallback string) (decimal.Decimal, error) {
	v := os.Getenv(key)
	if v == "" {
		v = fallback
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
