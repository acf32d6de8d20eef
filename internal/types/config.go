package types

import (
	"os"
	"strconv"
	"time"
)

// LoadConfigFromEnv builds a Config from DefaultConfig overridden by the process environment.
// It is meant to be called once at startup; the result is passed to the stores explicitly.
func LoadConfigFromEnv() *Config {
	config := DefaultConfig()

	config.SerperAPIKey = getEnv("SERPER_API_KEY", os.Getenv("GOOGLE_API_KEY"))
	config.ProxyServer = os.Getenv("PROXY_SERVER")
	config.ProxyUsername = os.Getenv("PROXY_USERNAME")
	config.ProxyPassword = os.Getenv("PROXY_PASSWORD")
	config.UserAgent = getEnv("USER_AGENT", config.UserAgent)
	config.Timeout = getEnvDuration("SCRAPER_TIMEOUT", config.Timeout)
	config.Headless = getEnvBool("HEADLESS", config.Headless)
	config.BlockAssets = getEnvBool("BLOCK_ASSETS", config.BlockAssets)
	config.BreakerFailures = getEnvUint32("BREAKER_FAILURES", config.BreakerFailures)
	config.BreakerCooldown = getEnvDuration("BREAKER_COOLDOWN", config.BreakerCooldown)

	return config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvUint32(key string, defaultValue uint32) uint32 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseUint(value, 10, 32); err == nil {
			return uint32(intValue)
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
