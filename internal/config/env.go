package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config contains all configuration parameters for the iapyx CLI.
type Config struct {
	BackendAddress string `envconfig:"BACKEND_ADDRESS" default:"http://127.0.0.1:8000"`
	RequestTimeout int    `envconfig:"REQUEST_TIMEOUT_SECONDS" default:"15"`
	UseV1Batch     bool   `envconfig:"USE_V1_BATCH" default:"false"`
	Debug          bool   `envconfig:"DEBUG" default:"false"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	cfg = &Config{}
	if err := envconfig.Process("IAPYX", cfg); err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetBackendAddress returns the backend node base URL from configuration
func GetBackendAddress() string {
	return Get().BackendAddress
}

// GetRequestTimeout returns the backend request timeout from configuration
func GetRequestTimeout() time.Duration {
	return time.Duration(Get().RequestTimeout) * time.Second
}

// GetUseV1Batch reports whether batch submissions use the v1 endpoint
func GetUseV1Batch() bool {
	return Get().UseV1Batch
}

// GetDebug reports whether debug logging is enabled
func GetDebug() bool {
	return Get().Debug
}
