// Copyright 2025 Certen Protocol
//
// Node configuration: environment variables with safe defaults, loaded the
// same getEnv/getEnvInt/getEnvBool way as the reference implementation,
// plus an optional YAML overlay file layered on top for values operators
// prefer to keep out of the environment (connection URLs, the registry
// address, bundling limits).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every setting the node's components need at startup.
type Config struct {
	// Entity Repository (C3)
	MongoURI         string
	MongoDatabase     string
	MongoMaxPoolSize  uint64
	MongoMinPoolSize  uint64
	MongoConnTimeout  time.Duration

	// External blockchain client (§6) / Upload & Challenges Repository (C5)
	EthereumURL          string
	RegistryAddress      string
	EthPrivateKey        string
	BundleItemsCountLimit int
	ChainSyncPollInterval time.Duration

	// Worker cadence (§4.3)
	UploadWorkerInterval    time.Duration
	ChallengeWorkerInterval time.Duration
	UploadRetryPeriodTicks  int
	ChallengeRetryTimeout   time.Duration

	// Failed-Challenge Cache (C6)
	ChallengeCacheDir string

	// Entity Validator (C2)
	TimestampLimitSeconds int64

	// Worker audit log (pkg/workerlog)
	WorkerLogEnabled   bool
	FirebaseProjectID  string
	FirebaseCredsFile  string

	// Service identity
	ValidatorID string
	LogLevel    string

	// MetricsAddr is where the prometheus handler is served.
	MetricsAddr string

	// OverlayFile, when set, is a YAML file layered over the environment
	// defaults above (file values win). Applied by Load when CONFIG_FILE
	// is set.
	OverlayFile string
}

// overlay mirrors the subset of Config an operator may reasonably want to
// keep in a checked-in YAML file rather than the environment.
type overlay struct {
	MongoURI              *string `yaml:"mongoUri"`
	MongoDatabase          *string `yaml:"mongoDatabase"`
	EthereumURL            *string `yaml:"ethereumUrl"`
	RegistryAddress        *string `yaml:"registryAddress"`
	BundleItemsCountLimit  *int    `yaml:"bundleItemsCountLimit"`
	UploadRetryPeriodTicks *int    `yaml:"uploadRetryPeriodTicks"`
	ValidatorID            *string `yaml:"validatorId"`
	LogLevel               *string `yaml:"logLevel"`
}

// Load reads configuration from environment variables, applying safe
// defaults for everything except the secrets and addresses that have no
// sane default (MONGO_URI, ETHEREUM_URL, REGISTRY_ADDRESS, ETH_PRIVATE_KEY).
// When CONFIG_FILE is set, Load also layers that YAML file over the
// environment values. Call Validate after Load.
func Load() (*Config, error) {
	cfg := &Config{
		MongoURI:         getEnv("MONGO_URI", ""),
		MongoDatabase:    getEnv("MONGO_DATABASE", "vaultledger"),
		MongoMaxPoolSize: uint64(getEnvInt("MONGO_MAX_POOL_SIZE", 100)),
		MongoMinPoolSize: uint64(getEnvInt("MONGO_MIN_POOL_SIZE", 0)),
		MongoConnTimeout: getEnvDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),

		EthereumURL:           getEnv("ETHEREUM_URL", ""),
		RegistryAddress:       getEnv("REGISTRY_ADDRESS", ""),
		EthPrivateKey:         getEnv("ETH_PRIVATE_KEY", ""),
		BundleItemsCountLimit: getEnvInt("BUNDLE_ITEMS_COUNT_LIMIT", 100),
		ChainSyncPollInterval: getEnvDuration("CHAIN_SYNC_POLL_INTERVAL", 5*time.Second),

		UploadWorkerInterval:    getEnvDuration("UPLOAD_WORKER_INTERVAL", 30*time.Second),
		ChallengeWorkerInterval: getEnvDuration("CHALLENGE_WORKER_INTERVAL", 30*time.Second),
		UploadRetryPeriodTicks:  getEnvInt("UPLOAD_RETRY_PERIOD_TICKS", 10),
		ChallengeRetryTimeout:   getEnvDuration("CHALLENGE_RETRY_TIMEOUT", 10*time.Minute),

		ChallengeCacheDir: getEnv("CHALLENGE_CACHE_DIR", "./data/challengecache"),

		TimestampLimitSeconds: getEnvInt64("TIMESTAMP_LIMIT_SECONDS", 24*60*60),

		WorkerLogEnabled:  getEnvBool("WORKER_LOG_FIRESTORE_ENABLED", false),
		FirebaseProjectID: getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),

		ValidatorID: getEnv("VALIDATOR_ID", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		MetricsAddr: getEnv("METRICS_ADDR", ":9090"),

		OverlayFile: getEnv("CONFIG_FILE", ""),
	}

	if cfg.OverlayFile != "" {
		if err := cfg.applyOverlay(cfg.OverlayFile); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// applyOverlay layers a YAML file's values over cfg's environment-derived
// defaults; only fields present in the file are overridden.
func (c *Config) applyOverlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config overlay: read %s: %w", path, err)
	}

	var o overlay
	if err := yaml.Unmarshal(data, &o); err != nil {
		return fmt.Errorf("config overlay: parse %s: %w", path, err)
	}

	if o.MongoURI != nil {
		c.MongoURI = *o.MongoURI
	}
	if o.MongoDatabase != nil {
		c.MongoDatabase = *o.MongoDatabase
	}
	if o.EthereumURL != nil {
		c.EthereumURL = *o.EthereumURL
	}
	if o.RegistryAddress != nil {
		c.RegistryAddress = *o.RegistryAddress
	}
	if o.BundleItemsCountLimit != nil {
		c.BundleItemsCountLimit = *o.BundleItemsCountLimit
	}
	if o.UploadRetryPeriodTicks != nil {
		c.UploadRetryPeriodTicks = *o.UploadRetryPeriodTicks
	}
	if o.ValidatorID != nil {
		c.ValidatorID = *o.ValidatorID
	}
	if o.LogLevel != nil {
		c.LogLevel = *o.LogLevel
	}
	return nil
}

// Validate checks that every setting with no safe default has been
// supplied.
func (c *Config) Validate() error {
	var errors []string

	if c.MongoURI == "" {
		errors = append(errors, "MONGO_URI is required but not set")
	}
	if c.EthereumURL == "" {
		errors = append(errors, "ETHEREUM_URL is required but not set")
	}
	if c.RegistryAddress == "" {
		errors = append(errors, "REGISTRY_ADDRESS is required but not set")
	}
	if c.EthPrivateKey == "" {
		errors = append(errors, "ETH_PRIVATE_KEY is required but not set")
	}
	if c.ValidatorID == "" {
		errors = append(errors, "VALIDATOR_ID is required but not set")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
