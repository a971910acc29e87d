// Copyright 2025 Certen Protocol
//
// Document store client: connection pooling and health checks over
// MongoDB, the concrete backing for the Entity Repository's typed
// collection abstraction (§6). Mirrors the reference implementation's
// database client — functional options, a dedicated logger, an explicit
// connectivity check on startup — adapted from a SQL connection pool to a
// mongo.Client.
package repository

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Client wraps a mongo.Client bound to one database.
type Client struct {
	mongo    *mongo.Client
	database string
	logger   *log.Logger
}

// ClientConfig configures the document store connection.
type ClientConfig struct {
	URI             string
	Database        string
	MaxPoolSize     uint64
	MinPoolSize     uint64
	ConnectTimeout  time.Duration
	Logger          *log.Logger
}

// ClientOption is a functional option for NewClient.
type ClientOption func(*ClientConfig)

// WithLogger overrides the client's logger.
func WithLogger(logger *log.Logger) ClientOption {
	return func(c *ClientConfig) { c.Logger = logger }
}

// DefaultClientConfig returns a ClientConfig populated from environment
// variables, mirroring the reference implementation's getEnv convention.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		URI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
		Database:       getEnv("MONGO_DATABASE", "ledgernode"),
		MaxPoolSize:    uint64(getEnvInt("MONGO_MAX_POOL_SIZE", 100)),
		MinPoolSize:    uint64(getEnvInt("MONGO_MIN_POOL_SIZE", 5)),
		ConnectTimeout: 10 * time.Second,
	}
}

// NewClient opens a pooled connection to the document store and verifies
// connectivity with a Ping.
func NewClient(ctx context.Context, cfg ClientConfig, opts ...ClientOption) (*Client, error) {
	if cfg.Logger == nil {
		cfg.Logger = log.New(log.Writer(), "[Repository] ", log.LstdFlags)
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.URI == "" {
		return nil, fmt.Errorf("document store URI cannot be empty")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("document store database name cannot be empty")
	}

	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetConnectTimeout(cfg.ConnectTimeout)

	mc, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to document store: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := mc.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("document store ping failed: %w", err)
	}

	cfg.Logger.Printf("connected to document store database=%s", cfg.Database)

	return &Client{mongo: mc, database: cfg.Database, logger: cfg.Logger}, nil
}

// Collection returns the named collection within the client's database.
func (c *Client) Collection(name string) *mongo.Collection {
	return c.mongo.Database(c.database).Collection(name)
}

// Health verifies the document store connection is alive.
func (c *Client) Health(ctx context.Context) error {
	return c.mongo.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (c *Client) Close(ctx context.Context) error {
	return c.mongo.Disconnect(ctx)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return fallback
	}
	return n
}
