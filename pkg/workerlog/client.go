// Copyright 2025 Certen Protocol
//
// Firestore-backed client underlying the durable worker audit log.
// Adapted from the reference implementation's Firestore client — same
// enabled/no-op toggle, Firebase App bootstrap, and logger convention —
// pointed at a single flat "workerTicks" collection instead of a
// per-user audit-trail hierarchy, since this spec's audit log has no
// concept of a user.
package workerlog

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	gcpfirestore "cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// Client wraps the Firestore client used by the worker audit log.
type Client struct {
	app       *firebase.App
	firestore *gcpfirestore.Client
	projectID string
	logger    *log.Logger
	enabled   bool
	mu        sync.RWMutex
}

// ClientConfig configures Client.
type ClientConfig struct {
	ProjectID       string
	CredentialsFile string
	Enabled         bool
	Logger          *log.Logger
}

// DefaultConfig builds a ClientConfig from environment variables.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		ProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
		CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		Enabled:         getEnvBool("WORKER_LOG_FIRESTORE_ENABLED", false),
		Logger:          log.New(os.Stdout, "[WorkerLog] ", log.LstdFlags),
	}
}

// NewClient builds a Client. When cfg.Enabled is false every operation is
// a no-op, so the audit log can be left unconfigured in local development.
func NewClient(ctx context.Context, cfg *ClientConfig) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stdout, "[WorkerLog] ", log.LstdFlags)
	}

	client := &Client{projectID: cfg.ProjectID, logger: cfg.Logger, enabled: cfg.Enabled}

	if !cfg.Enabled {
		cfg.Logger.Println("worker log Firestore sync is DISABLED - running in no-op mode")
		return client, nil
	}
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("FIREBASE_PROJECT_ID is required when the worker log is enabled")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	fsClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}

	client.app = app
	client.firestore = fsClient
	cfg.Logger.Printf("worker log Firestore client initialized for project: %s", cfg.ProjectID)
	return client, nil
}

// IsEnabled reports whether the client performs real Firestore operations.
func (c *Client) IsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled && c.firestore != nil
}

// Close releases the underlying Firestore client.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.firestore == nil {
		return nil
	}
	return c.firestore.Close()
}

func getEnvBool(key string, defaultValue bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	return val == "true" || val == "1" || val == "yes"
}
