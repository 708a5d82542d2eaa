// Package neo4jdb owns the Neo4j driver lifecycle. The concept graph store
// builds sessions off Client.Driver; nothing else touches the driver.
package neo4jdb

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/pathwise/pathwise-backend/internal/platform/envutil"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
)

type Client struct {
	Driver   neo4j.DriverWithContext
	Database string
	log      *logger.Logger
}

type envConfig struct {
	uri      string
	user     string
	password string
	database string
	timeout  time.Duration
	maxPool  int
}

func configFromEnv() envConfig {
	return envConfig{
		uri:      envutil.Str("NEO4J_URI", ""),
		user:     envutil.Str("NEO4J_USER", "neo4j"),
		password: envutil.Str("NEO4J_PASSWORD", ""),
		database: envutil.Str("NEO4J_DATABASE", ""),
		timeout:  time.Duration(envutil.Int("NEO4J_TIMEOUT_SECONDS", 10)) * time.Second,
		maxPool:  envutil.Int("NEO4J_MAX_POOL_SIZE", 50),
	}
}

// NewFromEnv builds a Neo4j client from NEO4J_* environment variables.
// Returns (nil, nil) when NEO4J_URI is unset so the graph store stays optional
// in local setups.
func NewFromEnv(log *logger.Logger) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("neo4jdb: logger required")
	}
	cfg := configFromEnv()
	if cfg.uri == "" {
		return nil, nil
	}

	driver, err := neo4j.NewDriverWithContext(cfg.uri,
		neo4j.BasicAuth(cfg.user, cfg.password, ""),
		func(c *neo4j.Config) {
			c.MaxConnectionPoolSize = cfg.maxPool
			c.SocketConnectTimeout = cfg.timeout
		})
	if err != nil {
		return nil, fmt.Errorf("neo4jdb: init driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4jdb: verify connectivity: %w", err)
	}

	log.Info("Connected to Neo4j", "database", cfg.database)
	return &Client{
		Driver:   driver,
		Database: cfg.database,
		log:      log.With("client", "Neo4jDB"),
	}, nil
}

func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.Driver == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := c.Driver.Close(ctx)
	c.Driver = nil
	return err
}
