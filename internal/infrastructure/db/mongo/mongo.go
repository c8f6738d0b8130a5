package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/flappyv/platform/internal/infrastructure/db"
)

const defaultTimeout = 10 * time.Second

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
	Attempts uint
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. Failed attempts are
// retried; an unreachable server after the last attempt is an error.
func Connect(ctx context.Context, cfg Config, log zerolog.Logger) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var client *mongo.Client
	err := db.Dial(ctx, "mongo", cfg.Attempts, log, func(ctx context.Context) error {
		connectCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		c, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
		if err != nil {
			return fmt.Errorf("mongo connect: %w", err)
		}
		if err := c.Ping(connectCtx, nil); err != nil {
			_ = c.Disconnect(connectCtx)
			return fmt.Errorf("mongo ping: %w", err)
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return client, client.Database(cfg.Database), nil
}
