package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"somiti-server/internal/config"
	"somiti-server/pkg/logger"
)

const defaultMongoConnectTimeout = 10 * time.Second

// NewMongo connects and pings the primary. The caller owns the client and
// must Disconnect it on shutdown.
func NewMongo(ctx context.Context, cfg config.MongoConfig, log logger.Logger) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.ConnectTimeout
	if timeout == 0 {
		timeout = defaultMongoConnectTimeout
	}

	log.Info("db: connecting to mongo", "database", cfg.Database)

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	log.Info("db: connected", "driver", "mongo")
	return client, client.Database(cfg.Database), nil
}
