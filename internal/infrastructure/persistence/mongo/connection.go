// Package mongo implements todo.Repository on a MongoDB collection using
// findAndModify with a status precondition for every transition.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// DefaultCollection is the collection todos live in.
const DefaultCollection = "todos"

// Config holds MongoDB connection configuration.
type Config struct {
	URI              string
	Database         string        // default: "todo"
	Collection       string        // default: "todos"
	ConnectTimeout   time.Duration // default: 2.5s
	SelectionTimeout time.Duration // default: 5s
	SocketTimeout    time.Duration // default: 10s
}

func (c *Config) applyDefaults() {
	if c.Database == "" {
		c.Database = "todo"
	}
	if c.Collection == "" {
		c.Collection = DefaultCollection
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 2500 * time.Millisecond
	}
	if c.SelectionTimeout <= 0 {
		c.SelectionTimeout = 5 * time.Second
	}
	if c.SocketTimeout <= 0 {
		c.SocketTimeout = 10 * time.Second
	}
}

// NewStoreWithConfig connects, verifies the primary is reachable and ensures indexes.
func NewStoreWithConfig(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo uri is required")
	}
	cfg.applyDefaults()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.SelectionTimeout).
		SetSocketTimeout(cfg.SocketTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.SelectionTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	if err := ensureIndexes(ctx, coll); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return NewStore(client, coll, cfg.SocketTimeout), nil
}

func ensureIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("todos_id_unique"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}, {Key: "id", Value: -1}},
			Options: options.Index().SetName("todos_status_created"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
