package persistence

import (
	"context"
	"fmt"
	"time"

	"subtitle-credit/infrastructure/configuration"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

func mongoURI(cfg configuration.Db) string {
	if cfg.User != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%s", cfg.User, cfg.Password, cfg.Host, cfg.Port)
	}
	return fmt.Sprintf("mongodb://%s:%s", cfg.Host, cfg.Port)
}

// NewMongoDb connects to the job store.
func NewMongoDb(ctx context.Context) (*mongo.Client, error) {
	cfg := configuration.C.Database.Mongo
	client, err := mongo.Connect(options.Client().
		ApplyURI(mongoURI(cfg)).
		SetServerSelectionTimeout(5 * time.Second))
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}
