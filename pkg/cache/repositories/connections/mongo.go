package dbconnections

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	defaultDatabaseName    = "webimage"
	serverSelectionTimeout = 10 * time.Second
)

type MongoConfig struct {
	ConnectionString string
	Database         string
}

type MongoConnection struct {
	database string
	client   *mongo.Client
}

var _ MetadataDBConnection = (*MongoConnection)(nil)

// NewMongoConnection connects and pings the primary, so a misconfigured
// server fails at startup instead of on the first cache write.
func NewMongoConnection(ctx context.Context, config MongoConfig) (*MongoConnection, error) {
	clientOptions := options.Client().
		ApplyURI(config.ConnectionString).
		SetServerSelectionTimeout(serverSelectionTimeout)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	database := config.Database
	if database == "" {
		database = defaultDatabaseName
	}

	return &MongoConnection{database, client}, nil
}

func (c *MongoConnection) Collection(collectionName string) *mongo.Collection {
	return c.client.Database(c.database).Collection(collectionName)
}

func (c *MongoConnection) Disconnect(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
