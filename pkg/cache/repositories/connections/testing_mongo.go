package dbconnections

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoTestingConnection struct {
	testDBName string
	client     *mongo.Client
	t          *testing.T
}

var _ MetadataDBConnection = (*MongoTestingConnection)(nil)

// NewMongoTestingConnection uses a fresh database on the server given by
// WEBIMAGE_TEST_MONGO_CONNECTION_STRING and skips the test when it is not set.
func NewMongoTestingConnection(t *testing.T) *MongoTestingConnection {
	connectionString := os.Getenv("WEBIMAGE_TEST_MONGO_CONNECTION_STRING")
	if connectionString == "" {
		t.Skip("WEBIMAGE_TEST_MONGO_CONNECTION_STRING not set, skipping mongo integration test")
	}

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(connectionString))
	if err != nil {
		t.Fatalf("Cannot connect to mongodb: %s", err)
	}

	conn := &MongoTestingConnection{"test-" + uuid.New().String(), client, t}

	t.Cleanup(conn.Cleanup)
	return conn
}

func (c *MongoTestingConnection) Collection(name string) *mongo.Collection {
	return c.client.Database(c.testDBName).Collection(name)
}

func (c *MongoTestingConnection) Cleanup() {
	ctx := context.Background()
	if err := c.client.Database(c.testDBName).Drop(ctx); err != nil {
		c.t.Errorf("Cannot cleanup testing database '%s': %s", c.testDBName, err)
	}

	c.client.Disconnect(ctx)
}
