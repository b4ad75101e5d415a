package dbconnections

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

type MinioTestingConnection struct {
	*MinioConnection
}

// NewMinioTestingConnection connects to the server given by
// WEBIMAGE_TEST_MINIO_ENDPOINT and skips the test when it is not set.
func NewMinioTestingConnection(t *testing.T) *MinioTestingConnection {
	endpoint := os.Getenv("WEBIMAGE_TEST_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("WEBIMAGE_TEST_MINIO_ENDPOINT not set, skipping minio integration test")
	}

	conn, err := NewMinioConnection(context.Background(), MinioConfig{
		Endpoint:  endpoint,
		AccessKey: getEnvOrDefault("WEBIMAGE_TEST_MINIO_ACCESS_KEY", "minio"),
		SecretKey: getEnvOrDefault("WEBIMAGE_TEST_MINIO_SECRET_KEY", "minio123"),
		Bucket:    uuid.New().String() + "-testing-bucket",
		Location:  "us-east-1",
		UseSSL:    false,
	})
	if err != nil {
		t.Fatalf("Cannot connect to minio: %s", err)
	}

	testingConn := &MinioTestingConnection{conn}
	t.Cleanup(testingConn.dropTestBucket)

	return testingConn
}

func (c *MinioTestingConnection) dropTestBucket() {
	c.client.RemoveBucketWithOptions(context.Background(), c.config.Bucket, minio.RemoveBucketOptions{
		ForceDelete: true,
	})
}

func getEnvOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}

	return fallback
}
