package dbconnections

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// cachedObjectControl is sent with every stored image, cached entries are
// immutable under their key.
const cachedObjectControl = "public, max-age=31536000, immutable"

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Location  string
	UseSSL    bool
}

type MinioConnection struct {
	config MinioConfig
	client *minio.Client
}

var _ ObjectStorageConnection = (*MinioConnection)(nil)

// NewMinioConnection connects to the server and creates the bucket when it
// does not exist yet.
func NewMinioConnection(ctx context.Context, config MinioConfig) (*MinioConnection, error) {
	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
		Region: config.Location,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	conn := &MinioConnection{config, client}
	if err := conn.ensureBucket(ctx); err != nil {
		return nil, err
	}

	return conn, nil
}

func (c *MinioConnection) ensureBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.config.Bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", c.config.Bucket, err)
	}

	if exists {
		return nil
	}

	err = c.client.MakeBucket(ctx, c.config.Bucket, minio.MakeBucketOptions{Region: c.config.Location})
	if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
		return fmt.Errorf("create bucket %s: %w", c.config.Bucket, err)
	}

	return nil
}

func (c *MinioConnection) GetObject(ctx context.Context, objectName string) (io.ReadCloser, error) {
	object, err := c.client.GetObject(ctx, c.config.Bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, translateError(err)
	}

	// GetObject is lazy, Stat surfaces a missing object before any read.
	if _, err := object.Stat(); err != nil {
		object.Close()
		return nil, translateError(err)
	}

	return object, nil
}

func (c *MinioConnection) PutObject(ctx context.Context, objectName string, objectSize int64, mimeType string, reader io.Reader) error {
	_, err := c.client.PutObject(ctx, c.config.Bucket, objectName, reader, objectSize, minio.PutObjectOptions{
		ContentType:  mimeType,
		CacheControl: cachedObjectControl,
	})

	return err
}

func (c *MinioConnection) DeleteObject(ctx context.Context, objectName string) error {
	return c.client.RemoveObject(ctx, c.config.Bucket, objectName, minio.RemoveObjectOptions{})
}

func (c *MinioConnection) ObjectExists(ctx context.Context, objectName string) (bool, error) {
	_, err := c.client.StatObject(ctx, c.config.Bucket, objectName, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}

	if err = translateError(err); err == ErrObjectNotFound {
		return false, nil
	}

	return false, err
}

func translateError(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ErrObjectNotFound
	}

	return err
}
