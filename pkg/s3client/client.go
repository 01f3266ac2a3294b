package s3client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/bstardust/exif-editor/internal/logger"
)

// MaxObjectBytes bounds the size of an image read from storage
const MaxObjectBytes = 64 << 20

// Config represents the configuration for an S3 client
type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Prefix    string
}

// Client represents an S3 client
type Client struct {
	api    minioAPI
	config Config
}

var _ ObjectStore = (*Client)(nil)

// New creates a new S3 client. Buckets are named per call, so no bucket is
// checked here.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("S3 endpoint is required")
	}

	// Remove protocol prefix if present
	endpoint := cfg.Endpoint
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")

	var creds *credentials.Credentials
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	} else {
		creds = credentials.NewEnvAWS()
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:        creds,
		Secure:       cfg.UseSSL,
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupAuto,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	logger.Debug("Created S3 client for endpoint %s", endpoint)

	return newWithAPI(client, cfg), nil
}

func newWithAPI(api minioAPI, cfg Config) *Client {
	return &Client{api: api, config: cfg}
}

// Download reads a whole object into memory
func (c *Client) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	objectKey := c.getObjectKey(key)

	obj, err := c.api.GetObject(ctx, bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, c.wrap("get", bucket, objectKey, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(io.LimitReader(obj, MaxObjectBytes+1))
	if err != nil {
		return nil, c.wrap("read", bucket, objectKey, err)
	}
	if len(data) > MaxObjectBytes {
		return nil, fmt.Errorf("object s3://%s/%s exceeds %d bytes", bucket, objectKey, MaxObjectBytes)
	}

	logger.Debug("Downloaded s3://%s/%s (%d bytes)", bucket, objectKey, len(data))
	return data, nil
}

// Upload writes data to an object
func (c *Client) Upload(ctx context.Context, bucket, key string, data []byte, contentType string, metadata map[string]string) error {
	objectKey := c.getObjectKey(key)

	if contentType == "" {
		contentType = DetectContentType(key)
	}

	opts := minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: metadata,
	}

	info, err := c.api.PutObject(ctx, bucket, objectKey, bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return c.wrap("upload", bucket, objectKey, err)
	}

	logger.Debug("Uploaded s3://%s/%s (%d bytes, etag: %s)", bucket, objectKey, info.Size, info.ETag)
	return nil
}

// ObjectExists checks if an object exists in the bucket
func (c *Client) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	objectKey := c.getObjectKey(key)

	_, err := c.api.StatObject(ctx, bucket, objectKey, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, c.wrap("stat", bucket, objectKey, err)
	}

	return true, nil
}

func (c *Client) wrap(op, bucket, key string, err error) error {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey":
		err = errors.Join(ErrObjectNotFound, err)
	case "NoSuchBucket":
		err = errors.Join(ErrBucketNotFound, err)
	}
	return fmt.Errorf("failed to %s s3://%s/%s: %w", op, bucket, key, err)
}

// getObjectKey returns the full object key with prefix
func (c *Client) getObjectKey(key string) string {
	if c.config.Prefix == "" {
		return key
	}

	prefix := strings.TrimSuffix(c.config.Prefix, "/")
	key = strings.TrimPrefix(key, "/")

	return path.Join(prefix, key)
}
