package s3client

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"
)

// ObjectStore defines the object operations the editor needs to read source
// images and write edited ones
type ObjectStore interface {
	Download(ctx context.Context, bucket, key string) ([]byte, error)
	Upload(ctx context.Context, bucket, key string, data []byte, contentType string, metadata map[string]string) error
	ObjectExists(ctx context.Context, bucket, key string) (bool, error)
}

// minioAPI is the subset of *minio.Client used by Client
type minioAPI interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
}
