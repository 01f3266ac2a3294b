package s3client

import (
	"fmt"
	"strings"

	"github.com/bstardust/exif-editor/internal/utils"
)

// URIScheme prefixes object locations on the command line
const URIScheme = "s3://"

// ObjectURI names one object
type ObjectURI struct {
	Bucket string
	Key    string
}

func (u ObjectURI) String() string {
	return URIScheme + u.Bucket + "/" + u.Key
}

// IsURI reports whether s names an S3 object rather than a local path
func IsURI(s string) bool {
	return strings.HasPrefix(s, URIScheme)
}

// ParseURI parses "s3://bucket/key"
func ParseURI(s string) (ObjectURI, error) {
	if !IsURI(s) {
		return ObjectURI{}, fmt.Errorf("%w: %q lacks the %s scheme", ErrInvalidURI, s, URIScheme)
	}

	bucket, key, ok := strings.Cut(strings.TrimPrefix(s, URIScheme), "/")
	if !ok || key == "" {
		return ObjectURI{}, fmt.Errorf("%w: %q has no object key", ErrInvalidURI, s)
	}
	if err := utils.ValidateS3BucketName(bucket); err != nil {
		return ObjectURI{}, fmt.Errorf("%w: %v", ErrInvalidURI, err)
	}

	return ObjectURI{Bucket: bucket, Key: key}, nil
}
