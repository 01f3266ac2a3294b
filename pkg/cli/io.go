package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/bstardust/exif-editor/internal/fileinfo"
	"github.com/bstardust/exif-editor/internal/logger"
	"github.com/bstardust/exif-editor/internal/utils"
	"github.com/bstardust/exif-editor/pkg/s3client"
)

// readImage loads an image from a local path or an s3:// URI
func (a *app) readImage(ctx context.Context, src string) ([]byte, error) {
	switch {
	case fileinfo.IsJPEGFile(src):
	case fileinfo.IsImageFile(src):
		logger.Warn("%s looks like %s; only JPEG images carry editable EXIF", src, fileinfo.GetContentType(src))
	default:
		logger.Warn("%s does not have an image extension", src)
	}

	if !s3client.IsURI(src) {
		data, err := os.ReadFile(src)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", src, err)
		}
		return data, nil
	}

	uri, err := s3client.ParseURI(src)
	if err != nil {
		return nil, err
	}
	store, err := a.objectStore()
	if err != nil {
		return nil, err
	}
	data, err := store.Download(ctx, uri.Bucket, uri.Key)
	if err != nil {
		if s3client.IsNotFoundError(err) {
			return nil, fmt.Errorf("%s does not exist: %w", uri, err)
		}
		return nil, storageError(err)
	}
	return data, nil
}

// writeImage stores an edited image at a local path or an s3:// URI
func (a *app) writeImage(ctx context.Context, dst string, data []byte) error {
	if !s3client.IsURI(dst) {
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", dst, err)
		}
		return nil
	}

	uri, err := s3client.ParseURI(dst)
	if err != nil {
		return err
	}
	store, err := a.objectStore()
	if err != nil {
		return err
	}

	if exists, err := store.ObjectExists(ctx, uri.Bucket, uri.Key); err == nil && exists {
		logger.Info("Overwriting %s", uri)
	}

	metadata := map[string]string{"edited-by": "exif-editor"}
	if err := store.Upload(ctx, uri.Bucket, uri.Key, data, s3client.JPEGContentType, metadata); err != nil {
		return storageError(err)
	}
	return nil
}

func storageError(err error) error {
	if s3client.IsAuthError(err) {
		logger.Error("Check the storage credentials: %s", s3client.FormatError(err))
	}
	return err
}

// outputPath derives the default destination next to the source
func outputPath(src string) (string, error) {
	if !s3client.IsURI(src) {
		return utils.EditedName(src), nil
	}

	uri, err := s3client.ParseURI(src)
	if err != nil {
		return "", err
	}
	uri.Key = utils.EditedName(uri.Key)
	return uri.String(), nil
}
