package fileinfo

import (
	"github.com/bstardust/exif-editor/pkg/s3client"
)

// IsJPEGFile checks if a file name carries a JPEG extension
func IsJPEGFile(filename string) bool {
	return s3client.IsJPEGFile(filename)
}

// IsImageFile checks if a file is an image
func IsImageFile(filename string) bool {
	return s3client.IsImageFile(filename)
}

// GetContentType returns the content type for a file
func GetContentType(filename string) string {
	return s3client.DetectContentType(filename)
}
