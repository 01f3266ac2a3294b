package s3client

import (
	"mime"
	"path/filepath"
	"strings"
)

// JPEGContentType is the MIME type of every edited image
const JPEGContentType = "image/jpeg"

// Common MIME types for image extensions
var commonMimeTypes = map[string]string{
	".jpg":  JPEGContentType,
	".jpeg": JPEGContentType,
	".jpe":  JPEGContentType,
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".heic": "image/heic",
}

// DetectContentType determines the content type of a file based on its extension
func DetectContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))

	if mimeType, ok := commonMimeTypes[ext]; ok {
		return mimeType
	}

	mimeType := mime.TypeByExtension(ext)
	if mimeType != "" {
		return mimeType
	}

	return "application/octet-stream"
}

// IsJPEGFile checks if a file name carries a JPEG extension
func IsJPEGFile(filename string) bool {
	return DetectContentType(filename) == JPEGContentType
}

// IsImageFile checks if a file is an image based on its extension
func IsImageFile(filename string) bool {
	return strings.HasPrefix(DetectContentType(filename), "image/")
}
