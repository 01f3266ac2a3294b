package utils

import (
	"errors"
	"path/filepath"
	"strings"
)

// ValidateS3BucketName checks if the provided S3 bucket name is valid according to AWS naming conventions.
func ValidateS3BucketName(bucketName string) error {
	if len(bucketName) < 3 || len(bucketName) > 63 {
		return errors.New("bucket name must be between 3 and 63 characters")
	}
	if strings.Contains(bucketName, " ") {
		return errors.New("bucket name cannot contain spaces")
	}
	if !isDNSCompatible(bucketName) {
		return errors.New("bucket name must be DNS compliant")
	}
	return nil
}

// isDNSCompatible checks if the bucket name is DNS compliant.
func isDNSCompatible(name string) bool {
	// lowercase letters, digits, hyphens and dots, starting and ending with a letter or digit
	for _, char := range name {
		if !(char >= 'a' && char <= 'z') && !(char >= '0' && char <= '9') && char != '-' && char != '.' {
			return false
		}
	}
	first, last := name[0], name[len(name)-1]
	return first != '-' && first != '.' && last != '-' && last != '.'
}

// EditedName derives an output file name from an input path, e.g.
// "photos/IMG_1.jpg" -> "photos/IMG_1_edited.jpg"
func EditedName(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_edited" + ext
}
