package services

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ClothesKeyPrefix is the bucket folder holding uploaded clothing photos.
const ClothesKeyPrefix = "clothes/"

var allowedImageExtensions = []string{".jpg", ".jpeg", ".png", ".heic", ".heif", ".webp"}

func GetEnv(key, fallback string) string {
	value := os.Getenv(key)
	if len(value) == 0 {
		return fallback
	}
	return value
}

// ClothesObjectKey maps an uploaded file name to its bucket key.
func ClothesObjectKey(fileName string) (string, error) {
	base := filepath.Base(strings.TrimSpace(fileName))
	if base == "." || base == "/" || base == "" {
		return "", fmt.Errorf("empty file name")
	}
	ext := strings.ToLower(filepath.Ext(base))
	if !slices.Contains(allowedImageExtensions, ext) {
		return "", fmt.Errorf("unsupported image extension %q", ext)
	}
	return ClothesKeyPrefix + base, nil
}

// IsObjectKey reports whether an image reference points into the bucket
// rather than being an absolute or local object URL.
func IsObjectKey(imageURL string) bool {
	return strings.HasPrefix(imageURL, ClothesKeyPrefix)
}
