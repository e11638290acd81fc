// utils/file.go
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var allowedPictureExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// CreatePictureName validates the extension of an uploaded picture and
// returns a random object name to store it under.
func CreatePictureName(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return "", fmt.Errorf("cannot process picture without extension")
	}
	if !allowedPictureExtensions[ext] {
		return "", fmt.Errorf("unsupported picture extension %q", ext)
	}
	return uuid.NewString() + ext, nil
}

// EnsureUploadDir creates the local fallback upload directory used when
// object storage is not configured.
func EnsureUploadDir() error {
	return os.MkdirAll("./uploads", os.ModePerm)
}
