package utils

import (
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrUnsupportedImage is returned for uploads that are not an allowed image type.
var ErrUnsupportedImage = errors.New("unsupported image type")

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// IsImageFile reports whether filename has an allowed image extension.
func IsImageFile(filename string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(filename))]
}

// SaveUploadedFile copies an uploaded image into destDir under a random name
// and returns that name.
func SaveUploadedFile(file *multipart.FileHeader, destDir string) (string, error) {
	if !IsImageFile(file.Filename) {
		return "", ErrUnsupportedImage
	}

	// Open the uploaded file
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	// Create destination directory if it doesn't exist
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	newFilename := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	filePath := filepath.Join(destDir, newFilename)

	dst, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(filePath)
		return "", err
	}

	return newFilename, nil
}

// GetFileURL returns the public path of a stored upload.
func GetFileURL(filename string) string {
	if filename == "" {
		return ""
	}
	return "/uploads/" + filename
}
