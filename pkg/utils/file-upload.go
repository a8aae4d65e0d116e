package utils

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// ValidateFileTypeFromContent detects the content type from the first 512
// bytes of the uploaded file and checks it against allowedTypes (MIME type
// strings). Returns the detected content type.
func ValidateFileTypeFromContent(fileHeader *multipart.FileHeader, allowedTypes []string) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if n == 0 {
		return "", fmt.Errorf("file is empty")
	}

	contentType := http.DetectContentType(buffer[:n])

	for _, t := range allowedTypes {
		if t == contentType {
			return contentType, nil
		}
	}
	return "", fmt.Errorf("invalid file type: %s", contentType)
}

// GetFileExtensionFromContentType returns the file extension (with leading
// dot) for the known image content types, or an empty string.
func GetFileExtensionFromContentType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	return ""
}
