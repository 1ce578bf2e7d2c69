package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	apperrors "audio-transcriber/internal/app/errors"
)

// HashFile returns the hex SHA-256 of the file content. It keys the transcript
// cache and is stored with each history record.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", apperrors.IO(err, "open", path)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", apperrors.IO(err, "read", path)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
