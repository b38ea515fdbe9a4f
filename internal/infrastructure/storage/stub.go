// Package storage provides object storage implementations for model image files.
package storage

import (
	"context"
	"errors"
	"time"

	catalogapp "github.com/modelmart/backend/internal/application/catalog"
)

// StubObjectStorage is a placeholder implementation of ObjectStorageService.
// Use this for local development when no S3-compatible backend is running.
type StubObjectStorage struct {
	// BaseURL is the base URL for generated upload and public URLs.
	// Defaults to "https://storage.example.com" if not set.
	BaseURL string
}

// NewStubObjectStorage creates a new StubObjectStorage
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{
		BaseURL: "https://storage.example.com",
	}
}

// Ensure StubObjectStorage implements ObjectStorageService
var _ catalogapp.ObjectStorageService = (*StubObjectStorage)(nil)

// GenerateUploadURL generates a stub presigned URL for uploading a file
func (s *StubObjectStorage) GenerateUploadURL(
	ctx context.Context,
	storageKey, contentType string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}

	expiresAt := time.Now().Add(expiresIn)
	url := s.BaseURL + "/upload/" + storageKey + "?expires=" + expiresAt.Format(time.RFC3339)

	return url, expiresAt, nil
}

// PublicURL returns a stub public URL for an uploaded object
func (s *StubObjectStorage) PublicURL(storageKey string) string {
	if storageKey == "" {
		return ""
	}
	return s.BaseURL + "/" + storageKey
}

// DeleteObject is a no-op stub that always succeeds
func (s *StubObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	return nil
}
