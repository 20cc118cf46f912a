package storage

import (
	"context"
	"errors"
	"net/url"
	"time"

	procurementapp "github.com/procura/backend/internal/application/procurement"
)

var _ procurementapp.ObjectStorage = (*StubObjectStorage)(nil)

// StubObjectStorage hands out fake upload URLs. It is used when object
// storage is disabled so the upload-url endpoint keeps working locally.
type StubObjectStorage struct {
	BaseURL string
}

// NewStubObjectStorage creates a new StubObjectStorage
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{BaseURL: "https://storage.example.com"}
}

// GenerateUploadURL returns a non-functional URL naming key
func (s *StubObjectStorage) GenerateUploadURL(_ context.Context, key, _ string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	if expiresIn <= 0 {
		expiresIn = 15 * time.Minute
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/upload/" + key + "?expires=" + url.QueryEscape(expiresAt.Format(time.RFC3339)), expiresAt, nil
}
