package storage

import (
	"context"
	"net/url"
	"sync"
	"time"

	apptransfer "github.com/erp/stocktransfer/internal/application/transfer"
)

// StubObjectStorage hands out fake URLs and remembers deletions. It serves
// local development and tests where no bucket exists.
type StubObjectStorage struct {
	BaseURL string

	mu      sync.Mutex
	deleted []string
}

// NewStubObjectStorage creates a stub rooted at baseURL
func NewStubObjectStorage(baseURL string) *StubObjectStorage {
	if baseURL == "" {
		baseURL = "https://storage.example.com"
	}
	return &StubObjectStorage{BaseURL: baseURL}
}

func (s *StubObjectStorage) GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	return s.url("upload", storageKey, expiresIn)
}

func (s *StubObjectStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	return s.url("download", storageKey, expiresIn)
}

func (s *StubObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	if storageKey == "" {
		return errMissingKey
	}
	s.mu.Lock()
	s.deleted = append(s.deleted, storageKey)
	s.mu.Unlock()
	return nil
}

// Deleted returns the keys passed to DeleteObject
func (s *StubObjectStorage) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

func (s *StubObjectStorage) url(action, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errMissingKey
	}
	expiresAt := time.Now().Add(expiresIn)
	q := url.Values{"expires": {expiresAt.UTC().Format(time.RFC3339)}}
	return s.BaseURL + "/" + action + "/" + storageKey + "?" + q.Encode(), expiresAt, nil
}

var _ apptransfer.ObjectStorageService = (*StubObjectStorage)(nil)
