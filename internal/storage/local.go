package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BlobStore abstracts binary file storage for uploaded materials.
type BlobStore interface {
	Put(data []byte, ext string) (string, error)
	Get(key string) ([]byte, error)
	Delete(key string) error
	URL(key string) string
}

// LocalStore keeps blobs on the local filesystem under a single directory,
// served statically by the router at /uploads.
type LocalStore struct {
	dir    string
	logger *zap.Logger
}

func NewLocalStore(dir string, logger *zap.Logger) *LocalStore {
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Warn("Failed to create upload directory", zap.Error(err))
	}
	return &LocalStore{dir: dir, logger: logger}
}

func (s *LocalStore) Put(data []byte, ext string) (string, error) {
	key := uuid.New().String() + ext
	path := filepath.Join(s.dir, key)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return key, nil
}

func (s *LocalStore) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.Base(key)))
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", key, err)
	}
	return data, nil
}

func (s *LocalStore) Delete(key string) error {
	if err := os.Remove(filepath.Join(s.dir, filepath.Base(key))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob %s: %w", key, err)
	}
	return nil
}

func (s *LocalStore) URL(key string) string {
	return "/uploads/" + key
}

// Dir returns the backing directory, used by the router to mount the static
// file handler.
func (s *LocalStore) Dir() string { return s.dir }
