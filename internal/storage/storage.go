// Package storage holds the file-upload collaborator. The onboarding core
// stores only the opaque file IDs it hands back; file contents are never
// inspected.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileStore saves uploaded documents (applicant photos, ID scans) and
// returns an opaque identifier for each.
type FileStore interface {
	Save(ctx context.Context, filename string, reader io.Reader) (fileID string, err error)
	Open(ctx context.Context, fileID string) (io.ReadCloser, error)
	Delete(ctx context.Context, fileID string) error
}

// LocalFileStore keeps uploads on the local filesystem, one file per UUID.
// Suitable for single-node deployments and tests; swap for object storage in
// a clustered setup.
type LocalFileStore struct {
	dir string
}

func NewLocalFileStore(dir string) (*LocalFileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalFileStore{dir: dir}, nil
}

func (s *LocalFileStore) Save(ctx context.Context, filename string, reader io.Reader) (string, error) {
	fileID := uuid.New().String()
	if ext := filepath.Ext(filename); ext != "" {
		fileID += ext
	}

	fullPath := filepath.Join(s.dir, fileID)
	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return fileID, nil
}

func (s *LocalFileStore) Open(ctx context.Context, fileID string) (io.ReadCloser, error) {
	// fileID is server-generated; reject anything that escapes the directory.
	if fileID != filepath.Base(fileID) {
		return nil, fmt.Errorf("invalid file id")
	}
	return os.Open(filepath.Join(s.dir, fileID))
}

func (s *LocalFileStore) Delete(ctx context.Context, fileID string) error {
	if fileID != filepath.Base(fileID) {
		return fmt.Errorf("invalid file id")
	}
	err := os.Remove(filepath.Join(s.dir, fileID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
