package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStore keeps files under a directory on disk. Used for local development.
type LocalStore struct {
	root string
}

// NewLocalStore creates root if needed.
func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStore{root: root}, nil
}

var _ Store = (*LocalStore)(nil)

func (s *LocalStore) Put(ctx context.Context, objectPath, contentType string, data []byte) error {
	if err := validatePath(objectPath); err != nil {
		return err
	}
	full := filepath.Join(s.root, filepath.FromSlash(objectPath))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", objectPath, err)
	}
	return nil
}

func (s *LocalStore) Get(ctx context.Context, objectPath string) ([]byte, error) {
	if err := validatePath(objectPath); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(objectPath)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", objectPath, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", objectPath, err)
	}
	return data, nil
}

func (s *LocalStore) Delete(ctx context.Context, objectPath string) error {
	if err := validatePath(objectPath); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(objectPath)))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", objectPath, ErrNotFound)
	}
	return err
}
