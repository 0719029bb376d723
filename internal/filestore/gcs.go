package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// GCSStore keeps files in a Cloud Storage bucket.
type GCSStore struct {
	bucket *storage.BucketHandle
}

// NewGCSStore wraps a bucket handle.
func NewGCSStore(bucket *storage.BucketHandle) *GCSStore {
	return &GCSStore{bucket: bucket}
}

var _ Store = (*GCSStore)(nil)

func (s *GCSStore) Put(ctx context.Context, objectPath, contentType string, data []byte) error {
	if err := validatePath(objectPath); err != nil {
		return err
	}
	w := s.bucket.Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("upload %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", objectPath, err)
	}
	return nil
}

func (s *GCSStore) Get(ctx context.Context, objectPath string) ([]byte, error) {
	if err := validatePath(objectPath); err != nil {
		return nil, err
	}
	reader, err := s.bucket.Object(objectPath).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%s: %w", objectPath, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", objectPath, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", objectPath, err)
	}
	return data, nil
}

func (s *GCSStore) Delete(ctx context.Context, objectPath string) error {
	if err := validatePath(objectPath); err != nil {
		return err
	}
	err := s.bucket.Object(objectPath).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("%s: %w", objectPath, ErrNotFound)
	}
	return err
}
