// Package filestore keeps uploaded receipt and tax card files.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrNotFound is returned when no object exists at a path.
var ErrNotFound = errors.New("file not found")

// Store reads and writes uploaded documents by storage path.
type Store interface {
	Put(ctx context.Context, objectPath, contentType string, data []byte) error
	Get(ctx context.Context, objectPath string) ([]byte, error)
	Delete(ctx context.Context, objectPath string) error
}

// ObjectPath builds the storage path for an upload: <kind>/<accountID>/<id><ext>.
func ObjectPath(kind, accountID, id, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" || len(ext) > 6 {
		ext = ".bin"
	}
	return fmt.Sprintf("%s/%s/%s%s", kind, accountID, id, ext)
}

func validatePath(objectPath string) error {
	if objectPath == "" {
		return fmt.Errorf("object path is required")
	}
	clean := path.Clean(objectPath)
	if clean != objectPath || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, "..") {
		return fmt.Errorf("invalid object path %q", objectPath)
	}
	return nil
}
