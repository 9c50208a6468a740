package storage

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no document exists under the given key.
var ErrNotFound = errors.New("document not found")

// Storage holds uploaded course source documents until they are processed.
type Storage interface {
	// Store saves a document for the user and returns its storage key.
	Store(ctx context.Context, userID uuid.UUID, filename string, content io.Reader, contentType string) (string, error)

	// Retrieve opens a document by storage key.
	Retrieve(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a document by storage key.
	Delete(ctx context.Context, key string) error

	// Exists checks whether a document exists under the key.
	Exists(ctx context.Context, key string) (bool, error)
}

func sanitizeFilename(filename string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		"..", "_",
		" ", "_",
	)
	return replacer.Replace(filename)
}
