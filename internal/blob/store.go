package blob

import (
	"context"
	"errors"
)

// Store is the narrow object-store contract the ingestion and inbox layers
// consume. Listing is finite and restartable: every call re-lists from the
// backing store.
type Store interface {
	// List returns object names under prefix whose name ends with suffix.
	// An empty suffix matches everything.
	List(ctx context.Context, prefix, suffix string) ([]string, error)
	// Read fetches the full content of one object.
	Read(ctx context.Context, name string) ([]byte, error)
	// Write stores an object, replacing any previous content.
	Write(ctx context.Context, name, contentType string, data []byte) error
	Close() error
}

// ErrObjectNotFound indicates the named object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Options configures a store implementation.
type Options struct {
	// Bucket names the GCS bucket for the cloud implementation.
	Bucket string
	// Root is the base directory for the filesystem implementation.
	Root string
}
