package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// NewGCSStore opens a Store backed by a Google Cloud Storage bucket.
func NewGCSStore(ctx context.Context, opts Options) (Store, error) {
	if opts.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &gcsStore{client: client, bucket: client.Bucket(opts.Bucket)}, nil
}

type gcsStore struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

func (s *gcsStore) List(ctx context.Context, prefix, suffix string) ([]string, error) {
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: prefix})

	var names []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list objects under %q: %w", prefix, err)
		}
		// Directory placeholders show up as zero-byte names ending in "/".
		if strings.HasSuffix(attrs.Name, "/") {
			continue
		}
		if suffix != "" && !strings.HasSuffix(attrs.Name, suffix) {
			continue
		}
		names = append(names, attrs.Name)
	}
	return names, nil
}

func (s *gcsStore) Read(ctx context.Context, name string) ([]byte, error) {
	r, err := s.bucket.Object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, name)
		}
		return nil, fmt.Errorf("open object %s: %w", name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", name, err)
	}
	return data, nil
}

func (s *gcsStore) Write(ctx context.Context, name, contentType string, data []byte) error {
	w := s.bucket.Object(name).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write object %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize object %s: %w", name, err)
	}
	return nil
}

func (s *gcsStore) Close() error {
	return s.client.Close()
}
