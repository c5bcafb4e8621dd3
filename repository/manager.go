package repository

import (
	"context"
	"fmt"
	"strings"

	auth "github.com/goliatone/go-user-auth"
)

const (
	BackendFile = "file"
	BackendS3   = "s3"
)

// Options selects and configures the document store backend
type Options struct {
	Backend string
	Path    string
	S3      S3Config
}

// Open returns the document store described by opts
func Open(ctx context.Context, opts Options, logger auth.Logger) (auth.DocumentStore, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendFile:
		if opts.Path == "" {
			return nil, fmt.Errorf("file store requires a path")
		}
		return NewFileStore(opts.Path).WithLogger(logger), nil
	case BackendS3:
		if opts.S3.Bucket == "" || opts.S3.Key == "" {
			return nil, fmt.Errorf("s3 store requires bucket and key")
		}
		client, err := NewS3Client(ctx, opts.S3)
		if err != nil {
			return nil, fmt.Errorf("s3 client: %w", err)
		}
		return NewS3Store(client, opts.S3.Bucket, opts.S3.Key).WithLogger(logger), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}

// NewRepositoryManager opens the configured store and loads the
// collection into a new manager.
func NewRepositoryManager(ctx context.Context, opts Options, logger auth.Logger) (auth.RepositoryManager, error) {
	store, err := Open(ctx, opts, logger)
	if err != nil {
		return nil, err
	}

	m := auth.NewRepositoryManager(ctx, store, auth.WithManagerLogger(logger))
	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}
