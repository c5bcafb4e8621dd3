package repository

import (
	"context"
	"os"
	"path/filepath"

	"github.com/goliatone/go-errors"
	auth "github.com/goliatone/go-user-auth"
)

// FileStore keeps the collection in a JSON file on local disk
type FileStore struct {
	path   string
	perm   os.FileMode
	logger auth.Logger
}

var _ auth.DocumentStore = (*FileStore)(nil)

// NewFileStore creates a store for the document at path. Nothing is
// touched on disk until the first Load or Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:   path,
		perm:   0o600,
		logger: nopLogger{},
	}
}

func (s *FileStore) WithLogger(logger auth.Logger) *FileStore {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithPerm sets the file mode used for the document
func (s *FileStore) WithPerm(perm os.FileMode) *FileStore {
	s.perm = perm
	return s
}

// Path returns the document location
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context) auth.Collection {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.logger.Info("user collection not found, starting empty", "path", s.path)
		return auth.NewCollection()
	}
	if err != nil {
		s.logger.Error("failed to read user collection, starting empty", "path", s.path, "error", err)
		return auth.NewCollection()
	}

	return decodeCollection(data, s.logger, s.path)
}

// Save overwrites the document. It writes a temp file next to the target
// and renames it so readers never see a partial document.
func (s *FileStore) Save(ctx context.Context, c auth.Collection) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeCollection(c)
	if err != nil {
		return s.wrap(err, "failed to encode user collection")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return s.wrap(err, "failed to create collection directory")
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return s.wrap(err, "failed to create temp file")
	}
	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return s.wrap(err, "failed to write user collection")
	}

	if err := tmp.Sync(); err != nil {
		cleanup()
		return s.wrap(err, "failed to sync user collection")
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return s.wrap(err, "failed to close temp file")
	}

	if err := os.Chmod(tmpName, s.perm); err != nil {
		_ = os.Remove(tmpName)
		return s.wrap(err, "failed to set collection permissions")
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return s.wrap(err, "failed to replace user collection")
	}

	return nil
}

func (s *FileStore) wrap(err error, msg string) error {
	return errors.Wrap(err, errors.CategoryInternal, msg).
		WithTextCode(auth.TextCodeStorage).
		WithMetadata(map[string]any{"path": s.path})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
