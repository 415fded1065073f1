// Package storage keeps generated documents, either in a local directory
// or in an S3 compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/editalgen/editalgen/config"
)

var (
	ErrNotExist    = errors.New("document does not exist")
	ErrExist       = errors.New("document already exists")
	ErrInvalidName = errors.New("invalid document name")
)

// Object describes a stored document.
type Object struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Store is the document store used by the generator and the download
// handler. Names are flat file names without directories.
type Store interface {
	// Save stores r under name. It never replaces an existing document and
	// fails with ErrExist when name is taken.
	Save(ctx context.Context, name string, r io.Reader) error
	Open(ctx context.Context, name string) (io.ReadCloser, int64, error)
	// Remove deletes name. Removing a missing document is not an error.
	Remove(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]Object, error)
	String() string
}

// New builds the store selected by cfg.
func New(ctx context.Context, cfg *config.StorageConfig) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Type {
	case config.StorageS3:
		return NewS3(ctx, cfg)
	default:
		if err := cfg.EnsureDataFolder(); err != nil {
			return nil, err
		}
		return NewLocal(cfg.LocalDir), nil
	}
}

// CheckName rejects empty names and anything that could escape the store.
func CheckName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || path.Base(name) != name ||
		strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
