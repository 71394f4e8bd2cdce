package media

import (
	"context"
	"io"
)

// ObjectStore defines the object operations the library needs from a
// storage backend.
type ObjectStore interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// Library holds post photos in an object store. A nil *Library is valid:
// photo keys are then plain references and cleanup is someone else's
// problem.
type Library struct {
	backend ObjectStore
}

// NewLibrary constructs a Library over the provided backend.
func NewLibrary(backend ObjectStore) *Library {
	return &Library{backend: backend}
}

// EnsureBucket makes sure the configured bucket exists.
func (l *Library) EnsureBucket(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.backend.EnsureBucket(ctx)
}

// StorePhoto uploads a photo under the given key.
func (l *Library) StorePhoto(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if l == nil {
		return nil
	}
	return l.backend.Put(ctx, key, r, size, contentType)
}

// OpenPhoto opens a reader for a stored photo.
func (l *Library) OpenPhoto(ctx context.Context, key string) (io.ReadCloser, error) {
	if l == nil {
		return nil, nil
	}
	return l.backend.Get(ctx, key)
}

// RemovePhoto deletes a stored photo. Removing a key that is already gone
// is not an error; cascade sweeps must be re-invocable.
func (l *Library) RemovePhoto(ctx context.Context, key string) error {
	if l == nil || key == "" {
		return nil
	}
	return l.backend.Delete(ctx, key)
}

// Bucket returns the configured bucket name, or "" when disabled.
func (l *Library) Bucket() string {
	if l == nil {
		return ""
	}
	return l.backend.Bucket()
}
