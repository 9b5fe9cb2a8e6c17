// internal/blob/memory/memory.go
//
// In-memory blob backend for tests and local development.  Safe for
// concurrent use.
package memory

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/beautybuilder/platform/internal/blob"
)

// ErrNotFound is returned when deleting or fetching a missing key.
var ErrNotFound = errors.New("object not found")

// Backend keeps objects in a map.
type Backend struct {
	mu      sync.RWMutex
	objects map[string][]byte
	types   map[string]string
}

// New returns an empty backend.
func New() *Backend {
	return &Backend{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

var _ blob.Backend = (*Backend)(nil)

// Upload stores the object bytes.
func (b *Backend) Upload(ctx context.Context, key string, r io.Reader, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	b.types[key] = contentType
	return nil
}

// Delete removes the object.  Unlike S3 a missing key is an error here,
// so tests can assert release behaviour precisely.
func (b *Backend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.objects[key]; !ok {
		return ErrNotFound
	}
	delete(b.objects, key)
	delete(b.types, key)
	return nil
}

// Get returns the stored bytes, for test assertions.
func (b *Backend) Get(key string) ([]byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.objects[key]
	return data, ok
}

// Len reports the number of stored objects.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}
