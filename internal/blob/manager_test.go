// internal/blob/manager_test.go
//
// Unit-tests for the blob manager over the in-memory backend.

package blob_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beautybuilder/platform/internal/blob"
	"github.com/beautybuilder/platform/internal/blob/memory"
)

// flakyBackend fails the first N uploads, then delegates to the in-memory
// backend.
type flakyBackend struct {
	inner    *memory.Backend
	failures int
}

func (f *flakyBackend) Upload(ctx context.Context, key string, r io.Reader, contentType string) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("connection reset")
	}
	return f.inner.Upload(ctx, key, r, contentType)
}

func (f *flakyBackend) Delete(ctx context.Context, key string) error {
	return f.inner.Delete(ctx, key)
}

const baseURL = "https://assets.beautybuilder.com"

func TestCommitNamespacesByTenant(t *testing.T) {
	backend := memory.New()
	mgr := blob.NewManager(backend, baseURL)
	ctx := context.Background()

	url, err := mgr.Commit(ctx, "t1", "blob-a", strings.NewReader("jpeg bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, baseURL+"/tenants/t1/gallery/blob-a", url)

	data, ok := backend.Get("tenants/t1/gallery/blob-a")
	require.True(t, ok)
	assert.Equal(t, []byte("jpeg bytes"), data)
}

func TestCommitRetriesTransientUploadOnce(t *testing.T) {
	backend := &flakyBackend{inner: memory.New(), failures: 1}
	mgr := blob.NewManager(backend, baseURL)
	ctx := context.Background()

	url, err := mgr.Commit(ctx, "t1", "blob-a", strings.NewReader("jpeg bytes"), "image/jpeg")
	require.NoError(t, err, "one transient failure must be absorbed")
	assert.Equal(t, baseURL+"/tenants/t1/gallery/blob-a", url)

	// The retry replays the full body, not a drained reader.
	data, ok := backend.inner.Get("tenants/t1/gallery/blob-a")
	require.True(t, ok)
	assert.Equal(t, []byte("jpeg bytes"), data)
}

func TestCommitSurfacesUnavailableAfterRetry(t *testing.T) {
	backend := &flakyBackend{inner: memory.New(), failures: 2}
	mgr := blob.NewManager(backend, baseURL)

	_, err := mgr.Commit(context.Background(), "t1", "blob-a", strings.NewReader("x"), "image/png")
	assert.ErrorIs(t, err, blob.ErrUnavailable)
	assert.Zero(t, backend.inner.Len())
}

func TestReleaseRemovesBackingBlob(t *testing.T) {
	backend := memory.New()
	mgr := blob.NewManager(backend, baseURL)
	ctx := context.Background()

	url, err := mgr.Commit(ctx, "t1", "blob-a", strings.NewReader("x"), "image/png")
	require.NoError(t, err)

	require.NoError(t, mgr.Release(ctx, "t1", url))
	assert.Zero(t, backend.Len(), "blob must be gone after release")
}

func TestReleaseRejectsForeignURL(t *testing.T) {
	backend := memory.New()
	mgr := blob.NewManager(backend, baseURL)
	ctx := context.Background()

	url, err := mgr.Commit(ctx, "t1", "blob-a", strings.NewReader("x"), "image/png")
	require.NoError(t, err)

	// Another tenant cannot release t1's asset.
	err = mgr.Release(ctx, "t2", url)
	assert.ErrorIs(t, err, blob.ErrForeignURL)
	assert.Equal(t, 1, backend.Len(), "foreign release must not delete")

	// Nor can anyone release a URL outside the public base.
	err = mgr.Release(ctx, "t1", "https://elsewhere.example.com/tenants/t1/gallery/blob-a")
	assert.ErrorIs(t, err, blob.ErrForeignURL)
}

func TestAllocatePrefix(t *testing.T) {
	mgr := blob.NewManager(memory.New(), baseURL)
	assert.Equal(t, "tenants/t9/gallery/", mgr.Allocate("t9"))
}

func TestNewBlobIDUnique(t *testing.T) {
	mgr := blob.NewManager(memory.New(), baseURL)
	a, b := mgr.NewBlobID(), mgr.NewBlobID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
