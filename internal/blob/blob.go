// internal/blob/blob.go
//
// Gallery blob reference management.
//
// Context
// -------
// Uploaded gallery images live in an external object store and are
// referenced from the site's content by public URL.  The Manager owns the
// key layout: every key is namespaced under the owning tenant, so no
// tenant can overwrite or enumerate another tenant's assets, and Release
// refuses any URL that does not map back into the caller's namespace.
//
// The remove ordering contract belongs to the caller (editor): drop the
// URL from the gallery list, confirm the row persisted, then Release.
// An orphaned unreferenced blob is tolerated; a referenced URL with no
// backing blob is not.
//
// Notes
// -----
//   - Backend is the minimal storage surface; S3 and an in-memory test
//     double implement it.
//   - Transient backend failures are retried once, then surfaced.
package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/beautybuilder/platform/internal/metrics"
)

// Backend is the external object store surface the Manager needs.
type Backend interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
}

// Sentinel errors.
var (
	// ErrForeignURL is returned when a release URL does not belong to the
	// calling tenant's namespace.
	ErrForeignURL = errors.New("url outside tenant namespace")

	// ErrUnavailable wraps a transient object-store failure that survived
	// one retry.
	ErrUnavailable = errors.New("blob store unavailable")
)

// Manager allocates tenant-scoped keys, commits uploads, and releases
// blobs by public URL.
type Manager struct {
	backend Backend
	baseURL string // public URL prefix, no trailing slash
}

// NewManager wraps a Backend.  baseURL is the public prefix under which
// committed keys are reachable (bucket website or CDN origin).
func NewManager(backend Backend, baseURL string) *Manager {
	return &Manager{
		backend: backend,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Allocate returns the key prefix for one tenant's gallery uploads.
func (m *Manager) Allocate(tenantID string) string {
	return "tenants/" + tenantID + "/gallery/"
}

// NewBlobID returns a fresh upload identifier.
func (m *Manager) NewBlobID() string { return uuid.NewString() }

// Commit uploads the blob under the tenant's namespace and returns its
// public URL.  The body is buffered so a transient upload failure can be
// retried once with a fresh reader; callers bound the size upstream.
func (m *Manager) Commit(ctx context.Context, tenantID, blobID string, r io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("blob: read upload body: %w", err)
	}

	key := m.Allocate(tenantID) + blobID
	if err := m.backend.Upload(ctx, key, bytes.NewReader(data), contentType); err != nil {
		time.Sleep(100 * time.Millisecond)
		if err = m.backend.Upload(ctx, key, bytes.NewReader(data), contentType); err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	metrics.GalleryUploadTotal.Inc()
	return m.baseURL + "/" + key, nil
}

// Release deletes the blob behind a previously committed URL.  The URL
// must resolve into the calling tenant's namespace.  Deletion is retried
// once on failure; a second failure is surfaced so the caller can log the
// orphan (blob-retained is the tolerated direction).
func (m *Manager) Release(ctx context.Context, tenantID, url string) error {
	key, ok := strings.CutPrefix(url, m.baseURL+"/")
	if !ok || !strings.HasPrefix(key, m.Allocate(tenantID)) {
		return ErrForeignURL
	}

	if err := m.backend.Delete(ctx, key); err != nil {
		time.Sleep(100 * time.Millisecond)
		if err = m.backend.Delete(ctx, key); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	metrics.GalleryReleaseTotal.Inc()
	return nil
}
