// internal/editor/service.go
//
// Owner-side editing operations.
//
// Context
// -------
// The editor service sits between the authenticated owner endpoints and
// the site store.  It validates every submission before anything reaches
// the store, provisions the SiteRecord lazily on the first save, and owns
// the gallery add/remove choreography against the blob manager.
//
// Workflow
// --------
//   - SaveContent: validate → provision-on-first-save or merge-upsert →
//     invalidate the cached public view.
//   - AddGalleryImage: commit blob first, then persist the appended URL
//     list; if the persist fails the committed blob is released
//     best-effort (an orphaned blob is the tolerated direction).
//   - RemoveGalleryImage: persist the shortened list first, confirm it
//     stuck, then release the blob.  This ordering guarantees the public
//     gallery never references a deleted blob.
//
// Concurrency
// -----------
// All list-mutating operations for one tenant serialise through a keyed
// lock; different tenants never contend.  Concurrent full saves remain
// last-write-wins per submission, which is documented as a known
// limitation of the single-copy content model.
package editor

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/beautybuilder/platform/internal/locking"
	"github.com/beautybuilder/platform/internal/site"
)

// Validation sentinels.
var (
	// ErrInvalidSubdomain rejects a malformed subdomain before it reaches
	// the store.
	ErrInvalidSubdomain = errors.New("invalid subdomain")

	// ErrBlobNotReferenced rejects a gallery removal for a URL that is
	// not in the tenant's gallery list.
	ErrBlobNotReferenced = errors.New("url not in gallery")
)

// subdomainRE matches the allowed shape: lowercase alphanumeric and
// hyphen, 1–20 characters.
var subdomainRE = regexp.MustCompile(`^[a-z0-9-]{1,20}$`)

// Store is the slice of the site store the editor needs.
type Store interface {
	Get(ctx context.Context, tenantID string) (*site.Record, error)
	UpsertContent(ctx context.Context, tenantID string, patch site.Patch) (*site.Record, error)
}

// Provisioner creates the SiteRecord on first save.  Satisfied by
// publish.Machine.
type Provisioner interface {
	Provision(ctx context.Context, tenantID, subdomain, templateID string, content site.Content) error
}

// Blobs is the gallery storage surface.  Satisfied by blob.Manager.
type Blobs interface {
	NewBlobID() string
	Commit(ctx context.Context, tenantID, blobID string, r io.Reader, contentType string) (string, error)
	Release(ctx context.Context, tenantID, url string) error
}

// Invalidator drops a cached public view.  Satisfied by assembly.Service.
type Invalidator interface {
	Invalidate(subdomain string)
}

// Service orchestrates owner mutations.
type Service struct {
	store     Store
	provision Provisioner
	blobs     Blobs
	views     Invalidator
	locks     *locking.Keyed
	validate  *validator.Validate
}

// New constructs the editor service.
func New(store Store, provision Provisioner, blobs Blobs, views Invalidator) *Service {
	return &Service{
		store:     store,
		provision: provision,
		blobs:     blobs,
		views:     views,
		locks:     locking.NewKeyed(),
		validate:  validator.New(),
	}
}

// NormalizeSubdomain lowercases and strips characters outside the allowed
// alphabet, mirroring what the onboarding form shows the owner.
func NormalizeSubdomain(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	var b strings.Builder
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateSubdomain checks the normalised shape.
func ValidateSubdomain(sub string) error {
	if !subdomainRE.MatchString(sub) {
		return ErrInvalidSubdomain
	}
	return nil
}

// SaveContent persists one editor submission.  On the first save for a
// tenant it provisions the SiteRecord (unpublished); afterwards it merges
// the patch per store semantics.  The subdomain and template are only
// consulted at provision time.
func (s *Service) SaveContent(ctx context.Context, tenantID, subdomain, templateID string, patch site.Patch) (*site.Record, error) {
	s.locks.Lock(tenantID)
	defer s.locks.Unlock(tenantID)

	rec, err := s.store.Get(ctx, tenantID)
	switch {
	case errors.Is(err, site.ErrNotFound):
		sub := NormalizeSubdomain(subdomain)
		if err := ValidateSubdomain(sub); err != nil {
			return nil, err
		}
		content := patch.Apply(site.Content{})
		if err := s.validate.Struct(content); err != nil {
			return nil, err
		}
		if err := s.provision.Provision(ctx, tenantID, sub, templateID, content); err != nil {
			return nil, err
		}
		return s.store.Get(ctx, tenantID)
	case err != nil:
		return nil, err
	}

	merged := patch.Apply(rec.Content)
	if err := s.validate.Struct(merged); err != nil {
		return nil, err
	}

	updated, err := s.store.UpsertContent(ctx, tenantID, patch)
	if err != nil {
		return nil, err
	}
	s.views.Invalidate(updated.Subdomain)
	return updated, nil
}

// AddGalleryImage commits the upload and appends its public URL to the
// gallery list.
func (s *Service) AddGalleryImage(ctx context.Context, tenantID string, r io.Reader, contentType string) (string, error) {
	s.locks.Lock(tenantID)
	defer s.locks.Unlock(tenantID)

	rec, err := s.store.Get(ctx, tenantID)
	if err != nil {
		return "", err
	}

	url, err := s.blobs.Commit(ctx, tenantID, s.blobs.NewBlobID(), r, contentType)
	if err != nil {
		return "", err
	}

	gallery := append(append([]string(nil), rec.Content.Gallery...), url)
	updated, err := s.store.UpsertContent(ctx, tenantID, site.Patch{Gallery: gallery})
	if err != nil {
		// The committed blob is now unreferenced.  Release best-effort;
		// an orphaned blob is tolerated, a broken public URL is not.
		if relErr := s.blobs.Release(ctx, tenantID, url); relErr != nil {
			zap.L().Warn("orphaned gallery blob",
				zap.String("tenant", tenantID), zap.String("url", url),
				zap.Error(relErr))
		}
		return "", err
	}
	s.views.Invalidate(updated.Subdomain)
	return url, nil
}

// RemoveGalleryImage drops the URL from the gallery list, confirms the
// persist, and only then releases the backing blob.
func (s *Service) RemoveGalleryImage(ctx context.Context, tenantID, url string) error {
	s.locks.Lock(tenantID)
	defer s.locks.Unlock(tenantID)

	rec, err := s.store.Get(ctx, tenantID)
	if err != nil {
		return err
	}

	gallery := make([]string, 0, len(rec.Content.Gallery))
	found := false
	for _, u := range rec.Content.Gallery {
		if u == url {
			found = true
			continue
		}
		gallery = append(gallery, u)
	}
	if !found {
		return ErrBlobNotReferenced
	}

	updated, err := s.store.UpsertContent(ctx, tenantID, site.Patch{Gallery: gallery})
	if err != nil {
		return err
	}
	s.views.Invalidate(updated.Subdomain)

	if err := s.blobs.Release(ctx, tenantID, url); err != nil {
		// List already persisted, so visitors never see the URL again.
		// The retained blob is the tolerated inconsistency.
		zap.L().Warn("gallery blob release failed",
			zap.String("tenant", tenantID), zap.String("url", url),
			zap.Error(err))
	}
	return nil
}
