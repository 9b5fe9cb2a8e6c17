// internal/publish/machine.go
//
// Publication state machine.
//
// Context
// -------
// A tenant's site moves Unprovisioned → Draft on first save, then toggles
// Draft ⇄ Published.  Publication is a visibility flag over the *current*
// content: edits made while Published are immediately public, and
// "publish" never snapshots or diffs.  The assembly gate consults only
// `is_published`, and every transition here invalidates the cached view
// so the flag takes effect within the same request cycle.
//
// Notes
// -----
//   - Publish and Unpublish are idempotent; repeating one is a no-op
//     success, not an error.
//   - Publish on an unprovisioned tenant fails with site.ErrNotFound; a
//     SiteRecord must exist first.
package publish

import (
	"context"

	"go.uber.org/zap"

	"github.com/beautybuilder/platform/internal/metrics"
	"github.com/beautybuilder/platform/internal/site"
)

// State is the publication lifecycle position of one tenant's site.
type State int

const (
	Unprovisioned State = iota
	Draft
	Published
)

func (s State) String() string {
	switch s {
	case Draft:
		return "draft"
	case Published:
		return "published"
	default:
		return "unprovisioned"
	}
}

// Store is the slice of the site store the machine needs.
type Store interface {
	Get(ctx context.Context, tenantID string) (*site.Record, error)
	Create(ctx context.Context, tenantID, subdomain, templateID string, content site.Content) error
	SetPublished(ctx context.Context, tenantID string, published bool) (*site.Record, error)
}

// Invalidator drops a cached public view.  Satisfied by assembly.Service.
type Invalidator interface {
	Invalidate(subdomain string)
}

// Machine applies publication transitions for any tenant.
type Machine struct {
	store Store
	views Invalidator
}

// New constructs a Machine.
func New(store Store, views Invalidator) *Machine {
	return &Machine{store: store, views: views}
}

// StateOf reports the current lifecycle state for a tenant.
func (m *Machine) StateOf(ctx context.Context, tenantID string) (State, error) {
	rec, err := m.store.Get(ctx, tenantID)
	if err != nil {
		if err == site.ErrNotFound {
			return Unprovisioned, nil
		}
		return Unprovisioned, err
	}
	if rec.IsPublished {
		return Published, nil
	}
	return Draft, nil
}

// Provision creates the SiteRecord on first save: Unprovisioned → Draft.
// The new row is never published.
func (m *Machine) Provision(ctx context.Context, tenantID, subdomain, templateID string, content site.Content) error {
	if err := m.store.Create(ctx, tenantID, subdomain, templateID, content); err != nil {
		return err
	}
	zap.L().Info("site provisioned",
		zap.String("tenant", tenantID),
		zap.String("subdomain", subdomain))
	return nil
}

// Publish makes the current content publicly visible: Draft → Published.
// Idempotent on an already-published site.
func (m *Machine) Publish(ctx context.Context, tenantID string) (*site.Record, error) {
	rec, err := m.store.SetPublished(ctx, tenantID, true)
	if err != nil {
		return nil, err
	}
	m.views.Invalidate(rec.Subdomain)
	metrics.PublishTotal.Inc()
	zap.L().Info("site published", zap.String("tenant", tenantID),
		zap.String("subdomain", rec.Subdomain))
	return rec, nil
}

// Unpublish hides the site: Published → Draft.  Content is untouched, so
// a later Publish restores exactly what was visible before.
func (m *Machine) Unpublish(ctx context.Context, tenantID string) (*site.Record, error) {
	rec, err := m.store.SetPublished(ctx, tenantID, false)
	if err != nil {
		return nil, err
	}
	m.views.Invalidate(rec.Subdomain)
	metrics.UnpublishTotal.Inc()
	zap.L().Info("site unpublished", zap.String("tenant", tenantID),
		zap.String("subdomain", rec.Subdomain))
	return rec, nil
}
