// internal/assembly/assembly.go
//
// Public site composition with a mutation-invalidated cache.
//
// Context
// -------
// Assemble is the only read path visitors hit: subdomain → stored site
// row → read-only PublicSiteView.  The visibility gate lives here and
// consults nothing but `is_published`; an unpublished or absent site is
// indistinguishable to the caller (no draft-existence leak).
//
// Workflow
// --------
//  1. Cache hit → return the composed view as-is.
//  2. Miss → singleflight collapses concurrent assemblies for one
//     subdomain into a single store read.
//  3. publish, unpublish, and every content edit call Invalidate, so a
//     view is never stale past one mutation cycle.  A per-subdomain
//     generation counter guards the race where Invalidate fires while an
//     assembly is in flight: the composed view is only cached when the
//     generation it started under is still current.
//
// Notes
// -----
//   - Only published views are cached.  NotFound/NotPublished outcomes
//     hit the store each time; both states are cheap point lookups.
//   - Oxford commas, two spaces after periods.
package assembly

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/beautybuilder/platform/internal/metrics"
	"github.com/beautybuilder/platform/internal/site"
)

// ErrNotPublished is returned for a site that exists but is in Draft.
// The HTTP surface renders it exactly like site.ErrNotFound.
var ErrNotPublished = errors.New("site not published")

// Reader is the slice of the site store the assembler needs.  Narrow on
// purpose so tests can inject a fake without sqlmock.
type Reader interface {
	GetBySubdomain(ctx context.Context, subdomain string) (*site.Record, error)
}

// PublicSiteView is the externally-visible composition of one published
// site.  All fields are copied from the live content object; the struct
// is read-only by convention.
type PublicSiteView struct {
	Subdomain    string            `json:"subdomain"`
	TemplateID   string            `json:"templateId"`
	BusinessName string            `json:"businessName"`
	Tagline      string            `json:"tagline,omitempty"`
	Description  string            `json:"description,omitempty"`
	Owner        string            `json:"owner,omitempty"`
	Phone        string            `json:"phone,omitempty"`
	Email        string            `json:"email,omitempty"`
	Address      string            `json:"address,omitempty"`
	Hours        map[string]string `json:"hours,omitempty"`
	Social       site.Social       `json:"social"`
	Services     []site.Service    `json:"services"`
	Gallery      []string          `json:"gallery"`
	Colors       site.Colors       `json:"colors"`
}

// Service assembles public views and caches them per subdomain.
type Service struct {
	store Reader
	sfg   singleflight.Group
	views sync.Map // subdomain → *PublicSiteView

	genMu sync.Mutex
	gens  map[string]uint64 // subdomain → invalidation generation
}

// New constructs a Service over the given store.
func New(store Reader) *Service {
	return &Service{store: store, gens: make(map[string]uint64)}
}

// generation reports the current invalidation generation for a subdomain.
func (s *Service) generation(subdomain string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.gens[subdomain]
}

// Assemble returns the public view for a subdomain, or site.ErrNotFound /
// ErrNotPublished.  Pure read; no side effects beyond the cache.
func (s *Service) Assemble(ctx context.Context, subdomain string) (*PublicSiteView, error) {
	if v, ok := s.views.Load(subdomain); ok {
		metrics.AssemblyCacheHitsTotal.Inc()
		return v.(*PublicSiteView), nil
	}

	v, err, _ := s.sfg.Do(subdomain, func() (interface{}, error) {
		// Double-check after singleflight barrier.
		if v, ok := s.views.Load(subdomain); ok {
			return v, nil
		}
		gen := s.generation(subdomain)
		// Detached context: joined waiters must not fail because the
		// initiating request was cancelled.
		rec, err := s.store.GetBySubdomain(context.Background(), subdomain)
		if err != nil {
			if !errors.Is(err, site.ErrNotFound) {
				metrics.SiteLoadErrorsTotal.Inc()
			}
			return nil, err
		}
		if !rec.IsPublished {
			return nil, ErrNotPublished
		}
		metrics.SiteLoadTotal.Inc()
		metrics.AssemblyCacheMissesTotal.Inc()
		view := compose(rec)
		// Cache only if no Invalidate landed while the row was loading;
		// a stale view cached here would survive until the next mutation.
		if s.generation(subdomain) == gen {
			s.views.Store(subdomain, view)
		}
		return view, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*PublicSiteView), nil
}

// Invalidate drops the cached view for a subdomain.  Called by the
// publication state machine and the editor after every mutation.  Bumping
// the generation first prevents an in-flight assembly from caching the
// pre-mutation row; Forget makes the next Assemble start a fresh flight
// instead of joining one that read stale data.
func (s *Service) Invalidate(subdomain string) {
	s.genMu.Lock()
	s.gens[subdomain]++
	s.genMu.Unlock()
	s.views.Delete(subdomain)
	s.sfg.Forget(subdomain)
}

// compose copies the live content into the read-only view shape.
func compose(rec *site.Record) *PublicSiteView {
	c := rec.Content
	return &PublicSiteView{
		Subdomain:    rec.Subdomain,
		TemplateID:   rec.TemplateID,
		BusinessName: c.BusinessName,
		Tagline:      c.Tagline,
		Description:  c.Description,
		Owner:        c.Owner,
		Phone:        c.Phone,
		Email:        c.Email,
		Address:      c.Address,
		Hours:        c.Hours,
		Social:       c.Social,
		Services:     c.Services,
		Gallery:      c.Gallery,
		Colors:       c.Colors,
	}
}
