// internal/publish/machine_test.go
//
// Unit-tests for the publication state machine over an in-memory store
// fake.  The invalidation spy verifies every transition drops the cached
// public view.

package publish

import (
	"context"
	"errors"
	"testing"

	"github.com/beautybuilder/platform/internal/site"
)

type fakeStore struct {
	recs map[string]*site.Record
}

func newFakeStore() *fakeStore {
	return &fakeStore{recs: make(map[string]*site.Record)}
}

func (f *fakeStore) Get(ctx context.Context, tenantID string) (*site.Record, error) {
	rec, ok := f.recs[tenantID]
	if !ok {
		return nil, site.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeStore) Create(ctx context.Context, tenantID, subdomain, templateID string, content site.Content) error {
	for _, rec := range f.recs {
		if rec.Subdomain == subdomain {
			return site.ErrConflict
		}
	}
	f.recs[tenantID] = &site.Record{
		TenantID:   tenantID,
		Subdomain:  subdomain,
		TemplateID: templateID,
		Content:    content,
	}
	return nil
}

func (f *fakeStore) SetPublished(ctx context.Context, tenantID string, published bool) (*site.Record, error) {
	rec, ok := f.recs[tenantID]
	if !ok {
		return nil, site.ErrNotFound
	}
	rec.IsPublished = published
	cp := *rec
	return &cp, nil
}

type invalidateSpy struct {
	subs []string
}

func (s *invalidateSpy) Invalidate(sub string) { s.subs = append(s.subs, sub) }

func TestStateOf_Lifecycle(t *testing.T) {
	store := newFakeStore()
	spy := &invalidateSpy{}
	m := New(store, spy)
	ctx := context.Background()

	if st, _ := m.StateOf(ctx, "t1"); st != Unprovisioned {
		t.Fatalf("state = %v, want Unprovisioned", st)
	}

	if err := m.Provision(ctx, "t1", "bellas", "classic", site.Content{BusinessName: "Bella's"}); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if st, _ := m.StateOf(ctx, "t1"); st != Draft {
		t.Fatalf("state after provision = %v, want Draft", st)
	}

	if _, err := m.Publish(ctx, "t1"); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if st, _ := m.StateOf(ctx, "t1"); st != Published {
		t.Fatalf("state after publish = %v, want Published", st)
	}

	if _, err := m.Unpublish(ctx, "t1"); err != nil {
		t.Fatalf("Unpublish: %v", err)
	}
	if st, _ := m.StateOf(ctx, "t1"); st != Draft {
		t.Fatalf("state after unpublish = %v, want Draft", st)
	}
}

func TestPublish_Idempotent(t *testing.T) {
	store := newFakeStore()
	m := New(store, &invalidateSpy{})
	ctx := context.Background()

	if err := m.Provision(ctx, "t1", "bellas", "classic", site.Content{BusinessName: "Bella's"}); err != nil {
		t.Fatalf("Provision: %v", err)
	}

	first, err := m.Publish(ctx, "t1")
	if err != nil {
		t.Fatalf("first Publish: %v", err)
	}
	second, err := m.Publish(ctx, "t1")
	if err != nil {
		t.Fatalf("second Publish: %v", err)
	}
	if first.IsPublished != second.IsPublished || second.Subdomain != "bellas" {
		t.Fatalf("publish twice diverged: %+v vs %+v", first, second)
	}
}

func TestPublish_Unprovisioned(t *testing.T) {
	m := New(newFakeStore(), &invalidateSpy{})

	_, err := m.Publish(context.Background(), "ghost")
	if !errors.Is(err, site.ErrNotFound) {
		t.Fatalf("err = %v, want site.ErrNotFound", err)
	}
}

func TestTransitions_InvalidateCachedView(t *testing.T) {
	store := newFakeStore()
	spy := &invalidateSpy{}
	m := New(store, spy)
	ctx := context.Background()

	if err := m.Provision(ctx, "t1", "bellas", "classic", site.Content{BusinessName: "Bella's"}); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if _, err := m.Publish(ctx, "t1"); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if _, err := m.Unpublish(ctx, "t1"); err != nil {
		t.Fatalf("Unpublish: %v", err)
	}

	if len(spy.subs) != 2 || spy.subs[0] != "bellas" || spy.subs[1] != "bellas" {
		t.Fatalf("invalidations = %v, want [bellas bellas]", spy.subs)
	}
}

func TestProvision_DuplicateSubdomain(t *testing.T) {
	store := newFakeStore()
	m := New(store, &invalidateSpy{})
	ctx := context.Background()

	if err := m.Provision(ctx, "t1", "bellas", "classic", site.Content{BusinessName: "Bella's"}); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	err := m.Provision(ctx, "t2", "bellas", "classic", site.Content{BusinessName: "Copycat"})
	if !errors.Is(err, site.ErrConflict) {
		t.Fatalf("err = %v, want site.ErrConflict", err)
	}
}
