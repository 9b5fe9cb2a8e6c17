// internal/api/api_test.go
//
// Error-taxonomy tests: every service failure must land on the status
// code the taxonomy promises, and an outage must never masquerade as a
// missing site.

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/beautybuilder/platform/internal/assembly"
	"github.com/beautybuilder/platform/internal/site"
)

// errReader fails every lookup with a fixed error.
type errReader struct{ err error }

func (r errReader) GetBySubdomain(ctx context.Context, sub string) (*site.Record, error) {
	return nil, r.err
}

// recReader serves one fixed record.
type recReader struct{ rec *site.Record }

func (r recReader) GetBySubdomain(ctx context.Context, sub string) (*site.Record, error) {
	if r.rec == nil || r.rec.Subdomain != sub {
		return nil, site.ErrNotFound
	}
	cp := *r.rec
	return &cp, nil
}

func publicRouter(reader assembly.Reader) http.Handler {
	h := New(assembly.New(reader), nil, nil)
	r := chi.NewRouter()
	r.Get("/sites/{subdomain}", h.PublicSite)
	return r
}

func fetch(t *testing.T, handler http.Handler, path string) (*httptest.ResponseRecorder, errResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	var body errResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &body)
	return rr, body
}

func TestPublicSite_StoreOutageIs503(t *testing.T) {
	handler := publicRouter(errReader{err: site.ErrUnavailable})

	rr, body := fetch(t, handler, "/sites/bellas")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
	if body.Error == "site not found" {
		t.Fatal("outage rendered as a missing site")
	}
}

func TestPublicSite_MissingAndDraftShareOneBody(t *testing.T) {
	missing := publicRouter(recReader{})
	draft := publicRouter(recReader{rec: &site.Record{
		TenantID:  "t1",
		Subdomain: "bellas",
		Content:   site.Content{BusinessName: "Bella's"},
	}})

	rrMissing, bodyMissing := fetch(t, missing, "/sites/bellas")
	rrDraft, bodyDraft := fetch(t, draft, "/sites/bellas")

	if rrMissing.Code != http.StatusNotFound || rrDraft.Code != http.StatusNotFound {
		t.Fatalf("statuses = %d, %d; want 404, 404", rrMissing.Code, rrDraft.Code)
	}
	if bodyMissing.Error != bodyDraft.Error {
		t.Fatalf("bodies differ: %q vs %q (draft existence leak)",
			bodyMissing.Error, bodyDraft.Error)
	}
}

func TestPublicSite_PublishedRendersView(t *testing.T) {
	handler := publicRouter(recReader{rec: &site.Record{
		TenantID:   "t1",
		Subdomain:  "bellas",
		TemplateID: "classic",
		Content: site.Content{
			BusinessName: "Bella's Beauty Studio",
			Services:     []site.Service{{Name: "Signature Facial", Price: 120}},
		},
		IsPublished: true,
	}})

	req := httptest.NewRequest(http.MethodGet, "/sites/bellas", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var view assembly.PublicSiteView
	if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if view.Subdomain != "bellas" || view.TemplateID != "classic" {
		t.Fatalf("unexpected view: %+v", view)
	}
	if len(view.Services) != 1 || view.Services[0].Name != "Signature Facial" {
		t.Fatalf("services = %+v", view.Services)
	}
}

func TestRenderErr_Taxonomy(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", site.ErrNotFound, http.StatusNotFound},
		{"not published", assembly.ErrNotPublished, http.StatusNotFound},
		{"conflict", site.ErrConflict, http.StatusConflict},
		{"unavailable", site.ErrUnavailable, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rr := httptest.NewRecorder()
			renderErr(rr, req, tc.err)
			if rr.Code != tc.want {
				t.Fatalf("renderErr(%v) = %d, want %d", tc.err, rr.Code, tc.want)
			}
		})
	}
}
