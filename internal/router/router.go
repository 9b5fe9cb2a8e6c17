// internal/router/router.go
//
// Request routing: host rewrite plus route assembly.
//
// Context
// -------
// Every inbound request passes the host-rewrite middleware first.  The
// resolver classifies the Host header; MainApplication and Ignored hosts
// pass through unchanged, while Tenant(sub) requests have their path
// rewritten to the internal tenant-site view path.  The rewrite mutates
// `r.URL.Path` in place; method, headers, and body travel untouched, and
// the caller never sees a redirect.
//
// Notes
// -----
//   - The rewrite target embeds the subdomain as a path segment, so chi
//     URL params deliver it to the handler like any other route.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"

	"github.com/beautybuilder/platform/internal/api"
	"github.com/beautybuilder/platform/internal/requestinfo"
	"github.com/beautybuilder/platform/internal/resolver"
)

// HostRewrite classifies the Host header and rewrites tenant requests to
// the internal site-view path.
func HostRewrite(res *resolver.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resn := res.Resolve(r.Host)
			if resn.Kind == resolver.Tenant {
				if r.URL.Path == "/" {
					r.URL.Path = "/sites/" + resn.Subdomain
				} else {
					r.URL.Path = "/sites/" + resn.Subdomain + r.URL.Path
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// New assembles the full route tree.  mainApp handles everything that is
// neither a tenant site nor an owner API call (dashboard, onboarding).
func New(res *resolver.Resolver, h *api.Handlers, tokenAuth *jwtauth.JWTAuth, mainApp http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(HostRewrite(res))

	// Public tenant site view.
	r.Group(func(r chi.Router) {
		r.Use(requestinfo.Enrich)
		r.Get("/sites/{subdomain}", h.PublicSite)
	})

	// Owner editing surface, JWT-gated.
	r.Route("/api/site", func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokenAuth))
		r.Use(jwtauth.Authenticator)

		r.Put("/content", h.SaveContent)
		r.Post("/publish", h.Publish)
		r.Post("/unpublish", h.Unpublish)
		r.Post("/gallery", h.AddGalleryImage)
		r.Delete("/gallery", h.RemoveGalleryImage)
	})

	// Everything else is the platform's own application surface.
	r.NotFound(mainApp.ServeHTTP)

	return r
}
