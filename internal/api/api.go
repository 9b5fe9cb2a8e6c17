// internal/api/api.go
//
// HTTP handler set and shared error rendering.
//
// Context
// -------
// Handlers compose the public site view path and the authenticated owner
// editing path.  All responses are JSON via go-chi/render.  Error
// rendering is centralised here so the taxonomy maps to status codes in
// exactly one place:
//
//   site.ErrNotFound, assembly.ErrNotPublished → 404 (same body: an
//     unpublished draft is indistinguishable from an absent site)
//   editor validation failures                 → 422
//   site.ErrConflict                           → 409
//   site/blob ErrUnavailable                   → 503, never 404
//   anything else                              → 500
package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/beautybuilder/platform/internal/assembly"
	"github.com/beautybuilder/platform/internal/blob"
	"github.com/beautybuilder/platform/internal/editor"
	"github.com/beautybuilder/platform/internal/publish"
	"github.com/beautybuilder/platform/internal/site"
)

// Handlers bundles the services the HTTP surface needs.
type Handlers struct {
	Assembly *assembly.Service
	Editor   *editor.Service
	Machine  *publish.Machine
}

// New constructs the handler set.
func New(asm *assembly.Service, ed *editor.Service, machine *publish.Machine) *Handlers {
	return &Handlers{Assembly: asm, Editor: ed, Machine: machine}
}

// errResponse is the uniform error body.
type errResponse struct {
	Error string `json:"error"`
}

// renderErr maps a service error onto a status code and JSON body.
func renderErr(w http.ResponseWriter, r *http.Request, err error) {
	var vErrs validator.ValidationErrors

	switch {
	case errors.Is(err, site.ErrNotFound), errors.Is(err, assembly.ErrNotPublished):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, errResponse{Error: "site not found"})
	case errors.Is(err, site.ErrConflict):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, errResponse{Error: "subdomain already in use"})
	case errors.Is(err, site.ErrUnavailable), errors.Is(err, blob.ErrUnavailable):
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, errResponse{Error: "temporarily unavailable"})
	case errors.Is(err, editor.ErrInvalidSubdomain),
		errors.Is(err, editor.ErrBlobNotReferenced),
		errors.As(err, &vErrs):
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, errResponse{Error: err.Error()})
	default:
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errResponse{Error: "internal error"})
	}
}
