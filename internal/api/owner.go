// internal/api/owner.go
//
// Authenticated owner editing endpoints.
//
// Context
// -------
// Identity is established by the external provider; we only verify its
// JWT (go-chi/jwtauth) and read the `tenant_id` claim set at signup.
// Subdomain and template are consulted at provision time only.
//
// Endpoints
// ---------
//   PUT    /api/site/content    – save content (provisions on first save)
//   POST   /api/site/publish    – idempotent
//   POST   /api/site/unpublish  – idempotent
//   POST   /api/site/gallery    – multipart upload, field "image"
//   DELETE /api/site/gallery    – body {"url": "..."}
package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"

	"github.com/beautybuilder/platform/internal/site"
)

// maxUploadBytes caps one gallery image.
const maxUploadBytes = 10 << 20

// errNoTenantClaim is returned when a verified token lacks tenant_id.
var errNoTenantClaim = errors.New("token missing tenant_id claim")

// tenantFromToken pulls the tenant identity out of the verified JWT.
func tenantFromToken(r *http.Request) (tenantID, subdomain string, err error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", "", err
	}
	tenantID, _ = claims["tenant_id"].(string)
	if tenantID == "" {
		return "", "", errNoTenantClaim
	}
	subdomain, _ = claims["subdomain"].(string)
	return tenantID, subdomain, nil
}

// saveContentRequest is the PUT /api/site/content body.
type saveContentRequest struct {
	TemplateID string     `json:"templateId"`
	Content    site.Patch `json:"content"`
}

// siteResponse echoes the stored record back to the editor.
type siteResponse struct {
	TenantID    string       `json:"tenantId"`
	Subdomain   string       `json:"subdomain"`
	TemplateID  string       `json:"templateId"`
	Content     site.Content `json:"content"`
	IsPublished bool         `json:"isPublished"`
}

func toSiteResponse(rec *site.Record) siteResponse {
	return siteResponse{
		TenantID:    rec.TenantID,
		Subdomain:   rec.Subdomain,
		TemplateID:  rec.TemplateID,
		Content:     rec.Content,
		IsPublished: rec.IsPublished,
	}
}

// SaveContent persists one editor submission.
func (h *Handlers) SaveContent(w http.ResponseWriter, r *http.Request) {
	tenantID, subdomain, err := tenantFromToken(r)
	if err != nil {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, errResponse{Error: "unauthorized"})
		return
	}

	var req saveContentRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errResponse{Error: "malformed request body"})
		return
	}
	if req.TemplateID == "" {
		req.TemplateID = "classic"
	}

	rec, err := h.Editor.SaveContent(r.Context(), tenantID, subdomain, req.TemplateID, req.Content)
	if err != nil {
		renderErr(w, r, err)
		return
	}
	render.JSON(w, r, toSiteResponse(rec))
}

// Publish makes the current content publicly visible.
func (h *Handlers) Publish(w http.ResponseWriter, r *http.Request) {
	tenantID, _, err := tenantFromToken(r)
	if err != nil {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, errResponse{Error: "unauthorized"})
		return
	}

	rec, err := h.Machine.Publish(r.Context(), tenantID)
	if err != nil {
		renderErr(w, r, err)
		return
	}
	render.JSON(w, r, toSiteResponse(rec))
}

// Unpublish hides the site without touching content.
func (h *Handlers) Unpublish(w http.ResponseWriter, r *http.Request) {
	tenantID, _, err := tenantFromToken(r)
	if err != nil {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, errResponse{Error: "unauthorized"})
		return
	}

	rec, err := h.Machine.Unpublish(r.Context(), tenantID)
	if err != nil {
		renderErr(w, r, err)
		return
	}
	render.JSON(w, r, toSiteResponse(rec))
}

// AddGalleryImage accepts a multipart upload and appends its public URL
// to the gallery list.
func (h *Handlers) AddGalleryImage(w http.ResponseWriter, r *http.Request) {
	tenantID, _, err := tenantFromToken(r)
	if err != nil {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, errResponse{Error: "unauthorized"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("image")
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errResponse{Error: "missing image upload"})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := h.Editor.AddGalleryImage(r.Context(), tenantID, file, contentType)
	if err != nil {
		renderErr(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]string{"url": url})
}

// removeGalleryRequest is the DELETE /api/site/gallery body.
type removeGalleryRequest struct {
	URL string `json:"url"`
}

// RemoveGalleryImage drops a gallery entry and releases its blob.
func (h *Handlers) RemoveGalleryImage(w http.ResponseWriter, r *http.Request) {
	tenantID, _, err := tenantFromToken(r)
	if err != nil {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, errResponse{Error: "unauthorized"})
		return
	}

	var req removeGalleryRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil || req.URL == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errResponse{Error: "missing url"})
		return
	}

	if err := h.Editor.RemoveGalleryImage(r.Context(), tenantID, req.URL); err != nil {
		renderErr(w, r, err)
		return
	}
	render.NoContent(w, r)
}
