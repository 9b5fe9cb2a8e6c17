// internal/api/public.go
//
// Public site view endpoint.
//
// `GET /sites/{subdomain}` is the only path unauthenticated visitors can
// reach for tenant content.  The assembly service gates on the
// publication flag; this handler only translates outcomes to HTTP and
// logs the visit with whatever the requestinfo middleware attached.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/beautybuilder/platform/internal/requestinfo"
)

// PublicSite serves the assembled view for one tenant subdomain.
func (h *Handlers) PublicSite(w http.ResponseWriter, r *http.Request) {
	sub := chi.URLParam(r, "subdomain")

	view, err := h.Assembly.Assemble(r.Context(), sub)
	if err != nil {
		renderErr(w, r, err)
		return
	}

	fields := []zap.Field{zap.String("subdomain", sub)}
	if info := requestinfo.FromContext(r.Context()); info != nil {
		fields = append(fields,
			zap.String("device", info.UA.Device),
			zap.String("country", info.Geo.CountryISO),
			zap.Bool("bot", info.UA.IsBot))
	}
	zap.L().Debug("public site view", fields...)

	render.JSON(w, r, view)
}
