package invitations

import (
	"net/http"

	"github.com/dalemusser/gatherly/internal/app/system/apicors"
	"github.com/dalemusser/gatherly/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a router with the invitation endpoints. The caller must run
// SessionManager.LoadUser ahead of it so the current user is in context.
//
// The slug endpoints are public and allow any origin; everything else
// inherits the studio CORS policy from the parent router.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	// Public guest reads
	r.Group(func(pr chi.Router) {
		pr.Use(apicors.Public())
		pr.Get("/slug/", h.GetBySlug)
		pr.Get("/slug/{slug}", h.GetBySlug)
		pr.Get("/slug/{slug}/calendar.ics", h.Calendar)
	})

	// Owner reads; published invitations are readable by anyone
	r.Get("/{id}", h.Get)

	// Signed-in studio operations
	r.Group(func(sr chi.Router) {
		sr.Use(auth.RequireSignedIn)
		sr.Get("/", h.List)
		sr.Post("/", h.Upsert)
		sr.Put("/{id}", h.Update)
		sr.Post("/{id}/publish", h.Publish)
	})

	return r
}
