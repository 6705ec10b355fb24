package bookmarks

import (
	"github.com/dalemusser/markloft/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Routes returns the /bookmarks subrouter. Every route requires a
// verified bearer token.
func Routes(h *Handler, verifier auth.TokenVerifier, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireUser(verifier, logger))

		pr.Post("/", h.HandleCreate)
		pr.Put("/", h.HandleUpdate)
		pr.Patch("/", h.HandleMove)
		pr.Get("/", h.HandleList)
		pr.Delete("/", h.HandleDelete)
	})

	return r
}
