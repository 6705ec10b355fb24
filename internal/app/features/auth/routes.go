package auth

import (
	sysauth "github.com/dalemusser/markloft/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Routes returns the /auth subrouter. Sign-in is open; verification
// requires a bearer token.
func Routes(h *Handler, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	r.Post("/google", h.HandleGoogleSignIn)

	r.Group(func(pr chi.Router) {
		pr.Use(sysauth.RequireUser(h.Verifier, logger))
		pr.Get("/verify", h.HandleVerify)
	})

	return r
}
