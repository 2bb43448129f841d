package auth_test

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medistock/medistock/internal/auth"
)

func routes(h *auth.Handler) http.Handler {
	r := chi.NewRouter()
	r.Route("/auth", h.MountRoutes)
	return r
}
