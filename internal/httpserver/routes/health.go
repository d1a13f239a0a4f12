package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/compassd/compass/internal/httpserver/deps"
	"github.com/compassd/compass/internal/httpserver/handlers"
)

func init() { Register(registerHealth) }

func registerHealth(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))
	r.Get("/readyz", handlers.Readyz(d))
}
