package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/compassd/compass/internal/httpserver/deps"
	"github.com/compassd/compass/internal/httpserver/handlers"
)

func init() { Register(registerDirectory) }

func registerDirectory(r chi.Router, d deps.Deps) {
	r.Get("/directory", handlers.GetDirectory(d))
	r.Delete("/directory", handlers.ResetDirectory(d))
	r.Get("/endpoint", handlers.GetEndpoint(d))
	r.Post("/refresh", handlers.Refresh(d))
	r.Put("/offline", handlers.SetOffline(d))
}
