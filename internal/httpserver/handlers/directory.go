package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/compassd/compass/internal/httpserver/deps"
	"github.com/compassd/compass/internal/logger"
)

type directoryResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Servers   []string  `json:"servers"`
}

// GetDirectory returns the current best-known directory.
func GetDirectory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dir := d.Cache.Current()
		if dir == nil {
			http.Error(w, "no directory available", http.StatusNotFound)
			return
		}

		servers := make([]string, 0, dir.Len())
		for _, ep := range dir.Endpoints() {
			servers = append(servers, ep.String())
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(directoryResponse{
			Timestamp: dir.Timestamp(),
			Servers:   servers,
		})
	}
}

// ResetDirectory deletes the cached directory file and invalidates the
// in-memory one, e.g. on identity reset. The builtin remains the
// fallback.
func ResetDirectory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Cache.Reset(); err != nil {
			d.Logger.Error("failed to reset directory", logger.Error(err))
			http.Error(w, "reset failed", http.StatusInternalServerError)
			return
		}
		d.Logger.Info("directory reset", logger.String("remote_ip", r.RemoteAddr))
		w.WriteHeader(http.StatusNoContent)
	}
}
