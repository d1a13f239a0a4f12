package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/compassd/compass/internal/httpserver/deps"
	"github.com/compassd/compass/internal/logger"
)

type offlineRequest struct {
	Enabled bool `json:"enabled"`
}

type offlineResponse struct {
	Offline bool `json:"offline"`
}

// SetOffline toggles offline mode. While enabled, refresh cycles
// terminate early without touching the network.
func SetOffline(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req offlineRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}

		d.Checker.SetOfflineMode(req.Enabled)
		d.Logger.Info("offline mode changed",
			logger.String("remote_ip", r.RemoteAddr),
			logger.Bool("enabled", req.Enabled))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(offlineResponse{Offline: d.Checker.OfflineMode()})
	}
}
