package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/compassd/compass/internal/directory"
	"github.com/compassd/compass/internal/httpserver/deps"
)

type endpointResponse struct {
	Endpoint string `json:"endpoint"`
}

// GetEndpoint resolves the endpoint a client should connect to. An
// "override" query parameter wins over the configured override, which
// wins over a random directory pick.
func GetEndpoint(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		override := r.URL.Query().Get("override")
		if override == "" {
			override = d.EndpointOverride
		}

		ep, ok := directory.ResolveEndpoint(override, d.Cache.Current())
		if !ok {
			http.Error(w, "nothing to contact", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(endpointResponse{Endpoint: ep.String()})
	}
}
