// Package prefs loads the optional user preferences file.
package prefs

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Prefs are user-level settings layered on top of the environment
// configuration.
type Prefs struct {
	// EndpointOverride pins the endpoint to contact; it always wins
	// over the directory.
	EndpointOverride string `yaml:"endpoint_override"`

	// OfflineMode starts the daemon with offline mode enabled.
	OfflineMode bool `yaml:"offline_mode"`
}

// Load reads and parses the preferences file. A missing file is not an
// error; defaults are returned.
func Load(path string) (*Prefs, error) {
	p := &Prefs{}
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return nil, fmt.Errorf("prefs: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("prefs: parse %s: %w", path, err)
	}
	return p, nil
}
