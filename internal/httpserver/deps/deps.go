package deps

import (
	"time"

	"github.com/compassd/compass/internal/logger"
	"github.com/compassd/compass/internal/netcheck"
	"github.com/compassd/compass/internal/store"
)

type Deps struct {
	Logger           logger.Logger
	StartTime        time.Time
	Version          string
	Commit           string
	BuildDate        string
	GoVersion        string
	TimeNow          func() time.Time  // for testing, defaults to time.Now
	Cache            *store.Cache      // current best-known directory
	Checker          *netcheck.Checker // offline-mode flag lives here
	EndpointOverride string            // user-configured endpoint, wins over the directory
	RefreshTrigger   chan struct{}     // channel to trigger a manual directory refresh
}
