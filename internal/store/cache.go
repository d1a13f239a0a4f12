package store

import (
	"errors"
	"os"
	"sync"
	"sync/atomic"

	"github.com/compassd/compass/internal/directory"
	"github.com/compassd/compass/internal/logger"
)

// Cache holds the current best-known directory for the lifetime of the
// process. It is loaded from disk at most once per lifetime unless
// explicitly invalidated, and replaced wholesale after a successful
// refresh. Reads never observe a partially constructed directory; the
// swap is an atomic pointer store.
type Cache struct {
	store  *Store
	logger logger.Logger

	mu  sync.Mutex // serializes the disk resolution
	cur atomic.Pointer[directory.Directory]
}

func NewCache(store *Store, log logger.Logger) *Cache {
	return &Cache{store: store, logger: log}
}

// Current returns the best-known directory, resolving it from disk on
// first use: the newer of {builtin, cached}, ties favoring the cached
// one (it reflects the most recent confirmed download). Returns nil when
// neither source loads; a later call retries the resolution.
func (c *Cache) Current() *directory.Directory {
	if d := c.cur.Load(); d != nil {
		return d
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if d := c.cur.Load(); d != nil {
		return d
	}

	d := c.resolve()
	if d != nil {
		c.cur.Store(d)
	}
	return d
}

func (c *Cache) resolve() *directory.Directory {
	builtin, berr := c.store.LoadBuiltin()
	if berr != nil {
		// The builtin is expected to always load in a correctly
		// packaged build; there is no fallback beneath it.
		c.logger.Error("unable to load builtin directory", logger.Error(berr))
	}

	cached, cerr := c.store.LoadCached()
	if cerr != nil {
		switch {
		case berr != nil:
			// The cache error is the more informative one to report.
			c.logger.Error("unable to load cached directory", logger.Error(cerr))
		case errors.Is(cerr, os.ErrNotExist):
			c.logger.Debug("no cached directory, using builtin")
		default:
			c.logger.Warn("cached directory unreadable, using builtin", logger.Error(cerr))
		}
		return builtin
	}

	if builtin != nil && builtin.NewerThan(cached) {
		return builtin
	}
	return cached
}

// Replace swaps in a freshly accepted directory.
func (c *Cache) Replace(d *directory.Directory) {
	c.cur.Store(d)
}

// Invalidate clears the in-memory directory; the next Current call
// resolves from disk again.
func (c *Cache) Invalidate() {
	c.cur.Store(nil)
}

// Reset deletes the cached file and invalidates the in-memory
// directory, e.g. on identity or account reset.
func (c *Cache) Reset() error {
	if err := c.store.DeleteCached(); err != nil {
		return err
	}
	c.Invalidate()
	return nil
}
