// Package updater runs one directory refresh cycle at a time: it picks
// a server to contact, asks the transport to connect, requests the
// current server list over the bus, persists the answer and reports the
// outcome through a listener.
package updater

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/compassd/compass/internal/bus"
	"github.com/compassd/compass/internal/directory"
	"github.com/compassd/compass/internal/logger"
	"github.com/compassd/compass/internal/netcheck"
	"github.com/compassd/compass/internal/store"
)

var (
	// ErrUpdateInProgress is returned by Start while a previous cycle
	// is still in flight.
	ErrUpdateInProgress = errors.New("updater: update already in progress")

	// ErrEmptyList means the transport delivered a list with no usable
	// endpoints. A substantive failure, not "no data".
	ErrEmptyList = errors.New("updater: received empty server list")

	// ErrTimeout means no list arrived within the session timeout.
	ErrTimeout = errors.New("updater: timed out waiting for server list")
)

// Listener receives the outcome of one refresh cycle. Exactly one
// callback fires per successful Start.
type Listener interface {
	// NoData: neither an override nor any known directory endpoint;
	// nothing to contact.
	NoData()

	// NetworkNotAvailable: no basic connectivity.
	NetworkNotAvailable()

	// OfflineModeEnabled: the user asked to stay offline.
	OfflineModeEnabled()

	// Error: the refresh failed (empty list, write failure, timeout).
	Error(err error)

	// Updated: the new directory was persisted and is now current.
	Updated(d *directory.Directory)
}

// Transport establishes the connection the list request travels over.
// Connect is fire-and-forget; the transport reports progress by
// publishing Connected and ListReceived on the bus.
type Transport interface {
	Connect(ctx context.Context)
}

type Updater struct {
	bus       *bus.Bus
	transport Transport
	store     *store.Store
	cache     *store.Cache
	oracle    netcheck.Oracle
	logger    logger.Logger
	override  string
	timeout   time.Duration

	mu      sync.Mutex
	running bool
	sub     *bus.Subscription
}

type Options struct {
	Bus       *bus.Bus
	Transport Transport
	Store     *store.Store
	Cache     *store.Cache
	Oracle    netcheck.Oracle
	Logger    logger.Logger
	Override  string        // optional user-configured endpoint
	Timeout   time.Duration // max wait for the list; 0 means DefaultTimeout
}

const DefaultTimeout = 30 * time.Second

func New(opts Options) *Updater {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Updater{
		bus:       opts.Bus,
		transport: opts.Transport,
		store:     opts.Store,
		cache:     opts.Cache,
		oracle:    opts.Oracle,
		logger:    opts.Logger,
		override:  opts.Override,
		timeout:   timeout,
	}
}

// Start runs one refresh cycle. It never blocks on network or disk I/O:
// precondition failures invoke the listener before Start returns, and
// everything after the transport hand-off happens on a background
// goroutine. A second Start while a cycle is in flight returns
// ErrUpdateInProgress without touching the live session.
func (u *Updater) Start(ctx context.Context, l Listener) error {
	u.mu.Lock()
	if u.running {
		u.mu.Unlock()
		return ErrUpdateInProgress
	}
	u.running = true
	u.mu.Unlock()

	// We have a directory, builtin or cached. Pick a random server
	// from it and contact it for the latest list.
	if _, ok := directory.ResolveEndpoint(u.override, u.cache.Current()); !ok {
		u.logger.Info("no directory to pick a server from, aborting refresh")
		u.finish()
		l.NoData()
		return nil
	}

	if !u.oracle.NetworkAvailable() {
		u.finish()
		l.NetworkNotAvailable()
		return nil
	}

	// Checked after connectivity so the more specific reason is only
	// reported once plain unreachability is ruled out.
	if u.oracle.OfflineMode() {
		u.finish()
		l.OfflineModeEnabled()
		return nil
	}

	// Subscribe before asking the transport to connect, or a Connected
	// delivery racing this call could be lost.
	sub := u.bus.Subscribe(bus.Connected | bus.ListReceived)
	u.mu.Lock()
	u.sub = sub
	u.mu.Unlock()

	u.transport.Connect(ctx)

	go u.run(ctx, sub, l)
	return nil
}

// Cancel unsubscribes the in-flight session from the bus, preventing
// any future notification handling. It does not abort a connection
// attempt already handed to the transport. Idempotent; safe to call
// with no session active.
func (u *Updater) Cancel() {
	u.unsubscribe()
}

func (u *Updater) run(ctx context.Context, sub *bus.Subscription, l Listener) {
	timer := time.NewTimer(u.timeout)
	defer timer.Stop()

	for {
		select {
		case ev, ok := <-sub.C():
			if !ok {
				// Cancelled.
				u.finish()
				return
			}
			switch ev.Type {
			case bus.Connected:
				// May fire again if the transport reconnects before a
				// list arrives; re-requesting is safe, the request
				// carries no state.
				u.bus.Publish(bus.ListRequest, bus.ListRequestData{})
			case bus.ListReceived:
				// One-shot consumer: drop the subscription before
				// touching disk so a second delivery cannot race.
				u.unsubscribe()
				data, _ := ev.Data.(bus.ListReceivedData)
				u.apply(data.Servers, l)
				u.finish()
				return
			}

		case <-timer.C:
			u.unsubscribe()
			u.finish()
			l.Error(ErrTimeout)
			return

		case <-ctx.Done():
			// Same cleanup as Cancel; no listener callback, the caller
			// tore the session down itself.
			u.unsubscribe()
			u.finish()
			return
		}
	}
}

// apply persists a received server list and swaps the in-memory
// directory. On any failure the cache keeps its previous directory: the
// file on disk and the directory in memory must never disagree.
func (u *Updater) apply(servers []string, l Listener) {
	endpoints := make([]directory.Endpoint, 0, len(servers))
	for _, s := range servers {
		ep, err := directory.ParseEndpoint(s)
		if err != nil {
			// A partial list is still useful; skip the bad entry.
			u.logger.Warn("skipping malformed server entry",
				logger.String("server", s),
				logger.Error(err))
			continue
		}
		endpoints = append(endpoints, ep)
	}

	if len(endpoints) == 0 {
		l.Error(ErrEmptyList)
		return
	}

	d := directory.New(time.Now(), endpoints)
	if err := u.store.SaveCached(d); err != nil {
		// Discard the download rather than trust it only in memory.
		l.Error(err)
		return
	}

	u.cache.Replace(d)
	u.logger.Info("directory updated",
		logger.Int("servers", d.Len()),
		logger.Time("timestamp", d.Timestamp()))
	l.Updated(d)
}

func (u *Updater) unsubscribe() {
	u.mu.Lock()
	sub := u.sub
	u.sub = nil
	u.mu.Unlock()
	if sub != nil {
		u.bus.Unsubscribe(sub)
	}
}

func (u *Updater) finish() {
	u.mu.Lock()
	u.running = false
	u.mu.Unlock()
}
