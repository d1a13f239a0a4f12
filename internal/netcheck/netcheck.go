// Package netcheck answers the two precondition questions the updater
// asks before any network activity: is the network reachable at all,
// and has the user asked to stay offline.
package netcheck

import (
	"net"
	"sync/atomic"
)

// Oracle is the read-only view consumed by the updater.
type Oracle interface {
	NetworkAvailable() bool
	OfflineMode() bool
}

// Checker is the default oracle: interface enumeration for network
// availability plus a runtime-togglable offline flag.
type Checker struct {
	offline atomic.Bool
}

func New(offline bool) *Checker {
	c := &Checker{}
	c.offline.Store(offline)
	return c
}

// NetworkAvailable reports whether at least one non-loopback interface
// is up and carries an address.
func (c *Checker) NetworkAvailable() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		return false
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil || len(addrs) == 0 {
			continue
		}
		return true
	}
	return false
}

func (c *Checker) OfflineMode() bool {
	return c.offline.Load()
}

func (c *Checker) SetOfflineMode(v bool) {
	c.offline.Store(v)
}
