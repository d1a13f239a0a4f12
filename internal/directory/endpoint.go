package directory

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// DefaultPort is used when an endpoint address carries no explicit port.
const DefaultPort = 5222

// Endpoint is one candidate server address a client may connect to.
// It is immutable once constructed; use ParseEndpoint to build one.
type Endpoint struct {
	host string
	port int
}

// ParseEndpoint validates a connection-address string of the form
// "host" or "host:port" and fails fast on malformed input.
func ParseEndpoint(s string) (Endpoint, error) {
	if s == "" {
		return Endpoint{}, fmt.Errorf("endpoint: empty address")
	}
	if strings.ContainsAny(s, " \t/") {
		return Endpoint{}, fmt.Errorf("endpoint: invalid address %q", s)
	}

	host := s
	port := DefaultPort
	if h, p, err := net.SplitHostPort(s); err == nil {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 || n > 65535 {
			return Endpoint{}, fmt.Errorf("endpoint: invalid port in %q", s)
		}
		host = h
		port = n
	} else if strings.Contains(s, ":") {
		// Contains a colon but does not split cleanly (e.g. bare IPv6,
		// multiple colons without brackets).
		return Endpoint{}, fmt.Errorf("endpoint: invalid address %q", s)
	}

	if host == "" {
		return Endpoint{}, fmt.Errorf("endpoint: missing host in %q", s)
	}
	return Endpoint{host: host, port: port}, nil
}

func (e Endpoint) Host() string { return e.host }
func (e Endpoint) Port() int    { return e.port }

// String returns the canonical "host:port" form.
func (e Endpoint) String() string {
	return net.JoinHostPort(e.host, strconv.Itoa(e.port))
}
