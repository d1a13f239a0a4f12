package directory

import (
	"math/rand"
	"time"
)

// Directory is an ordered, timestamped collection of endpoints.
// Insertion order is the preference order; random choice happens only
// when PickRandom is called. The timestamp is set once, at construction,
// from the moment the list was accepted as authoritative.
type Directory struct {
	endpoints []Endpoint
	timestamp time.Time
}

// New builds a directory from the given endpoints. The timestamp is
// truncated to second precision to match the serialized representation.
func New(ts time.Time, endpoints []Endpoint) *Directory {
	eps := make([]Endpoint, len(endpoints))
	copy(eps, endpoints)
	return &Directory{
		endpoints: eps,
		timestamp: ts.Truncate(time.Second),
	}
}

// Endpoints returns the endpoints in preference order.
func (d *Directory) Endpoints() []Endpoint {
	eps := make([]Endpoint, len(d.endpoints))
	copy(eps, d.endpoints)
	return eps
}

// Len returns the number of endpoints. A directory with zero endpoints
// is valid but useless; callers must check before use.
func (d *Directory) Len() int { return len(d.endpoints) }

// Timestamp returns the moment the list was accepted as authoritative.
func (d *Directory) Timestamp() time.Time { return d.timestamp }

// NewerThan reports whether d is strictly newer than other.
// Equal timestamps mean neither is newer.
func (d *Directory) NewerThan(other *Directory) bool {
	return d.timestamp.After(other.timestamp)
}

// PickRandom returns a uniformly chosen endpoint, or false if the
// directory is empty.
func (d *Directory) PickRandom() (Endpoint, bool) {
	if len(d.endpoints) == 0 {
		return Endpoint{}, false
	}
	return d.endpoints[rand.Intn(len(d.endpoints))], true
}
