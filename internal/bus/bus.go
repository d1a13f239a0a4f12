// Package bus provides in-process event subscription for the message
// transport: the transport publishes Connected and ListReceived, the
// updater publishes ListRequest.
package bus

import (
	"sync"
)

type EventType uint32

const (
	Connected EventType = 1 << iota
	ListRequest
	ListReceived

	AllEvents = ^EventType(0)
)

func (t EventType) String() string {
	switch t {
	case Connected:
		return "Connected"
	case ListRequest:
		return "ListRequest"
	case ListReceived:
		return "ListReceived"
	default:
		return "Unknown"
	}
}

// Event is one delivery on the bus.
type Event struct {
	Type EventType
	Data interface{}
}

// ListRequestData asks whoever holds the current server list to publish
// it. Target is optional; empty means broadcast.
type ListRequestData struct {
	Target string `json:"target,omitempty"`
}

// ListReceivedData carries the server list returned by the transport.
type ListReceivedData struct {
	Servers []string `json:"servers"`
}

// BufferSize is the per-subscription channel depth. Publishing never
// blocks; events beyond the buffer are dropped.
const BufferSize = 16

type Bus struct {
	mutex  sync.Mutex
	subs   map[int]*Subscription
	nextID int
}

type Subscription struct {
	mask   EventType
	id     int
	events chan Event
}

func New() *Bus {
	return &Bus{
		subs: make(map[int]*Subscription),
	}
}

// Publish delivers the event to every subscription whose mask matches.
func (b *Bus) Publish(t EventType, data interface{}) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	e := Event{Type: t, Data: data}
	for _, s := range b.subs {
		if s.mask&t != 0 {
			select {
			case s.events <- e:
			default:
				// subscriber too slow, drop
			}
		}
	}
}

// Subscribe returns a subscription receiving events matching mask.
func (b *Bus) Subscribe(mask EventType) *Subscription {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	s := &Subscription{
		mask:   mask,
		id:     b.nextID,
		events: make(chan Event, BufferSize),
	}
	b.subs[b.nextID] = s
	b.nextID++
	return s
}

// Unsubscribe releases the subscription and closes its channel.
// Safe to call more than once.
func (b *Bus) Unsubscribe(s *Subscription) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if _, ok := b.subs[s.id]; !ok {
		return
	}
	delete(b.subs, s.id)
	close(s.events)
}

// Subscribers returns the number of live subscriptions.
func (b *Bus) Subscribers() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.subs)
}

// C is the receive side of the subscription. It is closed on
// unsubscribe.
func (s *Subscription) C() <-chan Event {
	return s.events
}
