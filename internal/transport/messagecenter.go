// Package transport bridges the in-process bus to the message-center
// broker. The updater never talks to the broker directly: it sees
// Connected and ListReceived on the bus and publishes ListRequest there;
// this adapter moves those across redis pub/sub.
package transport

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/compassd/compass/internal/bus"
	"github.com/compassd/compass/internal/logger"
)

const pingTimeout = 5 * time.Second

type MessageCenter struct {
	client           *goredis.Client
	bus              *bus.Bus
	logger           logger.Logger
	requestChannel   string
	directoryChannel string

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	pubsub  *goredis.PubSub
	reqSub  *bus.Subscription
}

func New(
	client *goredis.Client,
	b *bus.Bus,
	log logger.Logger,
	requestChannel, directoryChannel string,
) *MessageCenter {
	return &MessageCenter{
		client:           client,
		bus:              b,
		logger:           log,
		requestChannel:   requestChannel,
		directoryChannel: directoryChannel,
	}
}

// Connect starts the broker bridge if needed and confirms the link.
// Fire-and-forget: the caller is told about the outcome through a
// Connected event on the bus, never through this call. Calling it while
// already running just re-confirms the link, so a Connected event is
// re-emitted; consumers must tolerate duplicates.
func (m *MessageCenter) Connect(ctx context.Context) {
	m.mu.Lock()
	if !m.running {
		m.running = true
		runCtx, cancel := context.WithCancel(context.Background())
		m.cancel = cancel
		m.pubsub = m.client.Subscribe(runCtx, m.directoryChannel)
		m.reqSub = m.bus.Subscribe(bus.ListRequest)
		go m.receiveLoop()
		go m.forwardLoop(runCtx, m.reqSub)
	}
	m.mu.Unlock()

	go func() {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := m.client.Ping(pingCtx).Err(); err != nil {
			m.logger.Warn("message center connection failed", logger.Error(err))
			return
		}
		m.bus.Publish(bus.Connected, nil)
	}()
}

// receiveLoop turns payloads on the directory channel into ListReceived
// events. Payloads are JSON arrays of server address strings.
func (m *MessageCenter) receiveLoop() {
	for msg := range m.pubsub.Channel() {
		var servers []string
		if err := json.Unmarshal([]byte(msg.Payload), &servers); err != nil {
			m.logger.Warn("discarding malformed directory payload",
				logger.Error(err))
			continue
		}
		m.bus.Publish(bus.ListReceived, bus.ListReceivedData{Servers: servers})
	}
}

// forwardLoop publishes ListRequest events to the broker's request
// channel.
func (m *MessageCenter) forwardLoop(ctx context.Context, sub *bus.Subscription) {
	for {
		select {
		case ev, ok := <-sub.C():
			if !ok {
				return
			}
			req, _ := ev.Data.(bus.ListRequestData)
			payload, err := json.Marshal(req)
			if err != nil {
				continue
			}
			if err := m.client.Publish(ctx, m.requestChannel, payload).Err(); err != nil {
				m.logger.Warn("failed to publish directory request",
					logger.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}

// Close stops the bridge. The redis client itself is owned by the
// caller.
func (m *MessageCenter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return nil
	}
	m.running = false
	m.cancel()
	m.bus.Unsubscribe(m.reqSub)
	return m.pubsub.Close()
}
