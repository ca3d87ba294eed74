package ws

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/smart-grid-monitoring/sensor-bridge/internal/config"
	"github.com/smart-grid-monitoring/sensor-bridge/internal/models"
)

// subscriberConn is the slice of *websocket.Conn the hub relies on; tests
// substitute a fake.
type subscriberConn interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Subscriber is one live WebSocket connection tracked by the hub. It has no
// identity beyond the handle itself.
type Subscriber struct {
	conn subscriberConn
}

// NewSubscriber wraps an upgraded connection.
func NewSubscriber(conn *websocket.Conn) *Subscriber {
	return &Subscriber{conn: conn}
}

// Hub owns the ordered subscriber set and delivers broadcast envelopes to
// it. All state lives on the Run goroutine; other goroutines talk to the
// hub over channels only, so the set is never mutated concurrently.
type Hub struct {
	register    chan *Subscriber
	unregister  chan *Subscriber
	tasks       chan models.BroadcastEnvelope
	subscribers []*Subscriber
	sendTimeout time.Duration
	done        chan struct{}
}

// NewHub creates a hub. Run must be started before subscribers connect.
func NewHub(cfg config.WebSocketConfig) *Hub {
	return &Hub{
		register:    make(chan *Subscriber),
		unregister:  make(chan *Subscriber),
		tasks:       make(chan models.BroadcastEnvelope, cfg.QueueSize),
		sendTimeout: cfg.SendTimeout,
		done:        make(chan struct{}),
	}
}

// Run drives the delivery loop until ctx is canceled. Queued broadcasts run
// one at a time; a broadcast finishes before the next task is taken.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case sub := <-h.register:
			h.subscribers = append(h.subscribers, sub)
			log.Printf("ws: subscriber connected (%d active)", len(h.subscribers))
		case sub := <-h.unregister:
			h.remove(sub)
		case envelope := <-h.tasks:
			h.broadcast(envelope)
		}
	}
}

// Register adds a connection to the live set in registration order.
func (h *Hub) Register(sub *Subscriber) {
	select {
	case h.register <- sub:
	case <-h.done:
		sub.conn.Close()
	}
}

// Unregister removes a connection from the live set. Removing a connection
// that is already gone is a no-op.
func (h *Hub) Unregister(sub *Subscriber) {
	select {
	case h.unregister <- sub:
	case <-h.done:
	}
}

// broadcast sends the envelope to every subscriber registered at the moment
// it starts. It iterates a snapshot so an eviction mid-sweep never skips or
// double-sends a remaining subscriber, and it never returns an error: a
// failed send evicts that one subscriber and the sweep continues.
func (h *Hub) broadcast(envelope models.BroadcastEnvelope) {
	payload, err := json.Marshal(envelope)
	if err != nil {
		log.Printf("ws: cannot marshal envelope for %s: %v", envelope.Device, err)
		return
	}

	snapshot := make([]*Subscriber, len(h.subscribers))
	copy(snapshot, h.subscribers)

	for _, sub := range snapshot {
		// A stalled subscriber must not hold up delivery to the rest.
		sub.conn.SetWriteDeadline(time.Now().Add(h.sendTimeout))
		if err := sub.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("ws: send failed, dropping subscriber: %v", err)
			h.remove(sub)
		}
	}
}

func (h *Hub) remove(sub *Subscriber) {
	for i, s := range h.subscribers {
		if s == sub {
			h.subscribers = append(h.subscribers[:i], h.subscribers[i+1:]...)
			sub.conn.Close()
			log.Printf("ws: subscriber disconnected (%d active)", len(h.subscribers))
			return
		}
	}
}

func (h *Hub) closeAll() {
	for _, sub := range h.subscribers {
		sub.conn.Close()
	}
	h.subscribers = nil
}
