package ws

import (
	"log"

	"github.com/smart-grid-monitoring/sensor-bridge/internal/models"
)

// Dispatcher is the only bridge from the ingest goroutines into the hub's
// delivery loop. Ingest code must never touch hub state directly.
type Dispatcher struct {
	hub *Hub
}

// NewDispatcher returns a dispatcher feeding the given hub.
func NewDispatcher(hub *Hub) *Dispatcher {
	return &Dispatcher{hub: hub}
}

// Submit queues an envelope for broadcast without blocking the caller and
// without acknowledgment. Envelopes submitted from one goroutine are
// broadcast in submission order. When the delivery loop is stopped or the
// queue is full the envelope is dropped and logged; Submit never panics.
func (d *Dispatcher) Submit(envelope models.BroadcastEnvelope) {
	select {
	case <-d.hub.done:
		log.Printf("ws: delivery loop stopped, dropping broadcast for %s", envelope.Device)
	case d.hub.tasks <- envelope:
	default:
		log.Printf("ws: broadcast queue full, dropping message for %s", envelope.Device)
	}
}
