package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"github.com/smart-grid-monitoring/sensor-bridge/internal/models"
	"github.com/smart-grid-monitoring/sensor-bridge/internal/ws"
)

// aggregator answers historical analytics queries. *analytics.Engine
// satisfies it.
type aggregator interface {
	Aggregate(ctx context.Context, interval string, days int) []models.AggregatedRow
}

// Handlers bundles the collaborators the HTTP surface needs.
type Handlers struct {
	engine   aggregator
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewHandlers wires the handler set.
func NewHandlers(engine aggregator, hub *ws.Hub) *Handlers {
	return &Handlers{
		engine: engine,
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

var validIntervals = map[string]bool{
	"daily":   true,
	"weekly":  true,
	"monthly": true,
	"yearly":  true,
}

type analyticsResponse struct {
	Interval string                 `json:"interval"`
	Data     []models.AggregatedRow `json:"data"`
}

func (h *Handlers) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{
		"message": "Smart Grid Backend Running - MQTT -> InfluxDB -> WebSocket",
	})
}

func (h *Handlers) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// analytics validates the interval and days parameters before the query
// engine ever sees them. The engine itself never returns an error, so a
// valid request always answers 200.
func (h *Handlers) analytics(w http.ResponseWriter, r *http.Request) {
	interval := r.URL.Query().Get("interval")
	if interval == "" {
		interval = "daily"
	}
	if !validIntervals[interval] {
		http.Error(w, "interval must be one of daily, weekly, monthly, yearly", http.StatusBadRequest)
		return
	}

	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 365 {
			http.Error(w, "days must be an integer between 1 and 365", http.StatusBadRequest)
			return
		}
		days = n
	}

	rows := h.engine.Aggregate(r.Context(), interval, days)
	writeJSON(w, analyticsResponse{Interval: interval, Data: rows})
}

// subscribe upgrades the connection and registers it with the hub. Inbound
// frames are not interpreted; the read loop only detects closure.
func (h *Handlers) subscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade failed: %v", err)
		return
	}

	sub := ws.NewSubscriber(conn)
	h.hub.Register(sub)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.hub.Unregister(sub)
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: encoding response: %v", err)
	}
}
