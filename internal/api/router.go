package api

import (
	"github.com/gorilla/mux"
)

// NewRouter declares the HTTP surface of the bridge.
func NewRouter(h *Handlers) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", h.root).Methods("GET")
	r.HandleFunc("/health", h.health).Methods("GET")
	r.HandleFunc("/analytics", h.analytics).Methods("GET")
	r.HandleFunc("/ws", h.subscribe).Methods("GET")

	return r
}
