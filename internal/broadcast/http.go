package broadcast

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// SetupRoutes registers the subscriber endpoint.
func (h *Hub) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/events", h.handleEvents)
}

func (h *Hub) handleEvents(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		// The broadcast port is only exposed on the trusted local
		// network, same as the pad protocol itself.
		CheckOrigin: func(*http.Request) bool { return true },
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("broadcast upgrade error: %v", err)
		return
	}

	log.Printf("broadcast subscriber connected: %s", r.RemoteAddr)
	c := h.addClient(conn)

	go func() {
		defer func() {
			h.removeClient(c)
			log.Printf("broadcast subscriber disconnected: %s", r.RemoteAddr)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// ListenAndServe serves the subscriber endpoint on host:port.
func ListenAndServe(host string, port int, mux *http.ServeMux) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	log.Printf("broadcast server listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}
