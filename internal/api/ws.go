package api

import (
	"net/http"

	"github.com/gorilla/websocket"

	"dutch-auction-lab/internal/domain"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

// eventMessage is the wire form of one engine event on the feed.
type eventMessage struct {
	Type string       `json:"type"`
	Data domain.Event `json:"data"`
}

// handleWebsocket streams engine events to the client until it disconnects
// or the hub is drained.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sub := s.hub.Subscribe(32)
	defer s.hub.Unsubscribe(sub)

	// Drain client frames so close messages are processed. A read error means
	// the client is gone, so the subscription is removed here too, which
	// closes the channel and unblocks the write loop even when no further
	// events arrive.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.hub.Unsubscribe(sub)
				return
			}
		}
	}()

	for event := range sub.C() {
		msg := eventMessage{Type: event.EventType(), Data: event}
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
