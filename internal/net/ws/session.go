package ws

import (
	"log"

	"github.com/gorilla/websocket"

	server "duskhollow/server"
)

// Handler runs the read side of one websocket session and feeds every frame
// into the hub's dispatch. Writes go through the hub's connection registry.
type Handler struct {
	hub    *server.Hub
	logger *log.Logger
}

func NewHandler(hub *server.Hub, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{hub: hub, logger: logger}
}

// Serve blocks until the connection errors or is closed. Registration and
// teardown both go through the hub so broadcasts never see a half-open link.
func (h *Handler) Serve(conn *websocket.Conn) {
	if h == nil || h.hub == nil || conn == nil {
		return
	}
	c := h.hub.OnConnect(conn)
	defer h.hub.OnDisconnect(c.ID)

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Printf("connection %s read error: %v", c.ID, err)
			}
			return
		}
		h.hub.OnMessage(c, payload)
	}
}
