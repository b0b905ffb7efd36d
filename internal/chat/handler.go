package chat

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are checked by middleware.OriginGuard in front of this handler.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Handler struct {
	hub            *Hub
	sendBuffer     int
	maxMessageSize int64
}

func NewHandler(hub *Hub, sendBuffer int, maxMessageSize int64) *Handler {
	if maxMessageSize <= 0 {
		maxMessageSize = 4096
	}
	return &Handler{
		hub:            hub,
		sendBuffer:     sendBuffer,
		maxMessageSize: maxMessageSize,
	}
}

// ServeWs upgrades the request and hands the new connection to the hub.
// The connection stays unjoined until it sends join_room.
func (h *Handler) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	client := NewClient(h.hub, conn, r.RemoteAddr, h.sendBuffer)
	select {
	case h.hub.Register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump(h.maxMessageSize)
}
