package websocket

import (
	"context"

	"github.com/gofiber/websocket/v2"
)

// ServeWs runs one voice session on c until the peer goes away.
func ServeWs(ctx context.Context, hub *Hub, c *websocket.Conn, session *Session) {
	client := &Client{Hub: hub, Conn: c, ID: session.ID, Session: session, Send: make(chan []byte, 256)}
	if !hub.join(client) {
		session.Close()
		c.Close()
		return
	}

	go client.writePump()
	client.readPump(ctx) // Run readPump in current goroutine (handler)
}
