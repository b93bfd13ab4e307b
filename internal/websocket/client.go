package websocket

import (
	"context"
	"encoding/json"
	"time"

	"voice-shopping-be/internal/dto"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Base64 audio chunks from MediaRecorder stay well below this
	maxMessageSize = 1 << 20
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// ID is the voice session id
	ID string

	Session *Session

	// Buffered channel of outbound messages.
	Send chan []byte
}

// enqueue serializes msg onto Send, dropping it when the buffer is full
func (c *Client) enqueue(msg dto.VoiceServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.Send <- data:
	default:
		c.Hub.logger.Warn("Client", "Send buffer full, dropping reply", map[string]interface{}{"session_id": c.ID, "type": msg.Type})
	}
}

// readPump handles client messages one at a time until the connection drops.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.Session.Close()
		c.Hub.leave(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.Hub.logger.Warn("Client", "Voice socket closed unexpectedly", map[string]interface{}{"session_id": c.ID, "error": err.Error()})
			}
			return
		}

		var msg dto.VoiceClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.enqueue(errorMessage("invalid JSON message"))
			continue
		}

		for _, reply := range c.Session.Handle(ctx, msg) {
			c.enqueue(reply)
		}
		// Transcription and answering can outlast the pong window
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One JSON document per frame
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
