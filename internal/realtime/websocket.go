package realtime

import (
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// WebSocketConn wraps websocket.Conn so the hub does not depend on the transport.
type WebSocketConn struct {
	Conn *websocket.Conn
}

func NewWebSocketConn(c *websocket.Conn) *WebSocketConn {
	return &WebSocketConn{Conn: c}
}

// frameWriter is the write half of a websocket connection.
type frameWriter interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Serve attaches an authenticated connection to the hub and pumps events to it
// until either side goes away. Inbound frames only keep the session alive.
// It returns only after the writer has stopped touching the connection.
func (h *Hub) Serve(client *Client) {
	if !h.RegisterClient(client) {
		_ = client.Conn.Conn.Close()
		return
	}

	c := client.Conn.Conn
	log := h.log.With(zap.String("user_id", client.UserID.String()), zap.String("client_id", client.ID))
	log.Info("websocket connected")

	quit := make(chan struct{})
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		writePump(c, client.Send, quit, log)
	}()
	defer func() {
		close(quit)
		h.UnregisterClient(client)
		<-writerDone
	}()

	_ = c.SetReadDeadline(time.Now().Add(pongWait))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			log.Info("websocket disconnected", zap.Error(err))
			return
		}
		_ = c.SetReadDeadline(time.Now().Add(pongWait))
	}
}

// writePump forwards queued events and pings until send is closed, a write
// fails, or quit is closed.
func writePump(w frameWriter, send <-chan []byte, quit <-chan struct{}, log *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-quit:
			return
		case msg, ok := <-send:
			_ = w.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = w.WriteMessage(websocket.CloseMessage, nil)
				_ = w.Close()
				return
			}
			if err := w.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Debug("websocket write failed", zap.Error(err))
				_ = w.Close()
				return
			}
		case <-ticker.C:
			_ = w.SetWriteDeadline(time.Now().Add(writeWait))
			if err := w.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = w.Close()
				return
			}
		}
	}
}
