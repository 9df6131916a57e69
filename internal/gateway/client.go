package gateway

import (
	"encoding/json"
	"time"

	"overcooked-live/internal/auth"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// wsConn is the part of *websocket.Conn a client uses.
type wsConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

var _ wsConn = (*websocket.Conn)(nil)

// Client is one websocket session. rooms and closed are guarded by the hub lock.
type Client struct {
	hub    *Hub
	conn   wsConn
	claims *auth.Claims
	send   chan []byte

	rooms  map[string]struct{}
	closed bool
}

func (c *Client) sessionID() string {
	if c.claims == nil {
		return ""
	}
	return c.claims.ID
}

func (c *Client) Claims() *auth.Claims {
	return c.claims
}

func (c *Client) reply(resp Response) {
	msg, err := json.Marshal(resp)
	if err != nil {
		c.hub.logger.Error("failed to marshal response", zap.String("id", resp.ID), zap.Error(err))
		msg, _ = json.Marshal(errorResponse(resp.ID, err))
	}
	c.hub.sendTo(c, msg)
}

func (c *Client) readPump(dispatcher *Dispatcher) {
	defer func() {
		c.hub.remove(c)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("connection closed", zap.String("session", c.sessionID()), zap.Error(err))
			}
			return
		}

		var req Request
		if err := json.Unmarshal(message, &req); err != nil {
			c.reply(errorResponse("", ErrBadRequest))
			continue
		}
		c.reply(dispatcher.Dispatch(c, req))
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.remove(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.hub.remove(c)
				return
			}
		}
	}
}
