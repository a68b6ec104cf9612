// internal/events/client.go
package events

import (
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client is one websocket connection belonging to an authenticated user.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan Event
	userID  int64
	isAdmin bool
	logger  *zap.Logger
}

func NewClient(hub *Hub, conn *websocket.Conn, userID int64, isAdmin bool, logger *zap.Logger) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan Event, 32),
		userID:  userID,
		isAdmin: isAdmin,
		logger:  logger,
	}
}

// Run starts the read and write pumps and blocks until the connection
// closes. If the hub has already shut down the connection is dropped.
func (c *Client) Run() {
	if !c.hub.Register(c) {
		c.conn.Close()
		return
	}
	go c.writePump()
	c.readPump()
}

// readPump drains inbound frames; this feed is push-only, so client
// messages are discarded, but the pump is what notices disconnects.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read error", zap.Int64("user_id", c.userID), zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
