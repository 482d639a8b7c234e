package chat

import (
	"sync"
	"time"

	"github.com/anirbanjana883/ZYRA-backend/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 16
)

// Client is one live connection handle. A single writer goroutine consumes
// Send; nothing else may call WriteMessage on the underlying conn.
type Client struct {
	ConnID string
	UserID string
	WS     *websocket.Conn

	Send chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(connID, userID string, ws *websocket.Conn, sendQueueSize int) *Client {
	if sendQueueSize <= 0 {
		sendQueueSize = 256
	}
	return &Client{
		ConnID: connID,
		UserID: userID,
		WS:     ws,
		Send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
	}
}

// Push enqueues a payload without blocking. False means the handle is mid
// teardown or the client is too slow to drain its queue; callers treat both
// the same as "absent".
func (c *Client) Push(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Send <- payload:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

// Close tears the handle down. Safe to call from any goroutine, repeatedly.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.WS != nil {
			_ = c.WS.Close()
		}
	})
}

// Closed reports whether teardown has started.
func (c *Client) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// WritePump drains Send onto the wire and keeps the connection alive with
// pings. Exits on teardown or the first write error.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case payload, ok := <-c.Send:
			if !ok {
				return
			}
			_ = c.WS.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WS.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Debug("client write failed: " + err.Error())
				return
			}
		case <-ticker.C:
			_ = c.WS.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WS.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
