package chat

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/anirbanjana883/ZYRA-backend/logger"
	"github.com/anirbanjana883/ZYRA-backend/tools/ids"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Gateway owns the lifecycle of every websocket connection: upgrade,
// identity check, attach into the registry, offline-backlog flush, and the
// symmetric teardown. It is the only writer of the registry.
type Gateway struct {
	reg      *Registry
	router   *Router
	users    UserStore
	notifier *Notifier
	mirror   PresenceMirror // optional
}

func NewGateway(reg *Registry, router *Router, users UserStore, notifier *Notifier, mirror PresenceMirror) *Gateway {
	return &Gateway{
		reg:      reg,
		router:   router,
		users:    users,
		notifier: notifier,
		mirror:   mirror,
	}
}

// HandleWS is the gin handler for GET /ws?userId=...
func (g *Gateway) HandleWS(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[ws] upgrade failed: %v", err)
		return
	}

	userID := c.Query("userId")
	if userID == "" {
		// Identity-missing: reject before any registry state exists.
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "userId required")
		_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		_ = ws.Close()
		return
	}

	client := NewClient(ids.GenerateString(), userID, ws, 256)
	go client.WritePump()

	g.attach(client)
	g.readLoop(client)
	g.detach(client)
}

// attach commits the registry swap, closes any superseded handle, mirrors
// the transition durably and flushes the offline backlog. Persistence
// failures are logged and do not stop the lifecycle: the in-memory registry
// is authoritative and the durable record converges on a later transition.
func (g *Gateway) attach(c *Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if prev := g.reg.Attach(c.UserID, c); prev != nil {
		// Latest connection wins; close the superseded handle so its
		// writer pump exits instead of leaking.
		logger.Infof("[ws] superseding connection user=%s old=%s new=%s", c.UserID, prev.ConnID, c.ConnID)
		prev.Close()
	}

	if err := g.users.SetOnline(ctx, c.UserID); err != nil {
		logger.Errorf("[ws] persist online user=%s: %v", c.UserID, err)
	}
	if g.mirror != nil {
		if err := g.mirror.Up(ctx, c.UserID); err != nil {
			logger.Warnf("[ws] presence mirror up user=%s: %v", c.UserID, err)
		}
	}

	if err := g.notifier.FlushOffline(ctx, c.UserID, c); err != nil {
		logger.Errorf("[ws] offline flush user=%s: %v", c.UserID, err)
	}

	g.router.Broadcast(EventGetOnlineUsers, g.reg.Snapshot())
	logger.Infof("[ws] attached user=%s conn=%s", c.UserID, c.ConnID)
}

// detach is the counterpart of attach. The registry removal is guarded by
// handle identity: if a newer connection already replaced c, presence and
// the durable record belong to that connection and must not be touched.
func (g *Gateway) detach(c *Client) {
	c.Close()

	if !g.reg.Detach(c.UserID, c) {
		logger.Infof("[ws] stale detach ignored user=%s conn=%s", c.UserID, c.ConnID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := g.users.SetOffline(ctx, c.UserID, time.Now()); err != nil {
		logger.Errorf("[ws] persist offline user=%s: %v", c.UserID, err)
	}
	if g.mirror != nil {
		if _, err := g.mirror.Down(ctx, c.UserID); err != nil {
			logger.Warnf("[ws] presence mirror down user=%s: %v", c.UserID, err)
		}
	}

	g.router.Broadcast(EventGetOnlineUsers, g.reg.Snapshot())
	logger.Infof("[ws] detached user=%s conn=%s", c.UserID, c.ConnID)
}

// readLoop consumes client frames until the connection dies. The realtime
// contract needs nothing from the client beyond the attach, but two
// pass-through events from the original wire protocol are honored.
func (g *Gateway) readLoop(c *Client) {
	c.WS.SetReadLimit(maxMessageSize)
	_ = c.WS.SetReadDeadline(time.Now().Add(pongWait))
	c.WS.SetPongHandler(func(string) error {
		_ = c.WS.SetReadDeadline(time.Now().Add(pongWait))
		if g.mirror != nil {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := g.mirror.Up(ctx, c.UserID); err != nil {
				logger.Debug("presence mirror refresh: " + err.Error())
			}
		}
		return nil
	})

	for {
		mt, data, err := c.WS.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[ws] peer closed user=%s: %v", c.UserID, err)
			} else if ne, ok := err.(net.Error); ok && ne.Timeout() {
				logger.Infof("[ws] read timeout user=%s: %v", c.UserID, err)
			} else {
				logger.Infof("[ws] read error user=%s: %v", c.UserID, err)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		f, err := ParseFrame(data)
		if err != nil {
			logger.Infof("[ws] bad frame user=%s len=%d: %v", c.UserID, len(data), err)
			continue
		}
		g.handleClientFrame(c, f)
	}
}

func (g *Gateway) handleClientFrame(c *Client, f *Frame) {
	switch f.Event {
	case EventMessageSent:
		// Echo a status update back to the sending socket itself.
		var upd StatusUpdate
		if err := DecodePayload(f.Data, &upd); err != nil {
			logger.Infof("[ws] bad %s payload user=%s: %v", f.Event, c.UserID, err)
			return
		}
		if upd.Status == "" {
			upd.Status = "sent"
		}
		if payload, err := MarshalFrame(EventMessageStatusUpdate, upd); err == nil {
			c.Push(payload)
		}
	case EventUpdatePrevChatUser:
		// Pass-through: forward the chat-list preview to the target user
		// if they are present.
		var upd PrevChatUpdate
		if err := DecodePayload(f.Data, &upd); err != nil {
			logger.Infof("[ws] bad %s payload user=%s: %v", f.Event, c.UserID, err)
			return
		}
		g.router.DeliverToUser(upd.UserID, EventUpdatePrevChatUser, upd)
	default:
		logger.Debug("unhandled client event " + f.Event)
	}
}
