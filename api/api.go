package api

import (
	"net/http"

	"github.com/anirbanjana883/ZYRA-backend/module/message"
	"github.com/anirbanjana883/ZYRA-backend/module/notification"
	"github.com/anirbanjana883/ZYRA-backend/module/user"
	"github.com/anirbanjana883/ZYRA-backend/service/chat"
	"github.com/anirbanjana883/ZYRA-backend/service/storage"

	"github.com/gin-gonic/gin"
)

// Deps wires the HTTP surface to the realtime core. The handlers here are
// the call sites the core is driven from; the full CRUD surface (profiles,
// feeds, media) lives in other services.
type Deps struct {
	Registry      *chat.Registry
	Router        *chat.Router
	Tracker       *chat.Tracker
	Notifier      *chat.Notifier
	Messages      *message.Store
	Notifications *notification.Store
	Users         *user.Store
	Mirror        *storage.Mirror // optional
}

func Register(r *gin.Engine, d *Deps) {
	api := r.Group("/api")

	api.GET("/online", d.handleOnline)

	msg := api.Group("/message")
	msg.POST("/send/:receiverId", d.handleSendMessage)
	msg.POST("/read/:messageId", d.handleMarkRead)

	nt := api.Group("/notification")
	nt.GET("", d.handleListNotifications)
	nt.GET("/unread-count", d.handleUnreadCount)
	nt.POST("/read-all", d.handleReadAll)
	nt.POST("/read/:id", d.handleReadOne)
	nt.DELETE("/:id", d.handleDeleteNotification)

	api.POST("/user/:targetUserId/follow", d.handleFollow)

	registerContentRoutes(api, d)
}

// currentUser reads the caller identity the auth middleware (out of scope
// here) injects. Requests without it are rejected up front.
func currentUser(c *gin.Context) (string, bool) {
	uid := c.GetHeader("X-User-ID")
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "missing user identity"})
		return "", false
	}
	return uid, true
}

// handleOnline answers "who is online". With a mirror configured the answer
// covers every gateway node; otherwise it is the local registry snapshot.
func (d *Deps) handleOnline(c *gin.Context) {
	if d.Mirror != nil {
		online, err := d.Mirror.Online(c.Request.Context())
		if err == nil {
			c.JSON(http.StatusOK, gin.H{"online": online})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"online": d.Registry.Snapshot()})
}
