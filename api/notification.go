package api

import (
	"net/http"
	"strconv"

	notifmodel "github.com/anirbanjana883/ZYRA-backend/module/notification/model"
	"github.com/anirbanjana883/ZYRA-backend/service/chat"

	"github.com/gin-gonic/gin"
)

func (d *Deps) handleListNotifications(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	list, err := d.Notifications.ListByReceiver(c.Request.Context(), uid, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "list notifications failed"})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (d *Deps) handleUnreadCount(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	n, err := d.Notifications.CountUnread(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "count failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": n})
}

func (d *Deps) handleReadAll(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	if err := d.Notifications.MarkAllRead(c.Request.Context(), uid); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "mark all read failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (d *Deps) handleReadOne(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	if err := d.Notifications.MarkRead(c.Request.Context(), uid, []string{c.Param("id")}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "mark read failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (d *Deps) handleDeleteNotification(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	if err := d.Notifications.Delete(c.Request.Context(), uid, c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "delete failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

// handleFollow is the follow call site: one point-to-point notification,
// no target ref. Self-follow creates nothing (the fan-out drops it).
func (d *Deps) handleFollow(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	target := c.Param("targetUserId")

	created, err := d.Notifier.Publish(c.Request.Context(), chat.Event{
		Type:      notifmodel.TypeFollow,
		Sender:    uid,
		Receivers: []string{target},
		Text:      "started following you",
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "follow notification failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notified": len(created) > 0})
}
