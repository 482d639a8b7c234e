package api

import (
	"net/http"

	notifmodel "github.com/anirbanjana883/ZYRA-backend/module/notification/model"
	"github.com/anirbanjana883/ZYRA-backend/service/chat"

	"github.com/gin-gonic/gin"
)

// Content mutation call sites. The content documents themselves (posts,
// loops, comments) are owned by the content service; these handlers receive
// the outcome of a mutation (author, new counts) and run the realtime side:
// notification fan-out plus the broadcast every open client reflects.

func registerContentRoutes(api *gin.RouterGroup, d *Deps) {
	for _, kind := range []string{notifmodel.TargetPost, notifmodel.TargetLoop} {
		grp := api.Group("/" + kind)
		grp.POST("/upload", d.uploadHandler(kind))
		grp.POST("/:id/like", d.likeHandler(kind))
		grp.POST("/:id/comment", d.commentHandler(kind))
		grp.POST("/:id/comment/:commentId/reply", d.replyHandler(kind))
		grp.DELETE("/:id", d.deleteContentHandler(kind))
		grp.DELETE("/:id/comment/:commentId", d.deleteCommentHandler(kind))
		grp.DELETE("/:id/comment/:commentId/reply/:replyId", d.deleteReplyHandler(kind))
	}
}

// Broadcast event names differ per content kind; the original clients
// listen for the post/loop variants separately.
func likedEvent(kind string) string {
	if kind == notifmodel.TargetLoop {
		return chat.EventLikedLoop
	}
	return chat.EventLikedPost
}

func commentedEvent(kind string) string {
	if kind == notifmodel.TargetLoop {
		return chat.EventCommentedLoop
	}
	return chat.EventCommentedPost
}

func repliedEvent(kind string) string {
	if kind == notifmodel.TargetLoop {
		return chat.EventRepliedLoop
	}
	return chat.EventRepliedComment
}

type likeReq struct {
	AuthorID string `json:"authorId" binding:"required"`
	Likes    int    `json:"likes"`
	Liked    bool   `json:"liked"`
}

func (d *Deps) likeHandler(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := currentUser(c)
		if !ok {
			return
		}
		targetID := c.Param("id")

		var req likeReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}

		// Unliking never creates and never deletes a notification; the
		// broadcast still goes out so counts stay live everywhere.
		if req.Liked {
			_, err := d.Notifier.Publish(c.Request.Context(), chat.Event{
				Type:       notifmodel.TypeLike,
				Sender:     uid,
				Receivers:  []string{req.AuthorID},
				TargetKind: kind,
				TargetRef:  targetID,
				Text:       "liked your " + kind,
			})
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"message": "like notification failed"})
				return
			}
		}

		d.Router.Broadcast(likedEvent(kind), gin.H{
			kind + "Id": targetID,
			"userId":    uid,
			"likes":     req.Likes,
			"liked":     req.Liked,
		})
		c.Status(http.StatusNoContent)
	}
}

type commentReq struct {
	AuthorID string `json:"authorId" binding:"required"`
	Text     string `json:"text" binding:"required"`
	Comments int    `json:"comments"`
}

func (d *Deps) commentHandler(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := currentUser(c)
		if !ok {
			return
		}
		targetID := c.Param("id")

		var req commentReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}

		_, err := d.Notifier.Publish(c.Request.Context(), chat.Event{
			Type:       notifmodel.TypeComment,
			Sender:     uid,
			Receivers:  []string{req.AuthorID},
			TargetKind: kind,
			TargetRef:  targetID,
			Text:       "commented on your " + kind,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "comment notification failed"})
			return
		}

		d.Router.Broadcast(commentedEvent(kind), gin.H{
			kind + "Id": targetID,
			"userId":    uid,
			"text":      req.Text,
			"comments":  req.Comments,
		})
		c.Status(http.StatusNoContent)
	}
}

type replyReq struct {
	CommentAuthorID string `json:"commentAuthorId" binding:"required"`
	Text            string `json:"text" binding:"required"`
}

func (d *Deps) replyHandler(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := currentUser(c)
		if !ok {
			return
		}
		targetID := c.Param("id")
		commentID := c.Param("commentId")

		var req replyReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}

		_, err := d.Notifier.Publish(c.Request.Context(), chat.Event{
			Type:       notifmodel.TypeReply,
			Sender:     uid,
			Receivers:  []string{req.CommentAuthorID},
			TargetKind: kind,
			TargetRef:  targetID,
			Text:       "replied to your comment",
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "reply notification failed"})
			return
		}

		d.Router.Broadcast(repliedEvent(kind), gin.H{
			kind + "Id": targetID,
			"commentId": commentID,
			"userId":    uid,
			"text":      req.Text,
		})
		c.Status(http.StatusNoContent)
	}
}

type uploadReq struct {
	TargetID string `json:"targetId" binding:"required"`
	Caption  string `json:"caption"`
}

// uploadHandler runs the follower fan-out. The follower set is resolved
// exactly once, here, at upload time; whoever follows a second later gets
// nothing for this upload.
func (d *Deps) uploadHandler(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := currentUser(c)
		if !ok {
			return
		}

		var req uploadReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}

		followers, err := d.Users.Followers(c.Request.Context(), uid)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "resolve followers failed"})
			return
		}

		created, err := d.Notifier.Publish(c.Request.Context(), chat.Event{
			Type:       notifmodel.TypeUpload,
			Sender:     uid,
			Receivers:  followers,
			TargetKind: kind,
			TargetRef:  req.TargetID,
			Text:       "uploaded a new " + kind,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "upload fan-out failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"notified": len(created)})
	}
}

// deleteContentHandler is the cascade hook of the content-deletion path:
// when a post/loop disappears, every notification pointing at it goes too.
func (d *Deps) deleteContentHandler(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := currentUser(c); !ok {
			return
		}
		targetID := c.Param("id")

		n, err := d.Notifications.DeleteByTarget(c.Request.Context(), targetID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "cascade delete failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deletedNotifications": n})
	}
}

func (d *Deps) deleteCommentHandler(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := currentUser(c); !ok {
			return
		}
		d.Router.Broadcast(chat.EventDeletedComment, gin.H{
			kind + "Id": c.Param("id"),
			"commentId": c.Param("commentId"),
		})
		c.Status(http.StatusNoContent)
	}
}

func (d *Deps) deleteReplyHandler(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := currentUser(c); !ok {
			return
		}
		d.Router.Broadcast(chat.EventDeletedReply, gin.H{
			kind + "Id": c.Param("id"),
			"commentId": c.Param("commentId"),
			"replyId":   c.Param("replyId"),
		})
		c.Status(http.StatusNoContent)
	}
}
