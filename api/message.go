package api

import (
	"net/http"
	"time"

	"github.com/anirbanjana883/ZYRA-backend/module/message/model"
	"github.com/anirbanjana883/ZYRA-backend/tools/errs"
	"github.com/anirbanjana883/ZYRA-backend/tools/ids"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

type sendMessageReq struct {
	Message string `json:"message" binding:"required"`
	Image   string `json:"image"`
}

// handleSendMessage persists a new message in state "sent" and hands it to
// the delivery tracker. The response carries the message with whatever
// status live delivery reached.
func (d *Deps) handleSendMessage(c *gin.Context) {
	senderID, ok := currentUser(c)
	if !ok {
		return
	}
	receiverID := c.Param("receiverId")

	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	m := &model.Message{
		MessageID:  ids.GenerateString(),
		Sender:     senderID,
		Receiver:   receiverID,
		Message:    req.Message,
		Image:      req.Image,
		Status:     model.StatusSent,
		CreateTime: time.Now(),
	}
	if err := d.Messages.Create(c.Request.Context(), m); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "send message failed"})
		return
	}

	d.Tracker.Dispatch(c.Request.Context(), m)

	c.JSON(http.StatusOK, m)
}

func (d *Deps) handleMarkRead(c *gin.Context) {
	readerID, ok := currentUser(c)
	if !ok {
		return
	}
	messageID := c.Param("messageId")

	if err := d.Tracker.MarkRead(c.Request.Context(), messageID, readerID); err != nil {
		var ce *errs.CodeError
		if errors.As(err, &ce) && ce.Code == errs.CodeRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "message not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "mark read failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messageId": messageID, "status": model.StatusRead})
}
