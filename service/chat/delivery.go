package chat

import (
	"context"
	"unicode/utf8"

	"github.com/anirbanjana883/ZYRA-backend/logger"
	"github.com/anirbanjana883/ZYRA-backend/module/message/model"
	"github.com/anirbanjana883/ZYRA-backend/tools/errs"
)

const previewLen = 80

// Tracker advances a message through sent -> delivered -> read and keeps
// both sides' open sessions informed. It is the only component that mutates
// message status.
type Tracker struct {
	router *Router
	msgs   MessageStore
}

func NewTracker(router *Router, msgs MessageStore) *Tracker {
	return &Tracker{router: router, msgs: msgs}
}

// Dispatch attempts live delivery of a freshly persisted message (state
// "sent"). If the receiver holds a live connection the status advances to
// "delivered" durably and the sender, if present, is told; if not, the
// message simply stays "sent" and nothing else happens. A self-message
// takes the same path as any other recipient.
func (t *Tracker) Dispatch(ctx context.Context, m *model.Message) {
	delivered := t.router.DeliverToUser(m.Receiver, EventReceiveMessage, m)
	if !delivered {
		return
	}

	ok, err := t.msgs.AdvanceStatus(ctx, m.MessageID, model.StatusDelivered)
	if err != nil {
		// In-memory delivery already happened; the durable status will be
		// corrected by the next transition for this message.
		logger.Errorf("persist delivered status message=%s: %v", m.MessageID, err)
	} else if ok {
		m.Status = model.StatusDelivered
	}

	t.router.DeliverToUser(m.Sender, EventMessageStatusUpdate, StatusUpdate{
		MessageID: m.MessageID,
		Status:    model.StatusDelivered,
	})

	t.router.DeliverToUser(m.Receiver, EventUpdatePrevChatUser, PrevChatUpdate{
		UserID:          m.Sender,
		LastMessage:     excerpt(m.Message),
		LastMessageTime: m.CreateTime,
	})
}

// MarkRead advances a message to "read" on behalf of its receiver and
// notifies the sender's open session. Once read, the message is immutable;
// a duplicate read is a silent no-op.
func (t *Tracker) MarkRead(ctx context.Context, messageID, readerID string) error {
	m, err := t.msgs.Get(ctx, messageID)
	if err != nil {
		return err
	}
	if m.Receiver != readerID {
		return errs.NewCodeError(errs.CodeRecordNotFound, "message not addressed to reader")
	}

	ok, err := t.msgs.AdvanceStatus(ctx, messageID, model.StatusRead)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	t.router.DeliverToUser(m.Sender, EventMessageStatusUpdate, StatusUpdate{
		MessageID: messageID,
		Status:    model.StatusRead,
	})
	return nil
}

func excerpt(s string) string {
	if utf8.RuneCountInString(s) <= previewLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:previewLen]) + "…"
}
