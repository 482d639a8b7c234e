package chat

import (
	"context"
	"time"

	"github.com/anirbanjana883/ZYRA-backend/logger"
	"github.com/anirbanjana883/ZYRA-backend/module/notification/model"
	"github.com/anirbanjana883/ZYRA-backend/tools/ids"
)

// Event is one domain occurrence to fan out: a like, comment, reply,
// follow, or upload. Receivers carries a single user for the point-to-point
// types and the full follower set, resolved by the caller at upload time,
// for uploads.
type Event struct {
	Type       string
	Sender     string
	Receivers  []string
	TargetKind string
	TargetRef  string
	Text       string
}

// Notifier turns domain events into notification records and live pushes.
type Notifier struct {
	router *Router
	store  NotificationStore
}

func NewNotifier(router *Router, store NotificationStore) *Notifier {
	return &Notifier{router: router, store: store}
}

// Publish runs the fan-out for one event: per receiver, skip self, apply
// the like-dedup rule, persist, then best-effort live delivery. A receiver
// without a live connection is not an error; the record waits for the
// offline flush. Returns the notifications actually created.
func (n *Notifier) Publish(ctx context.Context, ev Event) ([]*model.Notification, error) {
	var created []*model.Notification
	for _, receiver := range ev.Receivers {
		if receiver == "" || receiver == ev.Sender {
			continue
		}

		if ev.Type == model.TypeLike {
			exists, err := n.store.HasUndismissedLike(ctx, ev.Sender, receiver, ev.TargetRef)
			if err != nil {
				return created, err
			}
			if exists {
				// Idempotent like-toggle: the outstanding notification
				// stands in for this one.
				continue
			}
		}

		rec := &model.Notification{
			NotificationID: ids.GenerateString(),
			Sender:         ev.Sender,
			Receiver:       receiver,
			Type:           ev.Type,
			TargetKind:     ev.TargetKind,
			TargetRef:      ev.TargetRef,
			Message:        ev.Text,
			IsRead:         false,
			CreateTime:     time.Now(),
		}
		if err := n.store.Create(ctx, rec); err != nil {
			return created, err
		}
		created = append(created, rec)

		n.router.DeliverToUser(receiver, EventNewNotification, rec)
	}
	return created, nil
}

// FlushOffline delivers the backlog that accumulated while userID was
// offline: all unread notifications, newest first, as one batch frame to
// the newly attached connection only. Entries that made it onto the wire
// are marked read so the next reconnect starts clean.
func (n *Notifier) FlushOffline(ctx context.Context, userID string, c *Client) error {
	backlog, err := n.store.UnreadByReceiver(ctx, userID)
	if err != nil {
		return err
	}
	if len(backlog) == 0 {
		return nil
	}

	payload, err := MarshalFrame(EventOfflineNotifications, backlog)
	if err != nil {
		return err
	}
	if !c.Push(payload) {
		// Connection died between attach and flush; keep the backlog for
		// the next reconnect.
		return nil
	}

	read := make([]string, 0, len(backlog))
	for _, rec := range backlog {
		read = append(read, rec.NotificationID)
	}
	if err := n.store.MarkRead(ctx, userID, read); err != nil {
		logger.Errorf("mark flushed notifications read user=%s: %v", userID, err)
	}
	return nil
}
