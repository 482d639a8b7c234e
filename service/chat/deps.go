package chat

import (
	"context"
	"time"

	msgmodel "github.com/anirbanjana883/ZYRA-backend/module/message/model"
	notifmodel "github.com/anirbanjana883/ZYRA-backend/module/notification/model"
)

// Narrow views of the external collaborators this core drives. The mongo
// stores under module/ implement them; tests plug in memory twins.

type UserStore interface {
	SetOnline(ctx context.Context, userID string) error
	SetOffline(ctx context.Context, userID string, lastSeen time.Time) error
}

type MessageStore interface {
	Get(ctx context.Context, messageID string) (*msgmodel.Message, error)
	AdvanceStatus(ctx context.Context, messageID, to string) (bool, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *notifmodel.Notification) error
	HasUndismissedLike(ctx context.Context, sender, receiver, targetRef string) (bool, error)
	UnreadByReceiver(ctx context.Context, receiver string) ([]*notifmodel.Notification, error)
	MarkRead(ctx context.Context, receiver string, ids []string) error
}

// PresenceMirror is the optional cross-node online view in Redis.
type PresenceMirror interface {
	Up(ctx context.Context, userID string) error
	Down(ctx context.Context, userID string) (bool, error)
}
