package model

import "time"

const NotificationTableName = "notifications"

// Notification types. Only "like" is deduplicated; comment/reply/follow are
// intentionally allowed to recur.
const (
	TypeUpload  = "upload"
	TypeLike    = "like"
	TypeComment = "comment"
	TypeReply   = "reply"
	TypeFollow  = "follow"
)

// Target kinds, for client display routing.
const (
	TargetPost = "post"
	TargetLoop = "loop"
)

// Notification is one entry in a user's notification feed. IsRead is the
// only mutable field: it flips when the receiver dismisses the entry or
// when the offline flush hands the entry over on reconnect.
type Notification struct {
	NotificationID string `bson:"notification_id" json:"notificationId"`
	Sender         string `bson:"sender" json:"sender"`
	Receiver       string `bson:"receiver" json:"receiver"`
	Type           string `bson:"type" json:"type"`

	// TargetRef points at the post/loop/comment the event happened on;
	// empty for follow notifications.
	TargetKind string `bson:"target_kind,omitempty" json:"targetKind,omitempty"`
	TargetRef  string `bson:"target_ref,omitempty" json:"targetRef,omitempty"`

	Message    string    `bson:"message" json:"message"`
	IsRead     bool      `bson:"is_read" json:"isRead"`
	CreateTime time.Time `bson:"create_time" json:"createdAt"`
}

func (*Notification) TableName() string { return NotificationTableName }
