package model

import "time"

const MessageTableName = "messages"

// Delivery lifecycle. Status only ever moves forward:
// sent -> delivered -> read.
const (
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusRead      = "read"
)

// statusRank orders the lifecycle so stores can refuse backward moves.
var statusRank = map[string]int{
	StatusSent:      0,
	StatusDelivered: 1,
	StatusRead:      2,
}

// StatusBefore lists the states a message may be in right before moving to
// "to". Used as the update filter for the monotonic advance.
func StatusBefore(to string) []string {
	rank, ok := statusRank[to]
	if !ok {
		return nil
	}
	out := make([]string, 0, rank)
	for st, r := range statusRank {
		if r < rank {
			out = append(out, st)
		}
	}
	return out
}

// Message is one direct message between two users. Created in state "sent"
// by the send handler; status is advanced only by the delivery tracker.
type Message struct {
	MessageID string `bson:"message_id" json:"messageId"`
	Sender    string `bson:"sender" json:"sender"`
	Receiver  string `bson:"receiver" json:"receiver"`
	Message   string `bson:"message" json:"message"`
	Image     string `bson:"image,omitempty" json:"image,omitempty"`

	Status     string    `bson:"status" json:"status"`
	CreateTime time.Time `bson:"create_time" json:"createdAt"`
}

func (*Message) TableName() string { return MessageTableName }
