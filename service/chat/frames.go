package chat

import (
	"encoding/json"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Server -> client event names. These are the wire compatibility surface;
// clients written against the original socket.io backend keep working.
const (
	EventGetOnlineUsers       = "getOnlineUsers"
	EventNewNotification      = "newNotification"
	EventOfflineNotifications = "receiveOfflineNotifications"
	EventReceiveMessage       = "receiveMessage"
	EventMessageStatusUpdate  = "messageStatusUpdate"
	EventUpdatePrevChatUser   = "updatePrevChatUser"

	EventLikedPost      = "likedPost"
	EventLikedLoop      = "likedLoop"
	EventCommentedPost  = "commentedPost"
	EventCommentedLoop  = "commentedLoop"
	EventRepliedComment = "repliedComment"
	EventRepliedLoop    = "repliedLoop"
	EventDeletedComment = "deletedComment"
	EventDeletedReply   = "deletedReply"
)

// Client -> server event names.
const (
	EventMessageSent = "messageSent"
)

// Frame is the envelope for every websocket message in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// MarshalFrame encodes an event and its payload into one wire frame.
func MarshalFrame(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: raw})
}

// ParseFrame decodes a raw websocket message into a frame.
func ParseFrame(data []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// StatusUpdate is the payload of messageStatusUpdate.
type StatusUpdate struct {
	MessageID string `json:"messageId" mapstructure:"messageId"`
	Status    string `json:"status" mapstructure:"status"`
}

// PrevChatUpdate is the payload of updatePrevChatUser: enough for an open
// client session to refresh its chat list without re-fetching.
type PrevChatUpdate struct {
	UserID          string    `json:"userId" mapstructure:"userId"`
	LastMessage     string    `json:"lastMessage" mapstructure:"lastMessage"`
	LastMessageTime time.Time `json:"lastMessageTime" mapstructure:"lastMessageTime"`
}

// DecodePayload maps a loosely typed client payload onto a struct. Client
// payloads arrive as JSON objects with no schema enforcement, so decoding
// is tolerant of extra keys.
func DecodePayload(raw json.RawMessage, out any) error {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     out,
		TagName:    "mapstructure",
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return dec.Decode(m)
}
