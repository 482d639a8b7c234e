package chat

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestFrameRoundTrip(t *testing.T) {
	payload, err := MarshalFrame(EventNewNotification, map[string]string{"k": "v"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	f, err := ParseFrame(payload)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.Event != EventNewNotification {
		t.Fatalf("event = %s", f.Event)
	}
	var m map[string]string
	if err := json.Unmarshal(f.Data, &m); err != nil || m["k"] != "v" {
		t.Fatalf("data = %s (%v)", f.Data, err)
	}
}

func TestDecodePayload(t *testing.T) {
	raw := json.RawMessage(`{
		"userId": "u1",
		"lastMessage": "hey",
		"lastMessageTime": "2026-01-02T15:04:05Z",
		"somethingClientsAdd": true
	}`)

	var upd PrevChatUpdate
	if err := DecodePayload(raw, &upd); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if upd.UserID != "u1" || upd.LastMessage != "hey" {
		t.Fatalf("decoded = %+v", upd)
	}
	want := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	if !upd.LastMessageTime.Equal(want) {
		t.Fatalf("time = %v, want %v", upd.LastMessageTime, want)
	}

	if err := DecodePayload(json.RawMessage(`"not an object"`), &upd); err == nil {
		t.Fatalf("non-object payload decoded without error")
	}
}

func TestExcerpt(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"short", "hello", "hello"},
		{"exact", strings.Repeat("a", previewLen), strings.Repeat("a", previewLen)},
		{"long", strings.Repeat("a", previewLen+1), strings.Repeat("a", previewLen) + "…"},
		{"multibyte", strings.Repeat("日", previewLen+5), strings.Repeat("日", previewLen) + "…"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := excerpt(tc.in); got != tc.want {
				t.Fatalf("excerpt(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
