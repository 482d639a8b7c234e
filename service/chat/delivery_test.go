package chat

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	msgmodel "github.com/anirbanjana883/ZYRA-backend/module/message/model"
)

func newTrackerFixture() (*Registry, *Router, *memMessageStore, *Tracker) {
	reg := NewRegistry()
	router := NewRouter(reg, nil)
	msgs := newMemMessageStore()
	return reg, router, msgs, NewTracker(router, msgs)
}

func makeMessage(id, sender, receiver string) *msgmodel.Message {
	return &msgmodel.Message{
		MessageID:  id,
		Sender:     sender,
		Receiver:   receiver,
		Message:    "hey there",
		Status:     msgmodel.StatusSent,
		CreateTime: time.Now(),
	}
}

func TestDispatchReceiverPresent(t *testing.T) {
	reg, _, msgs, tracker := newTrackerFixture()

	sender := newTestClient("alice")
	receiver := newTestClient("bob")
	reg.Attach("alice", sender)
	reg.Attach("bob", receiver)

	m := makeMessage("m1", "alice", "bob")
	msgs.put(m)
	tracker.Dispatch(context.Background(), m)

	f := recvFrame(t, receiver, time.Second)
	if f.Event != EventReceiveMessage {
		t.Fatalf("receiver got %s, want %s", f.Event, EventReceiveMessage)
	}

	if got := msgs.status("m1"); got != msgmodel.StatusDelivered {
		t.Fatalf("persisted status = %s, want delivered", got)
	}

	f = recvFrame(t, sender, time.Second)
	if f.Event != EventMessageStatusUpdate {
		t.Fatalf("sender got %s, want %s", f.Event, EventMessageStatusUpdate)
	}
	var upd StatusUpdate
	if err := json.Unmarshal(f.Data, &upd); err != nil {
		t.Fatalf("decode status update: %v", err)
	}
	if upd.MessageID != "m1" || upd.Status != msgmodel.StatusDelivered {
		t.Fatalf("status update = %+v", upd)
	}

	// Receiver's chat list preview follows the message.
	f = recvFrame(t, receiver, time.Second)
	if f.Event != EventUpdatePrevChatUser {
		t.Fatalf("receiver got %s, want %s", f.Event, EventUpdatePrevChatUser)
	}
	var prev PrevChatUpdate
	if err := json.Unmarshal(f.Data, &prev); err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if prev.UserID != "alice" || prev.LastMessage != "hey there" {
		t.Fatalf("preview = %+v", prev)
	}
}

func TestDispatchReceiverAbsent(t *testing.T) {
	reg, _, msgs, tracker := newTrackerFixture()

	sender := newTestClient("alice")
	reg.Attach("alice", sender)

	m := makeMessage("m1", "alice", "bob")
	msgs.put(m)
	tracker.Dispatch(context.Background(), m)

	if got := msgs.status("m1"); got != msgmodel.StatusSent {
		t.Fatalf("status = %s, want sent", got)
	}
	if f := tryRecvFrame(t, sender); f != nil {
		t.Fatalf("sender got unexpected %s while receiver absent", f.Event)
	}
}

func TestDispatchSelfMessage(t *testing.T) {
	reg, _, msgs, tracker := newTrackerFixture()

	self := newTestClient("alice")
	reg.Attach("alice", self)

	m := makeMessage("m1", "alice", "alice")
	msgs.put(m)
	tracker.Dispatch(context.Background(), m)

	// Normal path: the message lands, then the delivered update, then the
	// preview, all on the same connection.
	events := []string{}
	for i := 0; i < 3; i++ {
		events = append(events, recvFrame(t, self, time.Second).Event)
	}
	want := []string{EventReceiveMessage, EventMessageStatusUpdate, EventUpdatePrevChatUser}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("self-message events = %v, want %v", events, want)
		}
	}
	if got := msgs.status("m1"); got != msgmodel.StatusDelivered {
		t.Fatalf("status = %s, want delivered", got)
	}
}

func TestMarkReadAdvancesAndNotifiesSender(t *testing.T) {
	reg, _, msgs, tracker := newTrackerFixture()

	sender := newTestClient("alice")
	reg.Attach("alice", sender)

	m := makeMessage("m1", "alice", "bob")
	m.Status = msgmodel.StatusDelivered
	msgs.put(m)

	if err := tracker.MarkRead(context.Background(), "m1", "bob"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if got := msgs.status("m1"); got != msgmodel.StatusRead {
		t.Fatalf("status = %s, want read", got)
	}

	f := recvFrame(t, sender, time.Second)
	var upd StatusUpdate
	_ = json.Unmarshal(f.Data, &upd)
	if f.Event != EventMessageStatusUpdate || upd.Status != msgmodel.StatusRead {
		t.Fatalf("sender got %s/%s", f.Event, upd.Status)
	}

	// Reading again is a silent no-op: status immutable, no second event.
	if err := tracker.MarkRead(context.Background(), "m1", "bob"); err != nil {
		t.Fatalf("second MarkRead: %v", err)
	}
	if f := tryRecvFrame(t, sender); f != nil {
		t.Fatalf("duplicate read produced event %s", f.Event)
	}
}

func TestMarkReadRejectsNonReceiver(t *testing.T) {
	_, _, msgs, tracker := newTrackerFixture()

	m := makeMessage("m1", "alice", "bob")
	msgs.put(m)

	if err := tracker.MarkRead(context.Background(), "m1", "mallory"); err == nil {
		t.Fatalf("non-receiver read accepted")
	}
	if got := msgs.status("m1"); got != msgmodel.StatusSent {
		t.Fatalf("status moved to %s on rejected read", got)
	}
}

func TestStatusNeverMovesBackwards(t *testing.T) {
	_, _, msgs, _ := newTrackerFixture()

	m := makeMessage("m1", "alice", "bob")
	m.Status = msgmodel.StatusRead
	msgs.put(m)

	ok, err := msgs.AdvanceStatus(context.Background(), "m1", msgmodel.StatusDelivered)
	if err != nil {
		t.Fatalf("AdvanceStatus: %v", err)
	}
	if ok {
		t.Fatalf("read message moved back to delivered")
	}
	if got := msgs.status("m1"); got != msgmodel.StatusRead {
		t.Fatalf("status = %s, want read", got)
	}
}
