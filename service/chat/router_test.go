package chat

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

func TestDeliverToUserPresent(t *testing.T) {
	reg := NewRegistry()
	router := NewRouter(reg, nil)

	c := newTestClient("u1")
	reg.Attach("u1", c)

	if !router.DeliverToUser("u1", EventNewNotification, map[string]string{"hello": "world"}) {
		t.Fatalf("delivery to a present user reported false")
	}

	f := recvFrame(t, c, time.Second)
	if f.Event != EventNewNotification {
		t.Fatalf("event = %s, want %s", f.Event, EventNewNotification)
	}
}

func TestDeliverToUserAbsent(t *testing.T) {
	router := NewRouter(NewRegistry(), nil)
	if router.DeliverToUser("ghost", EventNewNotification, "x") {
		t.Fatalf("delivery to an absent user reported true")
	}
}

func TestDeliverToUserMidTeardown(t *testing.T) {
	reg := NewRegistry()
	router := NewRouter(reg, nil)

	c := newTestClient("u1")
	reg.Attach("u1", c)
	c.Close()

	if router.DeliverToUser("u1", EventNewNotification, "x") {
		t.Fatalf("delivery to a closing handle reported true")
	}
}

func TestSlowClientIsSkippedNotWaitedOn(t *testing.T) {
	reg := NewRegistry()
	router := NewRouter(reg, nil)

	c := NewClient("conn", "u1", nil, 1)
	reg.Attach("u1", c)

	// Fill the queue; nobody drains it.
	if !router.DeliverToUser("u1", EventNewNotification, 1) {
		t.Fatalf("first push should land")
	}

	done := make(chan bool, 1)
	go func() {
		done <- router.DeliverToUser("u1", EventNewNotification, 2)
	}()
	select {
	case got := <-done:
		if got {
			t.Fatalf("push to a full queue reported delivered")
		}
	case <-time.After(time.Second):
		t.Fatalf("push to a slow client blocked")
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	reg := NewRegistry()
	router := NewRouter(reg, nil)

	clients := []*Client{newTestClient("a"), newTestClient("b"), newTestClient("c")}
	for _, c := range clients {
		reg.Attach(c.UserID, c)
	}

	router.Broadcast(EventLikedPost, map[string]any{"postId": "p1", "likes": 3})

	for _, c := range clients {
		f := recvFrame(t, c, time.Second)
		if f.Event != EventLikedPost {
			t.Fatalf("user %s got event %s", c.UserID, f.Event)
		}
	}
}

// Broadcasts must come out in submission order, otherwise presence
// snapshots could reorder across a reconnect race.
func TestBroadcastOrdering(t *testing.T) {
	reg := NewRegistry()
	router := NewRouter(reg, nil)

	c := newTestClient("u1")
	reg.Attach("u1", c)

	const n = 20
	for i := 0; i < n; i++ {
		router.Broadcast(EventGetOnlineUsers, []int{i})
	}

	for i := 0; i < n; i++ {
		f := recvFrame(t, c, time.Second)
		var seq []int
		if err := json.Unmarshal(f.Data, &seq); err != nil || len(seq) != 1 {
			t.Fatalf("bad broadcast payload %s", f.Data)
		}
		if seq[0] != i {
			t.Fatalf("broadcast %d arrived out of order (got %d)", i, seq[0])
		}
	}
}

type fakeRelay struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeRelay) Publish(event string, _ json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func TestBroadcastFeedsRelayAndRemoteApplies(t *testing.T) {
	reg := NewRegistry()
	relay := &fakeRelay{}
	router := NewRouter(reg, relay)

	c := newTestClient("u1")
	reg.Attach("u1", c)

	router.Broadcast(EventLikedLoop, map[string]string{"loopId": "l1"})
	recvFrame(t, c, time.Second)

	relay.mu.Lock()
	published := len(relay.events)
	relay.mu.Unlock()
	if published != 1 || relay.events[0] != EventLikedLoop {
		t.Fatalf("relay saw %v", relay.events)
	}

	// A frame arriving from another node reaches local clients but is not
	// re-published.
	router.ApplyRemote(EventCommentedPost, json.RawMessage(`{"postId":"p9"}`))
	f := recvFrame(t, c, time.Second)
	if f.Event != EventCommentedPost {
		t.Fatalf("remote broadcast not applied locally")
	}

	relay.mu.Lock()
	defer relay.mu.Unlock()
	if len(relay.events) != 1 {
		t.Fatalf("remote apply leaked back into the relay")
	}
}
