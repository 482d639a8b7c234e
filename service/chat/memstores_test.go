package chat

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	msgmodel "github.com/anirbanjana883/ZYRA-backend/module/message/model"
	notifmodel "github.com/anirbanjana883/ZYRA-backend/module/notification/model"
	"github.com/anirbanjana883/ZYRA-backend/tools/errs"
)

// In-memory twins of the mongo stores, matching their semantics closely
// enough to drive the core without a database.

type memUserStore struct {
	mu       sync.Mutex
	online   map[string]bool
	lastSeen map[string]time.Time
	failNext error
}

func newMemUserStore() *memUserStore {
	return &memUserStore{
		online:   make(map[string]bool),
		lastSeen: make(map[string]time.Time),
	}
}

func (s *memUserStore) SetOnline(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failNext; err != nil {
		s.failNext = nil
		return err
	}
	s.online[userID] = true
	return nil
}

func (s *memUserStore) SetOffline(_ context.Context, userID string, lastSeen time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failNext; err != nil {
		s.failNext = nil
		return err
	}
	s.online[userID] = false
	s.lastSeen[userID] = lastSeen
	return nil
}

func (s *memUserStore) isOnline(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online[userID]
}

func (s *memUserStore) seen(userID string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.lastSeen[userID]
	return t, ok
}

type memMessageStore struct {
	mu   sync.Mutex
	msgs map[string]*msgmodel.Message
}

func newMemMessageStore() *memMessageStore {
	return &memMessageStore{msgs: make(map[string]*msgmodel.Message)}
}

func (s *memMessageStore) put(m *msgmodel.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	s.msgs[m.MessageID] = &cp
}

func (s *memMessageStore) Get(_ context.Context, messageID string) (*msgmodel.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.msgs[messageID]
	if !ok {
		return nil, errs.ErrRecordNotFound.WithDetail("message " + messageID)
	}
	cp := *m
	return &cp, nil
}

func (s *memMessageStore) AdvanceStatus(_ context.Context, messageID, to string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.msgs[messageID]
	if !ok {
		return false, nil
	}
	for _, st := range msgmodel.StatusBefore(to) {
		if m.Status == st {
			m.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (s *memMessageStore) status(messageID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.msgs[messageID]; ok {
		return m.Status
	}
	return ""
}

type memNotificationStore struct {
	mu   sync.Mutex
	recs []*notifmodel.Notification
}

func newMemNotificationStore() *memNotificationStore {
	return &memNotificationStore{}
}

func (s *memNotificationStore) Create(_ context.Context, n *notifmodel.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *n
	s.recs = append(s.recs, &cp)
	return nil
}

func (s *memNotificationStore) HasUndismissedLike(_ context.Context, sender, receiver, targetRef string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.recs {
		if r.Type == notifmodel.TypeLike && !r.IsRead &&
			r.Sender == sender && r.Receiver == receiver && r.TargetRef == targetRef {
			return true, nil
		}
	}
	return false, nil
}

func (s *memNotificationStore) UnreadByReceiver(_ context.Context, receiver string) ([]*notifmodel.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*notifmodel.Notification
	for _, r := range s.recs {
		if r.Receiver == receiver && !r.IsRead {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreateTime.Equal(out[j].CreateTime) {
			return out[i].CreateTime.After(out[j].CreateTime)
		}
		return out[i].NotificationID > out[j].NotificationID
	})
	return out, nil
}

func (s *memNotificationStore) MarkRead(_ context.Context, receiver string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	for _, r := range s.recs {
		if r.Receiver == receiver && set[r.NotificationID] {
			r.IsRead = true
		}
	}
	return nil
}

func (s *memNotificationStore) countFor(receiver string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.recs {
		if r.Receiver == receiver {
			n++
		}
	}
	return n
}

// ===== test helpers =====

func newTestClient(userID string) *Client {
	return NewClient("conn-"+userID, userID, nil, 16)
}

func recvFrame(t *testing.T, c *Client, timeout time.Duration) *Frame {
	t.Helper()
	select {
	case payload := <-c.Send:
		f, err := ParseFrame(payload)
		if err != nil {
			t.Fatalf("parse frame: %v", err)
		}
		return f
	case <-time.After(timeout):
		t.Fatalf("no frame for user %s within %v", c.UserID, timeout)
		return nil
	}
}

func tryRecvFrame(t *testing.T, c *Client) *Frame {
	t.Helper()
	select {
	case payload := <-c.Send:
		f, err := ParseFrame(payload)
		if err != nil {
			t.Fatalf("parse frame: %v", err)
		}
		return f
	default:
		return nil
	}
}
