package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/beamlabs/beamchat-server/internal/store"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func mustNoEvent(t *testing.T, ch <-chan *Event, kind EventKind) {
	t.Helper()

	deadline := time.Now().Add(300 * time.Millisecond)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event kind %v received: %+v", kind, ev)
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// memStore is an in-memory gateway standing in for the SQLite store.
type memStore struct {
	mu       sync.Mutex
	users    map[string]*store.User
	messages map[string]*store.Message
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]*store.User),
		messages: make(map[string]*store.Message),
	}
}

func (m *memStore) CreateUser(_ context.Context, username string) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &store.User{ID: username, Username: username, CreatedAt: time.Now()}
	m.users[u.ID] = u
	return u, nil
}

func (m *memStore) GetUser(_ context.Context, id string) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *memStore) SetUserPresence(_ context.Context, id string, online bool, lastActive time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.IsOnline = online
		u.LastActive = lastActive
	}
	return nil
}

func (m *memStore) CreateMessage(_ context.Context, msg *store.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg.Status == "" {
		msg.Status = store.MessageStatusSent
	}
	copied := *msg
	m.messages[msg.ID] = &copied
	return nil
}

func (m *memStore) GetMessage(_ context.Context, id string) (*store.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *msg
	return &copied, nil
}

func (m *memStore) UpdateMessageStatus(_ context.Context, id string, status store.MessageStatus, deliveredAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg, ok := m.messages[id]; ok {
		msg.Status = status
		if deliveredAt != nil {
			msg.DeliveredAt = deliveredAt
		}
	}
	return nil
}

func (m *memStore) MarkMessageRead(_ context.Context, id string, readAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[id]
	if !ok || msg.Status == store.MessageStatusRead {
		return false, nil
	}
	msg.Status = store.MessageStatusRead
	msg.ReadAt = &readAt
	return true, nil
}

func (m *memStore) CreateNotification(_ context.Context, _ *store.Notification) error { return nil }

func (m *memStore) ListNotifications(_ context.Context, _ string) ([]*store.Notification, error) {
	return nil, nil
}

func (m *memStore) DeleteNotification(_ context.Context, _ string) error { return nil }

func (m *memStore) DeleteAllNotifications(_ context.Context, _ string) error { return nil }

func (m *memStore) Close() error { return nil }

func (m *memStore) messageStatus(id string) store.MessageStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg, ok := m.messages[id]; ok {
		return msg.Status
	}
	return ""
}
