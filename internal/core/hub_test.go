package core

import (
	"context"
	"testing"
	"time"

	"github.com/beamlabs/beamchat-server/internal/store"
)

func startHub(t *testing.T, st store.Store) *Hub {
	t.Helper()

	hub := NewHub(st, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func joinUser(t *testing.T, hub *Hub, connID, userID string) *Client {
	t.Helper()

	c := NewClient(connID, userID)
	hub.RegisterClient(c)
	c.Commands <- &Command{Kind: CommandJoin, UserID: userID}
	// Consumes the user's own online broadcast as well.
	mustEvent(t, c.Events, EventOnlineUsers)
	return c
}

func TestHubJoinSupersedesDirectChannel(t *testing.T) {
	hub := startHub(t, nil)

	c1 := joinUser(t, hub, "conn-1", "alice")
	c2 := joinUser(t, hub, "conn-2", "alice")
	bob := joinUser(t, hub, "conn-3", "bob")

	bob.Commands <- &Command{
		Kind:    CommandPrivateMessage,
		Message: Message{ID: "m1", To: "alice", Body: "hi"},
	}

	ev := mustEvent(t, c2.Events, EventPrivateMessage)
	if ev.Message.To != "alice" || ev.Message.From != "bob" {
		t.Fatalf("unexpected message event: %+v", ev.Message)
	}
	// The superseded handle left the direct channel.
	mustNoEvent(t, c1.Events, EventPrivateMessage)
}

func TestHubStaleDisconnectKeepsUserOnline(t *testing.T) {
	hub := startHub(t, nil)

	c1 := joinUser(t, hub, "conn-1", "alice")
	c2 := joinUser(t, hub, "conn-2", "alice")
	bob := joinUser(t, hub, "conn-3", "bob")

	// Old connection disconnects after the newer join; alice stays online.
	hub.UnregisterClient(c1)
	mustNoEvent(t, bob.Events, EventUserStatusChange)

	users, err := hub.OnlineUsers(context.Background())
	if err != nil {
		t.Fatalf("online users: %v", err)
	}
	if len(users) != 2 || users[0] != "alice" || users[1] != "bob" {
		t.Fatalf("unexpected snapshot: %v", users)
	}

	hub.UnregisterClient(c2)
	ev := mustEvent(t, bob.Events, EventUserStatusChange)
	if ev.Presence.UserID != "alice" || ev.Presence.Status != "offline" {
		t.Fatalf("unexpected status change: %+v", ev.Presence)
	}
}

func TestHubOfflineBroadcastCarriesLastActive(t *testing.T) {
	hub := startHub(t, nil)

	before := time.Now()
	bob := joinUser(t, hub, "conn-1", "bob")
	alice := joinUser(t, hub, "conn-2", "alice")

	// Drain alice's join broadcast from bob's queue first.
	mustEvent(t, bob.Events, EventOnlineUsers)

	hub.UnregisterClient(alice)

	ev := mustEvent(t, bob.Events, EventUserStatusChange)
	if ev.Presence.Status != "offline" {
		t.Fatalf("expected offline status, got %q", ev.Presence.Status)
	}
	if ev.Presence.LastActive.Before(before) {
		t.Fatalf("last active %v should not predate activity at %v", ev.Presence.LastActive, before)
	}

	snapshot := mustEvent(t, bob.Events, EventOnlineUsers)
	for _, u := range snapshot.Users {
		if u == "alice" {
			t.Fatal("alice should be gone from the snapshot")
		}
	}
}

func TestHubDeliveryLifecycle(t *testing.T) {
	st := newMemStore()
	ctx := context.Background()
	if err := st.CreateMessage(ctx, &store.Message{ID: "m1", SenderID: "alice", ReceiverID: "bob", Body: "one"}); err != nil {
		t.Fatal(err)
	}
	if err := st.CreateMessage(ctx, &store.Message{ID: "m2", SenderID: "alice", ReceiverID: "bob", Body: "two"}); err != nil {
		t.Fatal(err)
	}

	hub := startHub(t, st)

	alice := joinUser(t, hub, "conn-a", "alice")
	bob := joinUser(t, hub, "conn-b", "bob")

	// Receiver online: delivered before the event reaches any channel.
	alice.Commands <- &Command{Kind: CommandPrivateMessage, Message: Message{ID: "m1", To: "bob", Body: "one"}}
	ev := mustEvent(t, bob.Events, EventPrivateMessage)
	if ev.Message.Status != StatusDelivered {
		t.Fatalf("expected delivered, got %q", ev.Message.Status)
	}
	if ev.Message.DeliveredAt == nil {
		t.Fatal("delivered message must carry deliveredAt")
	}
	// Sender's own channel sees the outgoing message too.
	mustEvent(t, alice.Events, EventPrivateMessage)

	// Receiver offline: stays sent.
	hub.UnregisterClient(bob)
	mustEvent(t, alice.Events, EventUserStatusChange)

	alice.Commands <- &Command{Kind: CommandPrivateMessage, Message: Message{ID: "m2", To: "bob", Body: "two"}}
	ev = mustEvent(t, alice.Events, EventPrivateMessage)
	if ev.Message.Status != StatusSent {
		t.Fatalf("expected sent, got %q", ev.Message.Status)
	}
	if ev.Message.DeliveredAt != nil {
		t.Fatal("undelivered message must not carry deliveredAt")
	}

	// Receiver reconnects and reads m1; only the sender is notified, and
	// only about m1.
	bob2 := joinUser(t, hub, "conn-b2", "bob")
	bob2.Commands <- &Command{Kind: CommandMessageRead, MessageID: "m1"}

	update := mustEvent(t, alice.Events, EventMessageStatusUpdate)
	if update.Update.MessageID != "m1" || update.Update.Status != StatusRead {
		t.Fatalf("unexpected status update: %+v", update.Update)
	}
	if update.Update.ReadAt == nil {
		t.Fatal("read update must carry readAt")
	}
	if got := st.messageStatus("m1"); got != store.MessageStatusRead {
		t.Fatalf("persisted status = %q, want read", got)
	}

	// Reading again is a no-op.
	bob2.Commands <- &Command{Kind: CommandMessageRead, MessageID: "m1"}
	mustNoEvent(t, alice.Events, EventMessageStatusUpdate)
}

func TestHubReadReceiptFromNonReceiverDropped(t *testing.T) {
	st := newMemStore()
	if err := st.CreateMessage(context.Background(), &store.Message{ID: "m1", SenderID: "alice", ReceiverID: "bob", Body: "hi"}); err != nil {
		t.Fatal(err)
	}

	hub := startHub(t, st)
	alice := joinUser(t, hub, "conn-a", "alice")
	carol := joinUser(t, hub, "conn-c", "carol")

	carol.Commands <- &Command{Kind: CommandMessageRead, MessageID: "m1"}

	mustNoEvent(t, alice.Events, EventMessageStatusUpdate)
	if got := st.messageStatus("m1"); got != store.MessageStatusSent {
		t.Fatalf("persisted status = %q, want sent", got)
	}
}

func TestHubGroupChannelFanout(t *testing.T) {
	hub := startHub(t, nil)

	alice := joinUser(t, hub, "conn-a", "alice")
	bob := joinUser(t, hub, "conn-b", "bob")
	carol := joinUser(t, hub, "conn-c", "carol")

	alice.Commands <- &Command{Kind: CommandJoinGroup, GroupID: "g1"}
	bob.Commands <- &Command{Kind: CommandJoinGroup, GroupID: "g1"}
	// The snapshot reply proves bob's group join has been processed.
	bob.Commands <- &Command{Kind: CommandGetOnlineUsers}
	mustEvent(t, bob.Events, EventOnlineUsers)

	alice.Commands <- &Command{Kind: CommandGroupMessage, GroupID: "g1", Message: Message{ID: "m1", Body: "hello"}}

	ev := mustEvent(t, bob.Events, EventGroupMessage)
	if ev.GroupID != "g1" || ev.Message.From != "alice" {
		t.Fatalf("unexpected group event: %+v", ev)
	}
	mustNoEvent(t, carol.Events, EventGroupMessage)

	bob.Commands <- &Command{Kind: CommandLeaveGroup, GroupID: "g1"}
	bob.Commands <- &Command{Kind: CommandGetOnlineUsers}
	mustEvent(t, bob.Events, EventOnlineUsers)
	alice.Commands <- &Command{Kind: CommandGroupMessage, GroupID: "g1", Message: Message{ID: "m2", Body: "again"}}
	mustNoEvent(t, bob.Events, EventGroupMessage)
}

func TestHubDeletionFanout(t *testing.T) {
	hub := startHub(t, nil)

	alice := joinUser(t, hub, "conn-a", "alice")
	bob := joinUser(t, hub, "conn-b", "bob")
	carol := joinUser(t, hub, "conn-c", "carol")

	alice.Commands <- &Command{Kind: CommandMessageDeleted, MessageID: "m1", UserID: "bob"}

	ev := mustEvent(t, bob.Events, EventMessageDeleted)
	if ev.MessageID != "m1" || ev.From != "alice" || ev.To != "bob" {
		t.Fatalf("unexpected deletion event: %+v", ev)
	}
	mustEvent(t, alice.Events, EventMessageDeleted)
	mustNoEvent(t, carol.Events, EventMessageDeleted)

	alice.Commands <- &Command{Kind: CommandNotificationDeleted, UserID: "bob", NotificationID: "n1"}
	nev := mustEvent(t, bob.Events, EventNotificationDeleted)
	if nev.NotificationID != "n1" {
		t.Fatalf("unexpected notification event: %+v", nev)
	}
	mustNoEvent(t, carol.Events, EventNotificationDeleted)

	alice.Commands <- &Command{Kind: CommandAllNotificationsDeleted, UserID: "bob"}
	mustEvent(t, bob.Events, EventAllNotificationsDeleted)
}

func TestHubJoinMismatchRejected(t *testing.T) {
	hub := startHub(t, nil)

	c := NewClient("conn-1", "alice")
	hub.RegisterClient(c)
	c.Commands <- &Command{Kind: CommandJoin, UserID: "bob"}

	ev := mustEvent(t, c.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %+v", ev)
	}
	if c.UserID == "bob" {
		t.Fatal("client identity must not change")
	}
}

func TestHubGetOnlineUsers(t *testing.T) {
	hub := startHub(t, nil)

	alice := joinUser(t, hub, "conn-a", "alice")
	joinUser(t, hub, "conn-b", "bob")
	mustEvent(t, alice.Events, EventOnlineUsers) // bob's join broadcast

	alice.Commands <- &Command{Kind: CommandGetOnlineUsers}
	ev := mustEvent(t, alice.Events, EventOnlineUsers)
	if len(ev.Users) != 2 || ev.Users[0] != "alice" || ev.Users[1] != "bob" {
		t.Fatalf("unexpected snapshot: %v", ev.Users)
	}
}

func TestHubLastActiveQuery(t *testing.T) {
	hub := startHub(t, nil)

	alice := joinUser(t, hub, "conn-a", "alice")
	hub.UnregisterClient(alice)

	// Give the unregister a moment to land on the hub goroutine.
	deadline := time.Now().Add(2 * time.Second)
	for {
		users, err := hub.OnlineUsers(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if len(users) == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("alice never went offline")
		}
		time.Sleep(10 * time.Millisecond)
	}

	lastActive, ok, err := hub.LastActive(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("last active should be known after a disconnect")
	}
	if lastActive.IsZero() {
		t.Fatal("last active should be set")
	}

	if _, ok, _ := hub.LastActive(context.Background(), "stranger"); ok {
		t.Fatal("unknown user should have no last active")
	}
}
