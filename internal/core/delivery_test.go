package core

import (
	"testing"
	"time"
)

func testDelivery(at time.Time) *Delivery {
	return NewDelivery(nil, nil, func() time.Time { return at })
}

func TestEvaluateSendOnlineReceiver(t *testing.T) {
	at := time.Now()
	d := testDelivery(at)

	msg := Message{ID: "m1", From: "alice", To: "bob"}
	d.EvaluateSend(&msg, true)

	if msg.Status != StatusDelivered {
		t.Fatalf("status = %q, want delivered", msg.Status)
	}
	if msg.DeliveredAt == nil || !msg.DeliveredAt.Equal(at) {
		t.Fatalf("deliveredAt = %v, want %v", msg.DeliveredAt, at)
	}
}

func TestEvaluateSendOfflineReceiver(t *testing.T) {
	d := testDelivery(time.Now())

	msg := Message{ID: "m1", From: "alice", To: "bob"}
	d.EvaluateSend(&msg, false)

	if msg.Status != StatusSent {
		t.Fatalf("status = %q, want sent", msg.Status)
	}
	if msg.DeliveredAt != nil {
		t.Fatal("deliveredAt must stay unset")
	}
}

func TestEvaluateSendNeverMovesBackward(t *testing.T) {
	d := testDelivery(time.Now())

	msg := Message{ID: "m1", Status: StatusRead}
	d.EvaluateSend(&msg, true)

	if msg.Status != StatusRead {
		t.Fatalf("status = %q, read must not regress", msg.Status)
	}
}

func TestStatusOrdering(t *testing.T) {
	if !StatusSent.Before(StatusDelivered) || !StatusDelivered.Before(StatusRead) {
		t.Fatal("lifecycle order broken")
	}
	if StatusRead.Before(StatusSent) || StatusDelivered.Before(StatusDelivered) {
		t.Fatal("backward or equal transitions must not be ordered before")
	}
}
