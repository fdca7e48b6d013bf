package core

import (
	"testing"
	"time"
)

func TestPresenceJoinSupersedesPriorHandle(t *testing.T) {
	p := NewPresence()
	now := time.Now()

	c1 := NewClient("c1", "alice")
	c2 := NewClient("c2", "alice")

	if prev := p.Join("alice", c1, now); prev != nil {
		t.Fatalf("expected no superseded client, got %v", prev.ID)
	}
	prev := p.Join("alice", c2, now.Add(time.Second))
	if prev != c1 {
		t.Fatalf("expected c1 to be superseded")
	}
	if !p.IsOnline("alice") {
		t.Fatal("alice should be online")
	}
}

func TestPresenceStaleLeaveIsNoOp(t *testing.T) {
	p := NewPresence()
	now := time.Now()

	c1 := NewClient("c1", "alice")
	c2 := NewClient("c2", "alice")

	p.Join("alice", c1, now)
	p.Join("alice", c2, now)

	// A slow disconnect of the superseded connection must not evict the
	// newer session.
	if p.Leave("alice", c1, now.Add(time.Second)) {
		t.Fatal("stale leave should be a no-op")
	}
	if !p.IsOnline("alice") {
		t.Fatal("alice should still be online")
	}

	if !p.Leave("alice", c2, now.Add(2*time.Second)) {
		t.Fatal("current handle leave should succeed")
	}
	if p.IsOnline("alice") {
		t.Fatal("alice should be offline")
	}
}

func TestPresenceSnapshotSorted(t *testing.T) {
	p := NewPresence()
	now := time.Now()

	p.Join("carol", NewClient("c3", "carol"), now)
	p.Join("alice", NewClient("c1", "alice"), now)
	p.Join("bob", NewClient("c2", "bob"), now)

	snapshot := p.Snapshot()
	want := []string{"alice", "bob", "carol"}
	if len(snapshot) != len(want) {
		t.Fatalf("snapshot length %d, want %d", len(snapshot), len(want))
	}
	for i, u := range want {
		if snapshot[i] != u {
			t.Fatalf("snapshot[%d] = %q, want %q", i, snapshot[i], u)
		}
	}
}

func TestPresenceLastActiveSurvivesLeave(t *testing.T) {
	p := NewPresence()
	joined := time.Now()
	left := joined.Add(time.Minute)

	c := NewClient("c1", "alice")
	p.Join("alice", c, joined)
	p.Leave("alice", c, left)

	got, ok := p.LastActive("alice")
	if !ok {
		t.Fatal("last active should survive a leave")
	}
	if !got.Equal(left) {
		t.Fatalf("last active = %v, want %v", got, left)
	}
}

func TestPresenceTouchIgnoresStaleHandle(t *testing.T) {
	p := NewPresence()
	now := time.Now()

	c1 := NewClient("c1", "alice")
	c2 := NewClient("c2", "alice")
	p.Join("alice", c1, now)
	p.Join("alice", c2, now.Add(time.Second))

	p.Touch("alice", c1, now.Add(time.Hour))

	got, _ := p.LastActive("alice")
	if got.Equal(now.Add(time.Hour)) {
		t.Fatal("stale handle must not record activity")
	}
}
