package core

import (
	"sort"
	"time"

	"github.com/samber/lo"
)

type presenceEntry struct {
	client     *Client
	lastActive time.Time
}

// Presence is the authoritative registry of which users currently hold an
// open connection. At most one entry exists per user; a newer join
// supersedes the previous connection handle. All methods must be called
// from the hub goroutine.
type Presence struct {
	entries map[string]*presenceEntry
	// lastActive outlives the entry so "last seen" survives a disconnect
	// for the process lifetime.
	lastActive map[string]time.Time
}

// NewPresence constructs an empty registry.
func NewPresence() *Presence {
	return &Presence{
		entries:    make(map[string]*presenceEntry),
		lastActive: make(map[string]time.Time),
	}
}

// Join registers c as the current handle for userID, overwriting any prior
// entry. Returns the superseded client, or nil if the user was offline.
func (p *Presence) Join(userID string, c *Client, now time.Time) *Client {
	var prev *Client
	if entry, ok := p.entries[userID]; ok && entry.client != c {
		prev = entry.client
	}
	p.entries[userID] = &presenceEntry{client: c, lastActive: now}
	p.lastActive[userID] = now
	return prev
}

// Leave removes the entry only if c is still the current handle for userID.
// A stale disconnect of a superseded connection is a no-op. Returns whether
// the user actually went offline.
func (p *Presence) Leave(userID string, c *Client, now time.Time) bool {
	entry, ok := p.entries[userID]
	if !ok || entry.client != c {
		return false
	}
	delete(p.entries, userID)
	p.lastActive[userID] = now
	return true
}

// Touch records activity for userID, but only when c is the current handle.
func (p *Presence) Touch(userID string, c *Client, now time.Time) {
	entry, ok := p.entries[userID]
	if !ok || entry.client != c {
		return
	}
	entry.lastActive = now
	p.lastActive[userID] = now
}

// IsOnline reports whether userID has a live connection.
func (p *Presence) IsOnline(userID string) bool {
	_, ok := p.entries[userID]
	return ok
}

// Snapshot returns the sorted set of online user IDs.
func (p *Presence) Snapshot() []string {
	users := lo.Keys(p.entries)
	sort.Strings(users)
	return users
}

// LastActive returns the last recorded activity for userID, online or not.
func (p *Presence) LastActive(userID string) (time.Time, bool) {
	t, ok := p.lastActive[userID]
	return t, ok
}
