package core

// Channel naming is deterministic so a message to a user or group resolves
// to exactly one channel.

// DirectChannel returns the channel name every connection of a user
// subscribes to on join.
func DirectChannel(userID string) string {
	return "user:" + userID
}

// GroupChannel returns the channel name for a group.
func GroupChannel(groupID string) string {
	return "group:" + groupID
}

// Router manages membership of connections in logical channels,
// independent of presence. All methods must be called from the hub
// goroutine.
type Router struct {
	channels map[string]map[*Client]struct{}
	byClient map[*Client]map[string]struct{}
}

// NewRouter constructs a router with no channels.
func NewRouter() *Router {
	return &Router{
		channels: make(map[string]map[*Client]struct{}),
		byClient: make(map[*Client]map[string]struct{}),
	}
}

// Subscribe adds c to the named channel. Idempotent; returns true if newly added.
func (r *Router) Subscribe(c *Client, name string) bool {
	members, ok := r.channels[name]
	if !ok {
		members = make(map[*Client]struct{})
		r.channels[name] = members
	}
	if _, exists := members[c]; exists {
		return false
	}
	members[c] = struct{}{}

	names, ok := r.byClient[c]
	if !ok {
		names = make(map[string]struct{})
		r.byClient[c] = names
	}
	names[name] = struct{}{}
	return true
}

// Unsubscribe removes c from the named channel. Idempotent; returns true if removed.
func (r *Router) Unsubscribe(c *Client, name string) bool {
	members, ok := r.channels[name]
	if !ok {
		return false
	}
	if _, exists := members[c]; !exists {
		return false
	}
	delete(members, c)
	if len(members) == 0 {
		delete(r.channels, name)
	}
	if names, ok := r.byClient[c]; ok {
		delete(names, name)
		if len(names) == 0 {
			delete(r.byClient, c)
		}
	}
	return true
}

// Members returns the connections currently subscribed to the named channel.
func (r *Router) Members(name string) []*Client {
	members := r.channels[name]
	out := make([]*Client, 0, len(members))
	for c := range members {
		out = append(out, c)
	}
	return out
}

// DropClient removes c from every channel it belongs to. Called eagerly on
// disconnect so channels never hold a stale handle.
func (r *Router) DropClient(c *Client) {
	for name := range r.byClient[c] {
		if members, ok := r.channels[name]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(r.channels, name)
			}
		}
	}
	delete(r.byClient, c)
}

// collect resolves the union of members across the given channels,
// deduplicated, at the instant of the call.
func (r *Router) collect(names ...string) map[*Client]struct{} {
	out := make(map[*Client]struct{})
	for _, name := range names {
		for c := range r.channels[name] {
			out[c] = struct{}{}
		}
	}
	return out
}
