package core

// Dispatcher is the fan-out layer: it turns a domain event into targeted
// emissions to channel members, a single client, or every connection.
// It never buffers for connections that join later. All methods must be
// called from the hub goroutine.
type Dispatcher struct {
	router  *Router
	clients map[*Client]struct{}
}

// NewDispatcher constructs a dispatcher over the given router.
func NewDispatcher(router *Router) *Dispatcher {
	return &Dispatcher{
		router:  router,
		clients: make(map[*Client]struct{}),
	}
}

// Track registers a connection for broadcast targeting.
func (d *Dispatcher) Track(c *Client) {
	d.clients[c] = struct{}{}
}

// Forget removes a connection from broadcast targeting.
func (d *Dispatcher) Forget(c *Client) {
	delete(d.clients, c)
}

// Broadcast emits the event to every tracked connection.
func (d *Dispatcher) Broadcast(event *Event) {
	for c := range d.clients {
		d.send(c, event)
	}
}

// ToChannels emits the event to the union of the named channels'
// memberships, each connection at most once.
func (d *Dispatcher) ToChannels(event *Event, names ...string) {
	for c := range d.router.collect(names...) {
		d.send(c, event)
	}
}

// ToClient emits the event to a single connection.
func (d *Dispatcher) ToClient(c *Client, event *Event) {
	d.send(c, event)
}

func (d *Dispatcher) send(c *Client, event *Event) {
	select {
	case c.Events <- event:
	default:
		// Drop if slow consumer.
	}
}
