package core

// Client is one real-time connection as seen by the core layer. A user may
// hold several clients over time; the presence registry tracks which one is
// current.
type Client struct {
	// ID is the connection handle, unique per connection.
	ID string
	// UserID is the authenticated user behind the connection.
	UserID string

	Commands chan *Command
	Events   chan *Event
}

// NewClient constructs a client with initialized channels.
func NewClient(id, userID string) *Client {
	return &Client{
		ID:       id,
		UserID:   userID,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 32),
	}
}
