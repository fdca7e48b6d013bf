package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// User represents a user as the gateway stores it. The real-time core only
// ever touches the presence columns; the rest belongs to the REST side.
type User struct {
	ID         string
	Username   string
	IsOnline   bool
	LastActive time.Time
	CreatedAt  time.Time
}

// MessageStatus is the persisted delivery status of a message.
type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusRead      MessageStatus = "read"
)

// Message represents a persisted chat message. GroupID is empty for direct
// messages; ReceiverID is empty for group messages.
type Message struct {
	ID          string
	SenderID    string
	ReceiverID  string
	GroupID     string
	Body        string
	Status      MessageStatus
	CreatedAt   time.Time
	DeliveredAt *time.Time
	ReadAt      *time.Time
}

// Notification represents a persisted notification record.
type Notification struct {
	ID          string
	RecipientID string
	Kind        string
	Body        string
	CreatedAt   time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user record.
	CreateUser(ctx context.Context, username string) (*User, error)

	// GetUser retrieves a user by ID. Returns ErrNotFound if absent.
	GetUser(ctx context.Context, id string) (*User, error)

	// SetUserPresence updates the online flag and last-active timestamp.
	// Updating an unknown user is not an error; the row simply does not exist yet.
	SetUserPresence(ctx context.Context, id string, online bool, lastActive time.Time) error
}

// MessageStore handles message persistence. The core only mutates the
// status columns; message bodies are created by the REST collaborator.
type MessageStore interface {
	// CreateMessage persists a message. Assigns an ID when empty and
	// defaults the status to sent.
	CreateMessage(ctx context.Context, msg *Message) error

	// GetMessage retrieves a message by ID. Returns ErrNotFound if absent.
	GetMessage(ctx context.Context, id string) (*Message, error)

	// UpdateMessageStatus sets the status and, when non-nil, the
	// delivered-at timestamp.
	UpdateMessageStatus(ctx context.Context, id string, status MessageStatus, deliveredAt *time.Time) error

	// MarkMessageRead flips a message to read with the given timestamp.
	// Returns false when the message was already read (or missing), so the
	// transition stays idempotent.
	MarkMessageRead(ctx context.Context, id string, readAt time.Time) (bool, error)
}

// NotificationStore handles notification persistence.
type NotificationStore interface {
	// CreateNotification persists a notification. Assigns an ID when empty.
	CreateNotification(ctx context.Context, n *Notification) error

	// ListNotifications lists notifications for a recipient, newest first.
	ListNotifications(ctx context.Context, recipientID string) ([]*Notification, error)

	// DeleteNotification removes a single notification.
	DeleteNotification(ctx context.Context, id string) error

	// DeleteAllNotifications removes every notification for a recipient.
	DeleteAllNotifications(ctx context.Context, recipientID string) error
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	MessageStore
	NotificationStore

	// Close closes the underlying database connection.
	Close() error
}
