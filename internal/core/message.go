package core

import "time"

// MessageStatus is the delivery lifecycle state of a message.
type MessageStatus string

const (
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
)

// statusRank orders statuses so transitions can only move forward.
var statusRank = map[MessageStatus]int{
	StatusSent:      0,
	StatusDelivered: 1,
	StatusRead:      2,
}

// Before reports whether s comes strictly earlier in the lifecycle than other.
func (s MessageStatus) Before(other MessageStatus) bool {
	return statusRank[s] < statusRank[other]
}

// Message is the domain model for a chat message as the core sees it.
// The record itself is owned by the persistence gateway; the core only
// drives Status, DeliveredAt and ReadAt.
type Message struct {
	ID          string
	From        string
	To          string
	GroupID     string
	Body        string
	Status      MessageStatus
	CreatedAt   time.Time
	DeliveredAt *time.Time
	ReadAt      *time.Time
}
