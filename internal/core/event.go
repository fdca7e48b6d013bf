package core

import "time"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventUserStatusChange notifies everyone that a user went online or offline.
	EventUserStatusChange EventKind = iota
	// EventOnlineUsers delivers the full online-user snapshot.
	EventOnlineUsers
	// EventPrivateMessage delivers a direct message to both direct channels.
	EventPrivateMessage
	// EventGroupMessage delivers a message to a group channel.
	EventGroupMessage
	// EventMessageDeleted announces a deleted direct message.
	EventMessageDeleted
	// EventGroupMessageDeleted announces a deleted group message.
	EventGroupMessageDeleted
	// EventMessageStatusUpdate tells a sender their message moved forward.
	EventMessageStatusUpdate
	// EventNotificationDeleted announces a deleted notification.
	EventNotificationDeleted
	// EventAllNotificationsDeleted announces a cleared notification list.
	EventAllNotificationsDeleted
	// EventError notifies a client about a domain error.
	EventError
)

// PresenceChange describes one user going online or offline.
type PresenceChange struct {
	UserID     string
	Status     string // "online" or "offline"
	LastActive time.Time
}

// StatusUpdate describes a delivery-state transition of a message.
type StatusUpdate struct {
	MessageID string
	SenderID  string
	Status    MessageStatus
	ReadAt    *time.Time
}

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind EventKind

	Presence *PresenceChange // user_status_change
	Users    []string        // online_users snapshot
	Message  *Message        // message events
	From     string
	To       string
	GroupID  string
	// MessageID and NotificationID name the subject of deletion events.
	MessageID      string
	NotificationID string
	Update         *StatusUpdate // message_status_update
	Error          *CoreError
}
