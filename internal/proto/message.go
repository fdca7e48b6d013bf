package proto

import (
	"encoding/json"
	"time"
)

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Wire names follow the original client contract; several carry spaces.
const (
	InboundTypeJoin                    = "join"
	InboundTypeJoinGroup               = "join group"
	InboundTypeLeaveGroup              = "leave group"
	InboundTypePrivateMessage          = "private message"
	InboundTypeGroupMessage            = "group message"
	InboundTypeMessageDeleted          = "message deleted"
	InboundTypeGroupMessageDeleted     = "group message deleted"
	InboundTypeMessageRead             = "message_read"
	InboundTypeNotificationDeleted     = "notification_deleted"
	InboundTypeAllNotificationsDeleted = "all_notifications_deleted"
	InboundTypeGetOnlineUsers          = "get_online_users"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventUserStatusChange        = "user_status_change"
	EventOnlineUsers             = "online_users"
	EventPrivateMessage          = "private message"
	EventGroupMessage            = "group message"
	EventMessageDeleted          = "message deleted"
	EventGroupMessageDeleted     = "group message deleted"
	EventMessageStatusUpdate     = "message_status_update"
	EventNotificationDeleted     = "notification_deleted"
	EventAllNotificationsDeleted = "all_notifications_deleted"
)

// JoinData registers the user's presence.
type JoinData struct {
	UserID string `json:"userId"`
}

// GroupData toggles membership in a group channel.
type GroupData struct {
	GroupID string `json:"groupId"`
}

// MessagePayload is the message record as exchanged with clients. The
// record was already created by the REST side; the core only computes its
// delivery status.
type MessagePayload struct {
	ID          string     `json:"id"`
	Body        string     `json:"body,omitempty"`
	Status      string     `json:"status,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
	ReadAt      *time.Time `json:"readAt,omitempty"`
}

// PrivateMessageData carries a direct message.
type PrivateMessageData struct {
	To      string         `json:"to"`
	From    string         `json:"from,omitempty"`
	Message MessagePayload `json:"message"`
}

// GroupMessageData carries a group message.
type GroupMessageData struct {
	GroupID string         `json:"groupId"`
	Message MessagePayload `json:"message"`
}

// MessageDeletedData announces a deleted direct message.
type MessageDeletedData struct {
	MessageID string `json:"messageId"`
	To        string `json:"to"`
	From      string `json:"from,omitempty"`
}

// GroupMessageDeletedData announces a deleted group message.
type GroupMessageDeletedData struct {
	MessageID string `json:"messageId"`
	GroupID   string `json:"groupId"`
}

// MessageReadData acknowledges that a message was viewed.
type MessageReadData struct {
	MessageID string `json:"messageId"`
}

// NotificationDeletedData announces a deleted notification.
type NotificationDeletedData struct {
	NotificationID string `json:"notificationId,omitempty"`
	RecipientID    string `json:"recipientId"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// UserStatusData notifies that a user went online or offline.
type UserStatusData struct {
	UserID     string    `json:"userId"`
	Status     string    `json:"status"`
	LastActive time.Time `json:"lastActive"`
}

// StatusUpdateData notifies a sender about a delivery-state transition.
type StatusUpdateData struct {
	MessageID string     `json:"messageId"`
	Status    string     `json:"status"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
