package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoin registers presence and subscribes the user's direct channel.
	CommandJoin CommandKind = iota
	// CommandJoinGroup subscribes the connection to a group channel.
	CommandJoinGroup
	// CommandLeaveGroup unsubscribes the connection from a group channel.
	CommandLeaveGroup
	// CommandPrivateMessage sends a direct message to another user.
	CommandPrivateMessage
	// CommandGroupMessage sends a message to a group channel.
	CommandGroupMessage
	// CommandMessageDeleted announces a deleted direct message.
	CommandMessageDeleted
	// CommandGroupMessageDeleted announces a deleted group message.
	CommandGroupMessageDeleted
	// CommandMessageRead acknowledges that a message was viewed.
	CommandMessageRead
	// CommandNotificationDeleted announces a deleted notification.
	CommandNotificationDeleted
	// CommandAllNotificationsDeleted announces a cleared notification list.
	CommandAllNotificationsDeleted
	// CommandGetOnlineUsers requests the current online snapshot.
	CommandGetOnlineUsers
)

// Command represents an action requested by a client.
type Command struct {
	Kind CommandKind

	// UserID is the join target, or the affected recipient for
	// notification commands.
	UserID string
	// GroupID names the group for group commands.
	GroupID string
	// Message carries the payload for message commands.
	Message Message
	// MessageID names the message for deletions and read receipts.
	MessageID string
	// NotificationID names the notification for deletions.
	NotificationID string
}
