package http

import (
	"encoding/json"

	"github.com/beamlabs/beamchat-server/internal/core"
	"github.com/beamlabs/beamchat-server/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeJoin:
		var join proto.JoinData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		if join.UserID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "userId is required"}, nil
		}
		return &core.Command{Kind: core.CommandJoin, UserID: join.UserID}, nil, nil

	case proto.InboundTypeJoinGroup, proto.InboundTypeLeaveGroup:
		var group proto.GroupData
		if err := json.Unmarshal(inbound.Data, &group); err != nil {
			return nil, nil, err
		}
		if group.GroupID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "groupId is required"}, nil
		}
		kind := core.CommandJoinGroup
		if inbound.Type == proto.InboundTypeLeaveGroup {
			kind = core.CommandLeaveGroup
		}
		return &core.Command{Kind: kind, GroupID: group.GroupID}, nil, nil

	case proto.InboundTypePrivateMessage:
		var data proto.PrivateMessageData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.To == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "to is required"}, nil
		}
		return &core.Command{
			Kind:    core.CommandPrivateMessage,
			Message: messageFromPayload(data.Message, data.To, ""),
		}, nil, nil

	case proto.InboundTypeGroupMessage:
		var data proto.GroupMessageData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.GroupID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "groupId is required"}, nil
		}
		return &core.Command{
			Kind:    core.CommandGroupMessage,
			GroupID: data.GroupID,
			Message: messageFromPayload(data.Message, "", data.GroupID),
		}, nil, nil

	case proto.InboundTypeMessageDeleted:
		var data proto.MessageDeletedData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.MessageID == "" || data.To == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "messageId and to are required"}, nil
		}
		return &core.Command{
			Kind:      core.CommandMessageDeleted,
			MessageID: data.MessageID,
			UserID:    data.To,
		}, nil, nil

	case proto.InboundTypeGroupMessageDeleted:
		var data proto.GroupMessageDeletedData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.MessageID == "" || data.GroupID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "messageId and groupId are required"}, nil
		}
		return &core.Command{
			Kind:      core.CommandGroupMessageDeleted,
			MessageID: data.MessageID,
			GroupID:   data.GroupID,
		}, nil, nil

	case proto.InboundTypeMessageRead:
		var data proto.MessageReadData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.MessageID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "messageId is required"}, nil
		}
		return &core.Command{Kind: core.CommandMessageRead, MessageID: data.MessageID}, nil, nil

	case proto.InboundTypeNotificationDeleted:
		var data proto.NotificationDeletedData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.RecipientID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "recipientId is required"}, nil
		}
		return &core.Command{
			Kind:           core.CommandNotificationDeleted,
			UserID:         data.RecipientID,
			NotificationID: data.NotificationID,
		}, nil, nil

	case proto.InboundTypeAllNotificationsDeleted:
		var data proto.NotificationDeletedData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.RecipientID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "recipientId is required"}, nil
		}
		return &core.Command{Kind: core.CommandAllNotificationsDeleted, UserID: data.RecipientID}, nil, nil

	case proto.InboundTypeGetOnlineUsers:
		return &core.Command{Kind: core.CommandGetOnlineUsers}, nil, nil

	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

func messageFromPayload(p proto.MessagePayload, to, groupID string) core.Message {
	msg := core.Message{
		ID:      p.ID,
		To:      to,
		GroupID: groupID,
		Body:    p.Body,
	}
	if p.CreatedAt != nil {
		msg.CreatedAt = *p.CreatedAt
	}
	return msg
}

func payloadFromMessage(m *core.Message) proto.MessagePayload {
	p := proto.MessagePayload{
		ID:          m.ID,
		Body:        m.Body,
		Status:      string(m.Status),
		DeliveredAt: m.DeliveredAt,
		ReadAt:      m.ReadAt,
	}
	if !m.CreatedAt.IsZero() {
		created := m.CreatedAt
		p.CreatedAt = &created
	}
	return p
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventUserStatusChange:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventUserStatusChange,
			Data: proto.UserStatusData{
				UserID:     event.Presence.UserID,
				Status:     event.Presence.Status,
				LastActive: event.Presence.LastActive,
			},
		}
	case core.EventOnlineUsers:
		users := event.Users
		if users == nil {
			users = []string{}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventOnlineUsers,
			Data:  users,
		}
	case core.EventPrivateMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventPrivateMessage,
			Data: proto.PrivateMessageData{
				To:      event.To,
				From:    event.From,
				Message: payloadFromMessage(event.Message),
			},
		}
	case core.EventGroupMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventGroupMessage,
			Data: proto.GroupMessageData{
				GroupID: event.GroupID,
				Message: payloadFromMessage(event.Message),
			},
		}
	case core.EventMessageDeleted:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventMessageDeleted,
			Data: proto.MessageDeletedData{
				MessageID: event.MessageID,
				To:        event.To,
				From:      event.From,
			},
		}
	case core.EventGroupMessageDeleted:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventGroupMessageDeleted,
			Data: proto.GroupMessageDeletedData{
				MessageID: event.MessageID,
				GroupID:   event.GroupID,
			},
		}
	case core.EventMessageStatusUpdate:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventMessageStatusUpdate,
			Data: proto.StatusUpdateData{
				MessageID: event.Update.MessageID,
				Status:    string(event.Update.Status),
				ReadAt:    event.Update.ReadAt,
			},
		}
	case core.EventNotificationDeleted:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNotificationDeleted,
			Data: proto.NotificationDeletedData{
				NotificationID: event.NotificationID,
				RecipientID:    event.To,
			},
		}
	case core.EventAllNotificationsDeleted:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventAllNotificationsDeleted,
			Data: proto.NotificationDeletedData{
				RecipientID: event.To,
			},
		}
	case core.EventError:
		return proto.Outbound{
			Type: proto.OutboundTypeError,
			Error: &proto.Error{
				Code: event.Error.Code,
				Msg:  event.Error.Message,
			},
		}
	default:
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: "internal", Msg: "unmapped event"},
		}
	}
}
