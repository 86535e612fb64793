package http

import (
	"encoding/json"
	"time"

	"github.com/roomrelay/roomrelay-server/internal/core"
	"github.com/roomrelay/roomrelay-server/internal/proto"
)

// ackedTypes are the inbound events answered with a synchronous ack.
var ackedTypes = map[string]struct{}{
	proto.InboundTypeSendMessage:    {},
	proto.InboundTypeCreateRoom:     {},
	proto.InboundTypeUpdateRoomName: {},
	proto.InboundTypeDeleteRoom:     {},
}

func needsAck(inboundType string) bool {
	_, ok := ackedTypes[inboundType]
	return ok
}

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeSetUsername:
		var data proto.SetUsernameData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		return &core.Command{Kind: core.CommandSetUsername, Name: data.Username}, nil, nil
	case proto.InboundTypeSendMessage:
		var data proto.SendMessageData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.RoomID == "" && data.RecipientID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "roomId or recipientId is required"}, nil
		}
		return &core.Command{
			Kind: core.CommandSendMessage,
			Message: core.Message{
				RoomID:      data.RoomID,
				RecipientID: data.RecipientID,
				Body:        data.Content,
				Sender:      data.Sender,
				CreatedAt:   time.Now(),
			},
		}, nil, nil
	case proto.InboundTypeJoinRoom:
		var data proto.JoinRoomData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.RoomID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "roomId is required"}, nil
		}
		return &core.Command{
			Kind: core.CommandJoinRoom,
			Room: data.RoomID,
			Name: data.Username,
			Text: data.Text,
		}, nil, nil
	case proto.InboundTypeTyping, proto.InboundTypeStopTyping, proto.InboundTypeLeaveRoom:
		var data proto.RoomIDData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.RoomID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "roomId is required"}, nil
		}
		kind := core.CommandLeaveRoom
		switch inbound.Type {
		case proto.InboundTypeTyping:
			kind = core.CommandTyping
		case proto.InboundTypeStopTyping:
			kind = core.CommandStopTyping
		}
		return &core.Command{Kind: kind, Room: data.RoomID}, nil, nil
	case proto.InboundTypeCreateRoom:
		var data proto.CreateRoomData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		return &core.Command{Kind: core.CommandCreateRoom, Name: data.Name}, nil, nil
	case proto.InboundTypeUpdateRoomName:
		var data proto.UpdateRoomNameData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.RoomID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "roomId is required"}, nil
		}
		return &core.Command{Kind: core.CommandRenameRoom, Room: data.RoomID, Name: data.NewName}, nil, nil
	case proto.InboundTypeDeleteRoom:
		var data proto.RoomIDData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.RoomID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "roomId is required"}, nil
		}
		return &core.Command{Kind: core.CommandDeleteRoom, Room: data.RoomID}, nil, nil
	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventUserList:
		return eventOutbound(proto.EventNameUserList, rosterPayload(event.Users))
	case core.EventRoomMessage:
		return eventOutbound(proto.EventNameRoomMessage, messagePayload(event.Message))
	case core.EventPrivateMessage:
		return eventOutbound(proto.EventNamePrivateMessage, messagePayload(event.Message))
	case core.EventJoined:
		return eventOutbound(proto.EventNameJoiningMessage, proto.JoiningPayload{
			RoomID: event.Room,
			Text:   event.Text,
			UserID: event.UserID,
			Sender: event.Username,
		})
	case core.EventWelcome:
		return eventOutbound(proto.EventNameWelcomeMessage, event.Text)
	case core.EventRoomHistory:
		messages := make([]proto.MessagePayload, 0, len(event.Messages))
		for _, msg := range event.Messages {
			messages = append(messages, messagePayload(msg))
		}
		return eventOutbound(proto.EventNameRoomHistory, proto.RoomHistoryPayload{
			RoomID:   event.Room,
			Messages: messages,
		})
	case core.EventLeft:
		return eventOutbound(proto.EventNameLeavingMessage, proto.LeavingPayload{
			RoomID:  event.Room,
			UserID:  event.UserID,
			Sender:  event.Username,
			Message: event.Text,
		})
	case core.EventTyping:
		return eventOutbound(proto.EventNameTyping, proto.TypingPayload{
			RoomID:   event.Room,
			UserID:   event.UserID,
			Username: event.Username,
		})
	case core.EventStopTyping:
		return eventOutbound(proto.EventNameStopTyping, proto.TypingPayload{
			RoomID: event.Room,
			UserID: event.UserID,
		})
	case core.EventRoomList:
		return eventOutbound(proto.EventNameRoomList, roomListPayload(event.Rooms))
	case core.EventRoomMemberCount:
		return eventOutbound(proto.EventNameRoomMemberCount, proto.MemberCountPayload{
			RoomID: event.Room,
			Count:  event.Count,
		})
	case core.EventError:
		out := proto.Outbound{Type: proto.OutboundTypeEvent, Event: proto.EventNameError}
		if event.Error == nil {
			out.Error = &proto.Error{Code: "unknown", Msg: "unknown error"}
		} else {
			out.Error = &proto.Error{Code: event.Error.Code, Msg: event.Error.Message}
		}
		return out
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func ackOutbound(inboundType string, ack core.Ack) proto.Outbound {
	out := proto.Outbound{Type: proto.OutboundTypeAck, Event: inboundType}
	if ack.Err != nil {
		out.Error = &proto.Error{Code: ack.Err.Code, Msg: ack.Err.Message}
		return out
	}
	switch inboundType {
	case proto.InboundTypeSendMessage:
		out.Data = ack.Body
	case proto.InboundTypeCreateRoom:
		out.Data = proto.CreateRoomAck{RoomID: ack.RoomID, Name: ack.Name}
	case proto.InboundTypeUpdateRoomName:
		out.Data = proto.UpdateRoomNameAck{NewName: ack.Name}
	case proto.InboundTypeDeleteRoom:
		out.Data = proto.DeleteRoomAck{RoomID: ack.RoomID}
	}
	return out
}

func eventOutbound(name string, data any) proto.Outbound {
	return proto.Outbound{Type: proto.OutboundTypeEvent, Event: name, Data: data}
}

func messagePayload(msg core.Message) proto.MessagePayload {
	return proto.MessagePayload{
		RoomID:      msg.RoomID,
		Content:     msg.Body,
		Sender:      msg.Sender,
		SenderID:    msg.SenderID,
		RecipientID: msg.RecipientID,
		TS:          msg.CreatedAt.Unix(),
	}
}

func rosterPayload(users map[string]core.UserInfo) map[string]proto.UserEntry {
	roster := make(map[string]proto.UserEntry, len(users))
	for id, info := range users {
		roster[id] = proto.UserEntry{Username: info.Name, Status: string(info.Status)}
	}
	return roster
}

func roomListPayload(rooms map[string]core.RoomInfo) map[string]proto.RoomEntry {
	list := make(map[string]proto.RoomEntry, len(rooms))
	for id, info := range rooms {
		messages := make([]proto.MessagePayload, 0, len(info.Messages))
		for _, msg := range info.Messages {
			messages = append(messages, messagePayload(msg))
		}
		list[id] = proto.RoomEntry{Name: info.Name, Messages: messages}
	}
	return list
}
