package proto

import "encoding/json"

// Inbound is the envelope for events coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Inbound event types.
const (
	InboundTypeSetUsername    = "setUsername"
	InboundTypeSendMessage    = "sendMessage"
	InboundTypeJoinRoom       = "joinRoomExclusively"
	InboundTypeTyping         = "typing"
	InboundTypeStopTyping     = "stopTyping"
	InboundTypeCreateRoom     = "createRoom"
	InboundTypeUpdateRoomName = "updateRoomName"
	InboundTypeDeleteRoom     = "deleteRoom"
	InboundTypeLeaveRoom      = "leaveRoom"
)

// Outbound envelope types.
const (
	OutboundTypeEvent = "event"
	OutboundTypeAck   = "ack"
)

// Outbound event names.
const (
	EventNameUserList        = "userList"
	EventNameRoomMessage     = "roomMessage"
	EventNamePrivateMessage  = "privateMessage"
	EventNameJoiningMessage  = "joiningMessage"
	EventNameWelcomeMessage  = "welcomeMessage"
	EventNameRoomHistory     = "roomHistory"
	EventNameLeavingMessage  = "leavingMessage"
	EventNameTyping          = "typing"
	EventNameStopTyping      = "stopTyping"
	EventNameRoomList        = "roomList"
	EventNameRoomMemberCount = "roomMemberCount"
	EventNameError           = "error-from-server"
)

// SetUsernameData introduces the connection's display name.
type SetUsernameData struct {
	Username string `json:"username"`
}

// SendMessageData carries a room or direct message. Exactly one of
// RoomID/RecipientID is expected.
type SendMessageData struct {
	RoomID      string `json:"roomId,omitempty"`
	RecipientID string `json:"recipientId,omitempty"`
	Content     string `json:"content"`
	Sender      string `json:"sender,omitempty"`
}

// JoinRoomData requests membership in a room.
type JoinRoomData struct {
	RoomID   string `json:"roomId"`
	Text     string `json:"text,omitempty"`
	Username string `json:"username,omitempty"`
}

// RoomIDData is shared by typing, stopTyping and leaveRoom.
type RoomIDData struct {
	RoomID string `json:"roomId"`
}

// CreateRoomData names a new room.
type CreateRoomData struct {
	Name string `json:"name"`
}

// UpdateRoomNameData renames an existing room.
type UpdateRoomNameData struct {
	RoomID  string `json:"roomId"`
	NewName string `json:"newName"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Error describes a domain or protocol error surfaced to one caller.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// UserEntry is one row of the userList roster.
type UserEntry struct {
	Username string `json:"username"`
	Status   string `json:"status"`
}

// MessagePayload mirrors a relayed message.
type MessagePayload struct {
	RoomID      string `json:"roomId,omitempty"`
	Content     string `json:"content"`
	Sender      string `json:"sender,omitempty"`
	SenderID    string `json:"senderId,omitempty"`
	RecipientID string `json:"recipientId,omitempty"`
	TS          int64  `json:"ts,omitempty"`
}

// JoiningPayload announces a user joining a room.
type JoiningPayload struct {
	RoomID string `json:"roomId"`
	Text   string `json:"text,omitempty"`
	UserID string `json:"userId"`
	Sender string `json:"sender"`
}

// LeavingPayload announces a user leaving a room, by choice or by
// disconnecting.
type LeavingPayload struct {
	RoomID  string `json:"roomId"`
	UserID  string `json:"userId"`
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

// TypingPayload identifies who is typing in a room.
type TypingPayload struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	Username string `json:"username,omitempty"`
}

// RoomEntry is one row of the roomList snapshot.
type RoomEntry struct {
	Name     string           `json:"name"`
	Messages []MessagePayload `json:"messages"`
}

// RoomHistoryPayload replays retained messages to a joining connection.
type RoomHistoryPayload struct {
	RoomID   string           `json:"roomId"`
	Messages []MessagePayload `json:"messages"`
}

// MemberCountPayload carries a room's current member count.
type MemberCountPayload struct {
	RoomID string `json:"roomId"`
	Count  int    `json:"count"`
}

// CreateRoomAck acknowledges a successful createRoom.
type CreateRoomAck struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
}

// UpdateRoomNameAck acknowledges a successful updateRoomName.
type UpdateRoomNameAck struct {
	NewName string `json:"newName"`
}

// DeleteRoomAck acknowledges a successful deleteRoom.
type DeleteRoomAck struct {
	RoomID string `json:"roomId"`
}
