package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandSetUsername sets the connection's display name.
	CommandSetUsername CommandKind = iota
	// CommandSendMessage delivers a message to a room or a single recipient.
	CommandSendMessage
	// CommandJoinRoom subscribes the client to a room.
	CommandJoinRoom
	// CommandLeaveRoom unsubscribes the client from a room.
	CommandLeaveRoom
	// CommandTyping signals that the client started typing in a room.
	CommandTyping
	// CommandStopTyping signals that the client stopped typing in a room.
	CommandStopTyping
	// CommandCreateRoom allocates a new named room.
	CommandCreateRoom
	// CommandRenameRoom changes a room's display name.
	CommandRenameRoom
	// CommandDeleteRoom removes a room and its history.
	CommandDeleteRoom

	// commandDisconnect is injected by the hub when a client's command
	// stream ends; it is never sent by transports directly.
	commandDisconnect
)

// Ack is the synchronous reply for commands that acknowledge the caller
// (sendMessage, createRoom, updateRoomName, deleteRoom).
type Ack struct {
	Err    *CoreError
	RoomID string
	Name   string
	Body   string
}

// Command represents an action requested by a client.
type Command struct {
	Kind    CommandKind
	Room    string
	Name    string // username for SetUsername, room name for Create/Rename
	Text    string // join announcement text
	Message Message
	Reply   chan Ack // buffered by the caller; the hub never blocks on it
}
