package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventUserList carries the full connection roster.
	EventUserList EventKind = iota
	// EventRoomMessage notifies room members about a chat message.
	EventRoomMessage
	// EventPrivateMessage delivers a direct message to one connection.
	EventPrivateMessage
	// EventJoined notifies room members that a user joined.
	EventJoined
	// EventWelcome greets the joining connection privately.
	EventWelcome
	// EventRoomHistory replays retained room messages to a joining connection.
	EventRoomHistory
	// EventLeft notifies room members that a user left or disconnected.
	EventLeft
	// EventTyping notifies room members that a user started typing.
	EventTyping
	// EventStopTyping notifies room members that a user stopped typing.
	EventStopTyping
	// EventRoomList carries the full room snapshot.
	EventRoomList
	// EventRoomMemberCount carries a room's current member count.
	EventRoomMemberCount
	// EventError notifies a single client about a domain error.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind     EventKind
	Room     string
	UserID   string
	Username string
	Text     string
	Message  Message
	Messages []Message // for EventRoomHistory
	Users    map[string]UserInfo
	Rooms    map[string]RoomInfo
	Count    int
	Error    *CoreError
}
