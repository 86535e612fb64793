package core

// typingTracker turns typing commands into room-scoped signals for the
// other members. It holds no state of its own: stop signals are entirely
// client-driven and there is no server-side expiry of stale typing.
type typingTracker struct {
	registry *Registry
}

func (t *typingTracker) Started(room *Room, origin *Client) {
	name, _ := t.registry.Lookup(origin.ID)
	room.BroadcastExcept(&Event{
		Kind:     EventTyping,
		Room:     room.ID,
		UserID:   origin.ID,
		Username: name,
	}, origin)
}

func (t *typingTracker) Stopped(room *Room, origin *Client) {
	room.BroadcastExcept(&Event{
		Kind:   EventStopTyping,
		Room:   room.ID,
		UserID: origin.ID,
	}, origin)
}
