package core

// Room groups clients subscribed to the same channel and retains a
// bounded message history.
type Room struct {
	ID      string
	Name    string
	clients map[*Client]struct{}

	// history is ring storage: once len reaches limit, start marks the
	// oldest retained message and appends overwrite in place.
	history []Message
	start   int
	limit   int
}

func newRoom(id, name string, historyLimit int) *Room {
	return &Room{
		ID:      id,
		Name:    name,
		clients: make(map[*Client]struct{}),
		limit:   historyLimit,
	}
}

// AddClient inserts a client into the room. Returns true if newly added.
func (r *Room) AddClient(c *Client) bool {
	if _, exists := r.clients[c]; exists {
		return false
	}
	r.clients[c] = struct{}{}
	return true
}

// RemoveClient deletes a client from the room. Returns true if removed.
func (r *Room) RemoveClient(c *Client) bool {
	if _, exists := r.clients[c]; !exists {
		return false
	}
	delete(r.clients, c)
	return true
}

// Has reports whether the client is a member of the room.
func (r *Room) Has(c *Client) bool {
	_, exists := r.clients[c]
	return exists
}

// MemberCount returns the number of joined clients.
func (r *Room) MemberCount() int {
	return len(r.clients)
}

// Broadcast sends an event to all clients in the room.
func (r *Room) Broadcast(event *Event) {
	for client := range r.clients {
		client.push(event)
	}
}

// BroadcastExcept sends an event to all clients in the room but skip.
func (r *Room) BroadcastExcept(event *Event, skip *Client) {
	for client := range r.clients {
		if client == skip {
			continue
		}
		client.push(event)
	}
}

// Append adds a message to the history, evicting the oldest retained
// message once the limit is reached. A limit of zero or less disables
// the bound.
func (r *Room) Append(m Message) {
	if r.limit <= 0 || len(r.history) < r.limit {
		r.history = append(r.history, m)
		return
	}
	r.history[r.start] = m
	r.start = (r.start + 1) % r.limit
}

// History returns the retained messages in send order.
func (r *Room) History() []Message {
	out := make([]Message, 0, len(r.history))
	out = append(out, r.history[r.start:]...)
	out = append(out, r.history[:r.start]...)
	return out
}

// Empty returns true if no clients are in the room.
func (r *Room) Empty() bool {
	return len(r.clients) == 0
}
