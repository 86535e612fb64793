package core

// Status is the presence state of a connection.
type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)

// Client is one live connection as seen by the core layer. Name, Status
// and Rooms are owned by the hub goroutine after registration.
type Client struct {
	ID       string
	Name     string
	Status   Status
	Commands chan *Command
	Events   chan *Event
	Rooms    map[string]struct{}
}

// NewClient constructs a client with initialized channels. The display
// name starts empty and is only set through a setUsername command.
func NewClient(id string) *Client {
	return &Client{
		ID:       id,
		Status:   StatusOnline,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 32),
		Rooms:    make(map[string]struct{}),
	}
}

// push delivers an event without blocking. Returns false when the client
// buffer is full and the event was dropped.
func (c *Client) push(event *Event) bool {
	select {
	case c.Events <- event:
		return true
	default:
		// Drop if slow consumer.
		return false
	}
}
