package core

// UnknownName is the sentinel display name for connections that never set
// one, or for lookups of ids that are not registered.
const UnknownName = "Unknown"

// UserInfo is one roster entry.
type UserInfo struct {
	Name   string
	Status Status
}

// Registry tracks live connections by id. It is owned by the hub
// goroutine and is not safe for concurrent use.
type Registry struct {
	clients map[string]*Client
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*Client)}
}

// Register inserts a connection. The id is assumed unique for the
// connection's lifetime.
func (r *Registry) Register(c *Client) {
	r.clients[c.ID] = c
}

// Get returns the client for id.
func (r *Registry) Get(id string) (*Client, bool) {
	c, ok := r.clients[id]
	return c, ok
}

// SetName updates the display name. No-op when the id is unknown.
func (r *Registry) SetName(id, name string) {
	if c, ok := r.clients[id]; ok {
		c.Name = name
	}
}

// MarkOffline transitions the connection to offline ahead of removal, so
// the roster broadcast can still include it.
func (r *Registry) MarkOffline(id string) {
	if c, ok := r.clients[id]; ok {
		c.Status = StatusOffline
	}
}

// Remove deletes the connection record.
func (r *Registry) Remove(id string) {
	delete(r.clients, id)
}

// Lookup returns the display name and status for id. Unregistered ids
// degrade to the UnknownName sentinel with offline status.
func (r *Registry) Lookup(id string) (string, Status) {
	c, ok := r.clients[id]
	if !ok {
		return UnknownName, StatusOffline
	}
	return c.Name, c.Status
}

// Snapshot returns a copy of the roster keyed by connection id.
func (r *Registry) Snapshot() map[string]UserInfo {
	users := make(map[string]UserInfo, len(r.clients))
	for id, c := range r.clients {
		users[id] = UserInfo{Name: c.Name, Status: c.Status}
	}
	return users
}

// All returns the registered clients in no particular order.
func (r *Registry) All() []*Client {
	clients := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	return clients
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	return len(r.clients)
}
