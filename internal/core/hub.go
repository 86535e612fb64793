package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Defaults for hub limits.
const (
	DefaultRoomCap      = 5
	DefaultHistoryLimit = 100
)

// deliveryAck is returned to the sender of every sendMessage, regardless
// of whether any recipient actually received the message.
const deliveryAck = "Message delivered"

// departureText is the body of leave and disconnect notices.
const departureText = "has left the room"

// Options tune hub limits. Zero values fall back to the defaults.
type Options struct {
	RoomCap      int
	HistoryLimit int
}

// Hub is the relay engine. A single goroutine owns the connection
// registry and room store, applies client commands and computes the
// fan-out set for every inbound action. Commands from one client are
// applied in order; commands from different clients interleave.
type Hub struct {
	registry *Registry
	rooms    *RoomStore
	typing   *typingTracker

	register    chan *Client
	commands    chan clientCommand
	roomQueries chan chan map[string]RoomInfo
	userQueries chan chan map[string]UserInfo
	done        chan struct{}

	log *zerolog.Logger
}

type clientCommand struct {
	origin *Client
	cmd    *Command
}

// NewHub creates a hub. A nil logger disables logging.
func NewHub(logger *zerolog.Logger, opts Options) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if opts.RoomCap == 0 {
		opts.RoomCap = DefaultRoomCap
	}
	if opts.HistoryLimit == 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}

	registry := NewRegistry()
	return &Hub{
		registry:    registry,
		rooms:       NewRoomStore(opts.RoomCap, opts.HistoryLimit),
		typing:      &typingTracker{registry: registry},
		register:    make(chan *Client),
		commands:    make(chan clientCommand),
		roomQueries: make(chan chan map[string]RoomInfo),
		userQueries: make(chan chan map[string]UserInfo),
		done:        make(chan struct{}),
		log:         logger,
	}
}

// Run processes registrations, commands and queries until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			h.registry.Register(c)
			h.log.Debug().Str("client_id", c.ID).Msg("client connected")
		case cc := <-h.commands:
			h.dispatch(cc.origin, cc.cmd)
		case reply := <-h.roomQueries:
			reply <- h.rooms.Snapshot()
		case reply := <-h.userQueries:
			reply <- h.registry.Snapshot()
		case <-ctx.Done():
			return
		}
	}
}

// RegisterClient adds the client to the registry and starts forwarding
// its commands to the hub goroutine.
func (h *Hub) RegisterClient(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
	go h.pump(c)
}

// UnregisterClient stops accepting commands from the client and triggers
// the disconnect cleanup sequence. The client's Events channel is closed
// by the hub once cleanup has run.
func (h *Hub) UnregisterClient(c *Client) {
	close(c.Commands)
}

// pump forwards one client's commands in order, then injects the
// disconnect command once the stream ends. Once the hub has stopped,
// remaining commands are drained and discarded so the producer never
// blocks on a dead hub.
func (h *Hub) pump(c *Client) {
	for cmd := range c.Commands {
		select {
		case h.commands <- clientCommand{origin: c, cmd: cmd}:
		case <-h.done:
		}
	}
	select {
	case h.commands <- clientCommand{origin: c, cmd: &Command{Kind: commandDisconnect}}:
	case <-h.done:
	}
}

// RoomList returns a snapshot of all rooms, taken on the hub goroutine.
func (h *Hub) RoomList(ctx context.Context) (map[string]RoomInfo, error) {
	reply := make(chan map[string]RoomInfo, 1)
	select {
	case h.roomQueries <- reply:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case rooms := <-reply:
		return rooms, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Roster returns a snapshot of the connection roster, taken on the hub
// goroutine.
func (h *Hub) Roster(ctx context.Context) (map[string]UserInfo, error) {
	reply := make(chan map[string]UserInfo, 1)
	select {
	case h.userQueries <- reply:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case users := <-reply:
		return users, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *Hub) dispatch(origin *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandSetUsername:
		h.handleSetUsername(origin, cmd)
	case CommandSendMessage:
		h.handleSendMessage(origin, cmd)
	case CommandJoinRoom:
		h.handleJoinRoom(origin, cmd)
	case CommandLeaveRoom:
		h.handleLeaveRoom(origin, cmd)
	case CommandTyping:
		if room, ok := h.rooms.Get(cmd.Room); ok {
			h.typing.Started(room, origin)
		}
	case CommandStopTyping:
		if room, ok := h.rooms.Get(cmd.Room); ok {
			h.typing.Stopped(room, origin)
		}
	case CommandCreateRoom:
		h.handleCreateRoom(origin, cmd)
	case CommandRenameRoom:
		h.handleRenameRoom(origin, cmd)
	case CommandDeleteRoom:
		h.handleDeleteRoom(origin, cmd)
	case commandDisconnect:
		h.handleDisconnect(origin)
	}
}

func (h *Hub) handleSetUsername(origin *Client, cmd *Command) {
	h.registry.SetName(origin.ID, cmd.Name)
	h.log.Debug().Str("client_id", origin.ID).Str("username", cmd.Name).Msg("username set")
	h.broadcastRoster()
}

func (h *Hub) handleSendMessage(origin *Client, cmd *Command) {
	msg := cmd.Message
	msg.SenderID = origin.ID
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	if msg.RecipientID != "" {
		// Direct path: fire-and-forget, silently dropped when the
		// recipient is gone.
		if target, ok := h.registry.Get(msg.RecipientID); ok {
			target.push(&Event{Kind: EventPrivateMessage, Message: msg})
		}
		h.reply(cmd, Ack{Body: deliveryAck})
		return
	}

	room := h.rooms.Ensure(msg.RoomID)
	room.Append(msg)
	room.Broadcast(&Event{Kind: EventRoomMessage, Room: room.ID, Message: msg})
	h.reply(cmd, Ack{Body: deliveryAck})
}

func (h *Hub) handleJoinRoom(origin *Client, cmd *Command) {
	room := h.rooms.Ensure(cmd.Room)

	// Idempotency is keyed on the room's member set, not the client's
	// held ids: after a delete the client may still hold the id, and a
	// re-join must re-attach to the recreated room.
	if room.Has(origin) {
		h.log.Debug().Str("client_id", origin.ID).Str("room_id", room.ID).Msg("already in room")
		return
	}

	// Membership in other rooms is intentionally left untouched; see
	// DESIGN.md on the exclusive-join decision.
	origin.Rooms[room.ID] = struct{}{}
	room.AddClient(origin)
	h.log.Info().Str("client_id", origin.ID).Str("room_id", room.ID).Msg("client joined room")

	origin.push(&Event{
		Kind: EventWelcome,
		Room: room.ID,
		Text: "Welcome " + cmd.Name + " to the room!",
	})
	room.Broadcast(&Event{
		Kind:     EventJoined,
		Room:     room.ID,
		UserID:   origin.ID,
		Username: cmd.Name,
		Text:     cmd.Text,
	})
	origin.push(&Event{Kind: EventRoomHistory, Room: room.ID, Messages: room.History()})
	room.Broadcast(&Event{Kind: EventRoomMemberCount, Room: room.ID, Count: room.MemberCount()})
}

func (h *Hub) handleLeaveRoom(origin *Client, cmd *Command) {
	room, ok := h.rooms.Get(cmd.Room)
	if !ok || !room.Has(origin) {
		if _, held := origin.Rooms[cmd.Room]; held {
			// The room was deleted out from under the client; clear the
			// stale id without a departure flow.
			delete(origin.Rooms, cmd.Room)
			h.log.Debug().Str("client_id", origin.ID).Str("room_id", cmd.Room).Msg("cleared stale room membership")
			return
		}
		origin.push(&Event{Kind: EventError, Room: cmd.Room, Error: notInRoom(cmd.Room)})
		return
	}

	delete(origin.Rooms, room.ID)
	room.RemoveClient(origin)
	h.log.Info().Str("client_id", origin.ID).Str("room_id", room.ID).Msg("client left room")

	room.Broadcast(&Event{
		Kind:     EventLeft,
		Room:     room.ID,
		UserID:   origin.ID,
		Username: h.displayName(origin.ID),
		Text:     departureText,
	})
	room.Broadcast(&Event{Kind: EventRoomMemberCount, Room: room.ID, Count: room.MemberCount()})
}

func (h *Hub) handleCreateRoom(origin *Client, cmd *Command) {
	room, cerr := h.rooms.Create(cmd.Name)
	if cerr != nil {
		h.log.Warn().Str("client_id", origin.ID).Str("room_name", cmd.Name).Msg("room cap reached")
		h.reply(cmd, Ack{Err: cerr})
		return
	}
	h.log.Info().Str("room_id", room.ID).Str("room_name", room.Name).Msg("room created")
	h.reply(cmd, Ack{RoomID: room.ID, Name: room.Name})
	h.broadcastRoomList()
}

func (h *Hub) handleRenameRoom(origin *Client, cmd *Command) {
	if cerr := h.rooms.Rename(cmd.Room, cmd.Name); cerr != nil {
		h.reply(cmd, Ack{Err: cerr})
		return
	}
	h.log.Info().Str("room_id", cmd.Room).Str("room_name", cmd.Name).Msg("room renamed")
	h.reply(cmd, Ack{Name: cmd.Name})
	h.broadcastRoomList()
}

func (h *Hub) handleDeleteRoom(origin *Client, cmd *Command) {
	if cerr := h.rooms.Delete(cmd.Room); cerr != nil {
		h.reply(cmd, Ack{Err: cerr})
		return
	}
	h.log.Info().Str("room_id", cmd.Room).Msg("room deleted")
	h.reply(cmd, Ack{RoomID: cmd.Room})
	h.broadcastRoomList()
}

// handleDisconnect runs the cleanup sequence. Departure notices are
// emitted before the record is purged so that display-name lookups
// during the notices still resolve.
func (h *Hub) handleDisconnect(c *Client) {
	for id := range c.Rooms {
		room, ok := h.rooms.Get(id)
		if !ok || !room.Has(c) {
			// Room was deleted while the client was still a member.
			continue
		}
		room.RemoveClient(c)
		room.Broadcast(&Event{
			Kind:     EventLeft,
			Room:     id,
			UserID:   c.ID,
			Username: h.displayName(c.ID),
			Text:     departureText,
		})
		room.Broadcast(&Event{Kind: EventRoomMemberCount, Room: id, Count: room.MemberCount()})
	}

	h.registry.MarkOffline(c.ID)
	h.broadcastRoster()
	h.registry.Remove(c.ID)
	close(c.Events)
	h.log.Info().Str("client_id", c.ID).Msg("client disconnected")
}

func (h *Hub) broadcastRoster() {
	event := &Event{Kind: EventUserList, Users: h.registry.Snapshot()}
	for _, c := range h.registry.All() {
		c.push(event)
	}
}

func (h *Hub) broadcastRoomList() {
	event := &Event{Kind: EventRoomList, Rooms: h.rooms.Snapshot()}
	for _, c := range h.registry.All() {
		c.push(event)
	}
}

// displayName resolves a best-effort name for departure notices.
func (h *Hub) displayName(id string) string {
	name, _ := h.registry.Lookup(id)
	if name == "" {
		return UnknownName
	}
	return name
}

// reply delivers an acknowledgment without blocking the hub goroutine.
func (h *Hub) reply(cmd *Command, ack Ack) {
	if cmd.Reply == nil {
		return
	}
	select {
	case cmd.Reply <- ack:
	default:
	}
}
