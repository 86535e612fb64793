package core

import "github.com/roomrelay/roomrelay-server/internal/utils"

// PlaceholderRoomName is assigned to rooms created implicitly by a join
// or send referencing an unknown room id.
const PlaceholderRoomName = "Unnamed Room"

// RoomInfo is a point-in-time view of one room.
type RoomInfo struct {
	Name     string
	Messages []Message
}

// RoomStore owns room existence, naming and history. It is owned by the
// hub goroutine and is not safe for concurrent use.
type RoomStore struct {
	cap          int
	historyLimit int
	rooms        map[string]*Room
}

// NewRoomStore constructs a store. cap bounds explicit room creation;
// historyLimit bounds per-room retained messages.
func NewRoomStore(cap, historyLimit int) *RoomStore {
	return &RoomStore{
		cap:          cap,
		historyLimit: historyLimit,
		rooms:        make(map[string]*Room),
	}
}

// Ensure returns the room for id, creating it with a placeholder name
// when absent. Implicit creation is not capped.
func (s *RoomStore) Ensure(id string) *Room {
	if room, ok := s.rooms[id]; ok {
		return room
	}
	room := newRoom(id, PlaceholderRoomName, s.historyLimit)
	s.rooms[id] = room
	return room
}

// Create allocates a room with a fresh unique id. Fails once the room
// count has reached the cap.
func (s *RoomStore) Create(name string) (*Room, *CoreError) {
	if len(s.rooms) >= s.cap {
		return nil, capacityExceeded()
	}
	room := newRoom(utils.NewID(), name, s.historyLimit)
	s.rooms[room.ID] = room
	return room, nil
}

// Rename changes a room's display name in place.
func (s *RoomStore) Rename(id, name string) *CoreError {
	room, ok := s.rooms[id]
	if !ok {
		return roomNotFound()
	}
	room.Name = name
	return nil
}

// Delete removes the room and its history. Members are not evicted;
// their membership sets keep the stale id until they leave or disconnect.
func (s *RoomStore) Delete(id string) *CoreError {
	if _, ok := s.rooms[id]; !ok {
		return roomNotFound()
	}
	delete(s.rooms, id)
	return nil
}

// Get returns the room for id.
func (s *RoomStore) Get(id string) (*Room, bool) {
	room, ok := s.rooms[id]
	return room, ok
}

// Snapshot returns a copy of all rooms with their retained histories.
func (s *RoomStore) Snapshot() map[string]RoomInfo {
	rooms := make(map[string]RoomInfo, len(s.rooms))
	for id, room := range s.rooms {
		rooms[id] = RoomInfo{Name: room.Name, Messages: room.History()}
	}
	return rooms
}

// Len returns the current room count.
func (s *RoomStore) Len() int {
	return len(s.rooms)
}
