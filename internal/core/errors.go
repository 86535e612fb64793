package core

import "fmt"

// Error codes for domain errors.
const (
	ErrCodeCapacityExceeded = "capacity_exceeded"
	ErrCodeRoomNotFound     = "room_not_found"
	ErrCodeNotInRoom        = "not_in_room"
	ErrCodeBadRequest       = "bad_request"
	ErrCodeRateLimited      = "rate_limited"
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func capacityExceeded() *CoreError {
	return &CoreError{Code: ErrCodeCapacityExceeded, Message: "Maximum number of rooms reached"}
}

func roomNotFound() *CoreError {
	return &CoreError{Code: ErrCodeRoomNotFound, Message: "Room not found"}
}

func notInRoom(roomID string) *CoreError {
	return &CoreError{Code: ErrCodeNotInRoom, Message: fmt.Sprintf("User is not in room %s", roomID)}
}
