package utils

import "github.com/google/uuid"

// NewID returns a unique identifier. Used for connection and room ids.
func NewID() string {
	return uuid.NewString()
}
