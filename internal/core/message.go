package core

import "time"

// Message is the domain model for a relayed chat message.
type Message struct {
	RoomID      string
	Body        string
	Sender      string // display name supplied by the sender
	SenderID    string
	RecipientID string // set only for direct messages
	CreatedAt   time.Time
}
