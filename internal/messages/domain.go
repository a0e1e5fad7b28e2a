// Package messages implements direct user-to-user messaging.
package messages

import (
	"time"

	"github.com/ppl-hub/practicum/internal/shared"
)

// Message is a direct message between two users.
type Message struct {
	ID          int64      `json:"id"`
	SenderID    int64      `json:"sender_id"`
	RecipientID int64      `json:"recipient_id"`
	Subject     string     `json:"subject"`
	Body        string     `json:"body"`
	ReadAt      *time.Time `json:"read_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Input composes a message.
type Input struct {
	RecipientID int64  `json:"recipient_id" validate:"required,gt=0"`
	Subject     string `json:"subject" validate:"required,max=200"`
	Body        string `json:"body" validate:"required,max=10000"`
}

// Box selects the mailbox side.
type Box int

const (
	Inbox Box = iota
	Sent
)

// ListFilter narrows list results.
type ListFilter struct {
	UserID     int64
	Box        Box
	UnreadOnly bool
	Page       shared.PageRequest
}
