package entity

import "time"

// Message is one chat message between two users. Room is the canonical
// conversation key for the {Sender, Recipient} pair and is identical in
// both directions. Messages are append-only; they are never edited or
// deleted.
type Message struct {
	ID        int64     `json:"id"`
	Room      string    `json:"room"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Content   string    `json:"content"`
	SentAt    time.Time `json:"sentAt"`
}
