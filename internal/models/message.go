package models

import "time"

// Message is a direct message between two users. Exactly one of Text and
// AttachmentURL is set; Delivered and Read only ever flip false to true.
type Message struct {
	ID            int       `db:"id" json:"id"`
	SenderID      int       `db:"sender_id" json:"sender_id"`
	ReceiverID    int       `db:"receiver_id" json:"receiver_id"`
	Text          *string   `db:"text" json:"text"`
	AttachmentURL *string   `db:"attachment_url" json:"attachment_url"`
	Delivered     bool      `db:"delivered" json:"delivered"`
	Read          bool      `db:"read" json:"read"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// InvolvedPeer returns the other participant relative to userID, or false
// when the message does not involve userID at all.
func (m Message) InvolvedPeer(userID int) (int, bool) {
	switch userID {
	case m.SenderID:
		return m.ReceiverID, true
	case m.ReceiverID:
		return m.SenderID, true
	}
	return 0, false
}

// AttachmentPlaceholder stands in for the text of attachment-only messages
// in conversation summaries.
const AttachmentPlaceholder = "📷 Image"

// SummaryText renders the message for a conversation summary.
func (m Message) SummaryText() string {
	if m.Text != nil {
		return *m.Text
	}
	return AttachmentPlaceholder
}

// ReadReceipt notifies the author (To) that the reader (From) has seen
// everything the author sent them.
type ReadReceipt struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Event types pushed over a user's live connection.
const (
	EventNewMessage  = "newMessage"
	EventReadReceipt = "readReceipt"
)

// Event is broadcasted through websockets.
type Event struct {
	Type    string       `json:"type"`
	Message *Message     `json:"message,omitempty"`
	Receipt *ReadReceipt `json:"receipt,omitempty"`
}
