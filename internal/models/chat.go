package models

import "time"

type Conversation struct {
	ID        int64     `json:"id"`
	ClientID  int64     `json:"client_id"`
	TrainerID int64     `json:"trainer_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ChatMessage struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	SenderID       int64     `json:"sender_id"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

type ConversationSummary struct {
	Conversation
	LastMessage *ChatMessage `json:"last_message,omitempty"`
	UnreadCount int          `json:"unread_count"`
	// CanReply is false for a trainer until the client has authored at
	// least one message; clients can always reply.
	CanReply bool `json:"can_reply"`
}
