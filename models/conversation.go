package models

import "time"

// Conversation is one exchange between a user and the chat bot. The bot
// process publishes these over Kafka; the worker persists them so the
// dashboard can inspect recent history.
type Conversation struct {
	ID        string    `bson:"id" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	ChannelID string    `bson:"channel_id" json:"channel_id"`
	Message   string    `bson:"message" json:"message"`
	Reply     string    `bson:"ai_response" json:"ai_response"`
	SessionID string    `bson:"session_id" json:"session_id"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// ConversationEvent is the wire form the bot publishes. Timestamp is
// optional; the worker stamps receipt time when absent.
type ConversationEvent struct {
	UserID    string    `json:"user_id"`
	ChannelID string    `json:"channel_id"`
	Message   string    `json:"message"`
	Reply     string    `json:"ai_response"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}
