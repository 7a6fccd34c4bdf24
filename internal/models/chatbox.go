package models

import "time"

// ChatBox represents a room document: the ordered list of message ids
// plus the last time anything in the room changed. Live membership is
// not stored here; it lives in the relay registry only.
type ChatBox struct {
	ID           string    `json:"id"`
	MessageIDs   []string  `json:"messageIds"`
	LastModified time.Time `json:"lastModified"`
}

// ConversationPair links a user message to the bot reply it produced.
// Written best-effort; readers must tolerate missing pairs.
type ConversationPair struct {
	ChatBoxID     string    `json:"chatboxId"`
	UserMessageID string    `json:"userMessageId"`
	BotMessageID  string    `json:"botMessageId"`
	CreatedAt     time.Time `json:"createdAt"`
}
