package models

// Message roles. AI-enabled chat boxes carry both.
const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// Message represents a chat message stored in Redis.
type Message struct {
	ID          string `json:"id"` // ULID
	ChatBoxID   string `json:"chatboxId"`
	SenderEmail string `json:"senderEmail"`
	Text        string `json:"text"`
	Role        string `json:"role,omitempty"`
	Timestamp   string `json:"timestamp"` // RFC 3339, UTC
}
