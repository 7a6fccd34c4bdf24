package relay

import "encoding/json"

// Inbound event names. join-room is a legacy alias of join-chat-room; both
// carry a room id only. Identity announcement is always online-room.
const (
	EventJoinChatRoom       = "join-chat-room"
	EventJoinRoom           = "join-room"
	EventOnlineRoom         = "online-room"
	EventRequestOnlineUsers = "request-online-users"
	EventSendMessage        = "send-message"
	EventEditMessage        = "edit-message"
	EventDeleteMessage      = "delete-message"
	EventEditUserMessage    = "edit-user-message"
	EventChatCreated        = "chat-created"
	EventChatDeleted        = "chat-deleted"
	EventSendAIMessage      = "send-ai-message"
)

// Outbound event names.
const (
	EventReceiveMessage    = "receive-message"
	EventMessageEdited     = "message-edited"
	EventMessageDeleted    = "message-deleted"
	EventUserOnlineStatus  = "user-online-status"
	EventOnlineUsersList   = "online-users-list"
	EventReceiveBotMessage = "receive-bot-message"
	EventErrorMessage      = "error-message"
)

// Envelope is the wire format, one per WebSocket text message.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// marshalEvent serializes an outbound envelope once, so fan-out reuses the
// same bytes for every member.
func marshalEvent(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

// SendMessagePayload is the send-message input.
type SendMessagePayload struct {
	SenderEmail string `json:"senderEmail"`
	RoomID      string `json:"roomId"`
	Text        string `json:"text"`
}

// EditMessagePayload is the edit-message input.
type EditMessagePayload struct {
	MessageID string `json:"messageId"`
	NewText   string `json:"newText"`
	RoomID    string `json:"roomId"`
}

// DeleteMessagePayload is the delete-message input.
type DeleteMessagePayload struct {
	MessageID string `json:"messageId"`
	RoomID    string `json:"roomId"`
}

// EditUserMessagePayload is the edit-user-message input: a global
// rebroadcast with no persistence behind it.
type EditUserMessagePayload struct {
	MessageID   string `json:"messageId"`
	NewText     string `json:"newText"`
	SenderEmail string `json:"senderEmail"`
}

// ChatCreatedPayload is the chat-created input. The chat box document is
// passed through untouched to each listed identity.
type ChatCreatedPayload struct {
	ChatBox json.RawMessage `json:"chatbox"`
	Users   []string        `json:"users"`
}

// ChatDeletedPayload is the chat-deleted input.
type ChatDeletedPayload struct {
	ChatBoxID string   `json:"chatboxId"`
	Users     []string `json:"users"`
}

// AIMessagePayload is the send-ai-message input.
type AIMessagePayload struct {
	RoomID     string `json:"roomId"`
	SenderName string `json:"senderName"`
	Text       string `json:"text"`
	Role       string `json:"role"`
}

// ReceiveMessagePayload mirrors send-message to room members.
type ReceiveMessagePayload struct {
	ChatBoxID   string `json:"chatboxId"`
	SenderEmail string `json:"senderEmail"`
	Text        string `json:"text"`
	Timestamp   string `json:"timestamp"`
	MessageID   string `json:"messageId"`
}

// MessageEditedPayload mirrors edit-message.
type MessageEditedPayload struct {
	MessageID string `json:"messageId"`
	NewText   string `json:"newText"`
}

// MessageDeletedPayload mirrors delete-message.
type MessageDeletedPayload struct {
	MessageID string `json:"messageId"`
}

// UserOnlineStatusPayload is broadcast on 0→1 and 1→0 presence transitions.
type UserOnlineStatusPayload struct {
	Email    string `json:"email"`
	IsOnline bool   `json:"isOnline"`
}

// BotMessagePayload mirrors the bot reply into the room.
type BotMessagePayload struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ChatCreatedNotice is the per-identity chat-created notification.
type ChatCreatedNotice struct {
	ChatBox json.RawMessage `json:"chatbox"`
}

// ChatDeletedNotice is the per-identity chat-deleted notification.
type ChatDeletedNotice struct {
	ChatBoxID string `json:"chatboxId"`
}

// ErrorPayload goes to the originating connection only.
type ErrorPayload struct {
	Error string `json:"error"`
}
