package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rishugoyal805/ChatterlyAi-Backend-1/internal/metrics"
	"github.com/rishugoyal805/ChatterlyAi-Backend-1/internal/models"
)

// Sentinel errors for the persistence layer. Callers match with errors.Is.
var (
	// ErrStoreUnavailable wraps transport-level failures reaching a backend.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrRoomNotFound is returned when an index append targets a chat box
	// that has no backing document. The relay never creates rooms implicitly.
	ErrRoomNotFound = errors.New("room not found")

	// ErrValidation is returned for malformed input before any backend call.
	ErrValidation = errors.New("validation failed")
)

// roomIDRegex accepts chat-box ids and identity strings (emails double as
// private room ids).
var roomIDRegex = regexp.MustCompile(`^[A-Za-z0-9@._-]{1,128}$`)

// Adapter is the narrow persistence contract the relay depends on.
// Each mutation is a single call; none of them retries internally.
type Adapter interface {
	// CreateMessage inserts a new message document with a fresh id and a
	// current UTC timestamp, and returns the stored document.
	CreateMessage(ctx context.Context, senderEmail, chatBoxID, text, role string) (*models.Message, error)

	// AppendToIndex appends the message id to the chat box's ordered index
	// and refreshes its last-modified timestamp.
	AppendToIndex(ctx context.Context, chatBoxID, messageID string) error

	// EditMessageText updates a message's text in place. A missing message
	// id returns (false, nil): a stale edit, not a failure.
	EditMessageText(ctx context.Context, messageID, newText string) (bool, error)

	// DeleteMessage removes the message document and pulls its id from the
	// chat box index. Deleting an already-deleted message succeeds.
	DeleteMessage(ctx context.Context, messageID, chatBoxID string) error

	// GetMessage returns the message document, or nil if the id does not
	// resolve. Read paths use the nil return to skip dangling index entries.
	GetMessage(ctx context.Context, messageID string) (*models.Message, error)

	// RecordPairing links a user message id to the bot message id it
	// produced. Best-effort auxiliary data.
	RecordPairing(ctx context.Context, chatBoxID, userMessageID, botMessageID string) error
}

// MessageStore holds message documents keyed by id.
type MessageStore interface {
	Create(ctx context.Context, msg *models.Message) error
	Get(ctx context.Context, id string) (*models.Message, error)
	Edit(ctx context.Context, id, newText string) (bool, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// IndexStore holds chat-box documents: the ordered message-id list,
// the last-modified timestamp, and conversation pairings.
type IndexStore interface {
	Append(ctx context.Context, chatBoxID, messageID string) error
	Remove(ctx context.Context, chatBoxID, messageID string) error
	RecordPairing(ctx context.Context, pair *models.ConversationPair) error
	Ping(ctx context.Context) error
	Close()
}

// Store composes the message store and the index store into the Adapter
// contract. The create-then-append and delete-then-pull sequences are two
// separate backend calls; a crash in between leaves an orphaned message or
// a dangling index entry, which read paths filter defensively.
type Store struct {
	messages MessageStore
	index    IndexStore
	log      zerolog.Logger
}

// New creates a Store over the given backends.
func New(messages MessageStore, index IndexStore, logger zerolog.Logger) *Store {
	return &Store{
		messages: messages,
		index:    index,
		log:      logger.With().Str("component", "store").Logger(),
	}
}

// observeOp records backend call latency. Validation happens before the
// clock starts, so the histogram sees backend time only.
func observeOp(op string, start time.Time) {
	metrics.StoreLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// CreateMessage validates input and inserts a new message document.
func (s *Store) CreateMessage(ctx context.Context, senderEmail, chatBoxID, text, role string) (*models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty text", ErrValidation)
	}
	if !roomIDRegex.MatchString(chatBoxID) {
		return nil, fmt.Errorf("%w: malformed room id", ErrValidation)
	}

	defer observeOp("create", time.Now())
	msg := &models.Message{
		ChatBoxID:   chatBoxID,
		SenderEmail: senderEmail,
		Text:        text,
		Role:        role,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return msg, nil
}

// AppendToIndex appends a message id to the chat box's ordered index.
func (s *Store) AppendToIndex(ctx context.Context, chatBoxID, messageID string) error {
	defer observeOp("append", time.Now())
	if err := s.index.Append(ctx, chatBoxID, messageID); err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// EditMessageText updates a message's text in place.
func (s *Store) EditMessageText(ctx context.Context, messageID, newText string) (bool, error) {
	if strings.TrimSpace(newText) == "" {
		return false, fmt.Errorf("%w: empty text", ErrValidation)
	}
	defer observeOp("edit", time.Now())
	ok, err := s.messages.Edit(ctx, messageID, newText)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return ok, nil
}

// DeleteMessage removes the message document, then pulls the id from the
// chat box index.
func (s *Store) DeleteMessage(ctx context.Context, messageID, chatBoxID string) error {
	defer observeOp("delete", time.Now())
	if err := s.messages.Delete(ctx, messageID); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := s.index.Remove(ctx, chatBoxID, messageID); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// GetMessage returns a message document, or nil if the id does not resolve.
func (s *Store) GetMessage(ctx context.Context, messageID string) (*models.Message, error) {
	defer observeOp("get", time.Now())
	msg, err := s.messages.Get(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return msg, nil
}

// RecordPairing links a user message to its bot reply. Failures are logged
// by the caller and never block delivery.
func (s *Store) RecordPairing(ctx context.Context, chatBoxID, userMessageID, botMessageID string) error {
	defer observeOp("pair", time.Now())
	pair := &models.ConversationPair{
		ChatBoxID:     chatBoxID,
		UserMessageID: userMessageID,
		BotMessageID:  botMessageID,
	}
	if err := s.index.RecordPairing(ctx, pair); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
