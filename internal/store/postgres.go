package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rishugoyal805/ChatterlyAi-Backend-1/internal/models"
)

// PostgresStore holds chat-box documents and conversation pairings.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL index store with a connection
// pool and ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	store := &PostgresStore{pool: pool}
	if err := store.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *PostgresStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS chatboxes (
		id TEXT PRIMARY KEY,
		message_ids TEXT[] NOT NULL DEFAULT '{}',
		last_modified TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS conversation_pairs (
		chatbox_id TEXT NOT NULL,
		user_message_id TEXT NOT NULL,
		bot_message_id TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_pairs_chatbox ON conversation_pairs(chatbox_id);
	`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// SeedChatBox creates an empty chat-box document if one does not exist.
// Room documents are provisioned out of band; the relay never calls this
// on the message path.
func (s *PostgresStore) SeedChatBox(ctx context.Context, chatBoxID string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO chatboxes (id) VALUES ($1)
		ON CONFLICT (id) DO NOTHING
	`, chatBoxID)
	return err
}

// Append appends a message id to the chat box's ordered index and
// refreshes last_modified. Fails with ErrRoomNotFound if the chat box
// document does not exist.
func (s *PostgresStore) Append(ctx context.Context, chatBoxID, messageID string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE chatboxes
		SET message_ids = array_append(message_ids, $2), last_modified = NOW()
		WHERE id = $1
	`, chatBoxID, messageID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// Remove pulls a message id from the chat box's index and refreshes
// last_modified. A missing chat box or an absent id is a no-op.
func (s *PostgresStore) Remove(ctx context.Context, chatBoxID, messageID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE chatboxes
		SET message_ids = array_remove(message_ids, $2), last_modified = NOW()
		WHERE id = $1
	`, chatBoxID, messageID)
	return err
}

// GetChatBox retrieves a chat-box document by id. Returns nil if it does
// not exist.
func (s *PostgresStore) GetChatBox(ctx context.Context, chatBoxID string) (*models.ChatBox, error) {
	box := &models.ChatBox{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, message_ids, last_modified
		FROM chatboxes WHERE id = $1
	`, chatBoxID).Scan(&box.ID, &box.MessageIDs, &box.LastModified)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return box, nil
}

// RecordPairing inserts a conversation-pair row.
func (s *PostgresStore) RecordPairing(ctx context.Context, pair *models.ConversationPair) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO conversation_pairs (chatbox_id, user_message_id, bot_message_id)
		VALUES ($1, $2, $3)
	`, pair.ChatBoxID, pair.UserMessageID, pair.BotMessageID)
	return err
}
