package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rishugoyal805/ChatterlyAi-Backend-1/internal/models"
)

// SQLiteStore is the development index store, used when no DATABASE_URL is
// configured. The message-id list is stored as a JSON array.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite index store.
// If dbPath is empty, defaults to "./data/chatterly.db".
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/chatterly.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}

	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS chatboxes (
		id TEXT PRIMARY KEY,
		message_ids TEXT NOT NULL DEFAULT '[]',
		last_modified DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS conversation_pairs (
		chatbox_id TEXT NOT NULL,
		user_message_id TEXT NOT NULL,
		bot_message_id TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_pairs_chatbox ON conversation_pairs(chatbox_id);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SeedChatBox creates an empty chat-box document if one does not exist.
func (s *SQLiteStore) SeedChatBox(ctx context.Context, chatBoxID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO chatboxes (id) VALUES (?)
	`, chatBoxID)
	return err
}

// Append appends a message id to the chat box's index. Fails with
// ErrRoomNotFound if the chat box document does not exist.
func (s *SQLiteStore) Append(ctx context.Context, chatBoxID, messageID string) error {
	return s.mutateIndex(ctx, chatBoxID, func(ids []string) ([]string, bool) {
		return append(ids, messageID), true
	}, true)
}

// Remove pulls a message id from the chat box's index. A missing chat box
// or an absent id is a no-op.
func (s *SQLiteStore) Remove(ctx context.Context, chatBoxID, messageID string) error {
	return s.mutateIndex(ctx, chatBoxID, func(ids []string) ([]string, bool) {
		kept := ids[:0:0]
		for _, id := range ids {
			if id != messageID {
				kept = append(kept, id)
			}
		}
		return kept, len(kept) != len(ids)
	}, false)
}

// mutateIndex applies fn to the chat box's message-id list inside a
// transaction. requireRow controls whether a missing chat box is an error.
func (s *SQLiteStore) mutateIndex(ctx context.Context, chatBoxID string, fn func([]string) ([]string, bool), requireRow bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRowContext(ctx, `
		SELECT message_ids FROM chatboxes WHERE id = ?
	`, chatBoxID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		if requireRow {
			return ErrRoomNotFound
		}
		return nil
	}
	if err != nil {
		return err
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return err
	}

	ids, changed := fn(ids)
	if !changed {
		return tx.Commit()
	}

	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE chatboxes SET message_ids = ?, last_modified = ? WHERE id = ?
	`, string(data), time.Now().UTC(), chatBoxID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetChatBox retrieves a chat-box document by id. Returns nil if it does
// not exist.
func (s *SQLiteStore) GetChatBox(ctx context.Context, chatBoxID string) (*models.ChatBox, error) {
	box := &models.ChatBox{}
	var raw string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, message_ids, last_modified FROM chatboxes WHERE id = ?
	`, chatBoxID).Scan(&box.ID, &raw, &box.LastModified)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(raw), &box.MessageIDs); err != nil {
		return nil, err
	}
	return box, nil
}

// RecordPairing inserts a conversation-pair row.
func (s *SQLiteStore) RecordPairing(ctx context.Context, pair *models.ConversationPair) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversation_pairs (chatbox_id, user_message_id, bot_message_id)
		VALUES (?, ?, ?)
	`, pair.ChatBoxID, pair.UserMessageID, pair.BotMessageID)
	return err
}
