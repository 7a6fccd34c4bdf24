package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/rishugoyal805/ChatterlyAi-Backend-1/internal/models"
	"github.com/rishugoyal805/ChatterlyAi-Backend-1/internal/store"
)

// fakeAdapter is an in-memory store.Adapter with failure toggles.
type fakeAdapter struct {
	mu       sync.Mutex
	seq      int
	messages map[string]*models.Message
	rooms    map[string][]string // seeded room id → ordered message ids
	pairs    []models.ConversationPair

	failCreate bool
	failAppend bool
	failEdit   bool
	failDelete bool
	failPair   bool
}

func newFakeAdapter(roomIDs ...string) *fakeAdapter {
	f := &fakeAdapter{
		messages: make(map[string]*models.Message),
		rooms:    make(map[string][]string),
	}
	for _, id := range roomIDs {
		f.rooms[id] = []string{}
	}
	return f
}

func (f *fakeAdapter) CreateMessage(_ context.Context, senderEmail, chatBoxID, text, role string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return nil, store.ErrStoreUnavailable
	}
	f.seq++
	msg := &models.Message{
		ID:          fmt.Sprintf("msg-%d", f.seq),
		ChatBoxID:   chatBoxID,
		SenderEmail: senderEmail,
		Text:        text,
		Role:        role,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	f.messages[msg.ID] = msg
	return msg, nil
}

func (f *fakeAdapter) AppendToIndex(_ context.Context, chatBoxID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAppend {
		return store.ErrStoreUnavailable
	}
	ids, ok := f.rooms[chatBoxID]
	if !ok {
		return store.ErrRoomNotFound
	}
	f.rooms[chatBoxID] = append(ids, messageID)
	return nil
}

func (f *fakeAdapter) EditMessageText(_ context.Context, messageID, newText string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failEdit {
		return false, store.ErrStoreUnavailable
	}
	msg, ok := f.messages[messageID]
	if !ok {
		return false, nil
	}
	msg.Text = newText
	return true, nil
}

func (f *fakeAdapter) DeleteMessage(_ context.Context, messageID, chatBoxID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete {
		return store.ErrStoreUnavailable
	}
	delete(f.messages, messageID)
	kept := f.rooms[chatBoxID][:0:0]
	for _, id := range f.rooms[chatBoxID] {
		if id != messageID {
			kept = append(kept, id)
		}
	}
	f.rooms[chatBoxID] = kept
	return nil
}

func (f *fakeAdapter) GetMessage(_ context.Context, messageID string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.messages[messageID], nil
}

func (f *fakeAdapter) RecordPairing(_ context.Context, chatBoxID, userMessageID, botMessageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPair {
		return store.ErrStoreUnavailable
	}
	f.pairs = append(f.pairs, models.ConversationPair{
		ChatBoxID:     chatBoxID,
		UserMessageID: userMessageID,
		BotMessageID:  botMessageID,
	})
	return nil
}

func (f *fakeAdapter) messageText(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := f.messages[id]; ok {
		return msg.Text
	}
	return ""
}

func (f *fakeAdapter) indexOf(roomID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.rooms[roomID]...)
}

func (f *fakeAdapter) pairCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pairs)
}

// attachClient attaches a connectionless client to the hub, for driving
// dispatch directly and reading fan-out from the send channel.
func attachClient(h *Hub) *Client {
	c := newClient(nil, zerolog.Nop())
	h.reg.Attach(c)
	return c
}

// envelope builds an inbound frame.
func envelope(t *testing.T, event string, data any) []byte {
	t.Helper()
	payload, err := marshalEvent(event, data)
	require.NoError(t, err)
	return payload
}

// readEvent reads one outbound envelope from the client, failing the test
// if nothing arrives.
func readEvent(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case payload := <-c.send:
		var env Envelope
		require.NoError(t, json.Unmarshal(payload, &env))
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Envelope{}
	}
}

// requireNoEvent asserts the client's outbound queue is empty.
func requireNoEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case payload := <-c.send:
		t.Fatalf("unexpected event: %s", payload)
	default:
	}
}

func decodeData[T any](t *testing.T, env Envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}
