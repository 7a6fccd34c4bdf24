package store

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishugoyal805/ChatterlyAi-Backend-1/internal/metrics"
	"github.com/rishugoyal805/ChatterlyAi-Backend-1/internal/models"
)

type fakeMessages struct {
	msgs map[string]*models.Message
	err  error
	seq  int
}

func newFakeMessages() *fakeMessages {
	return &fakeMessages{msgs: make(map[string]*models.Message)}
}

func (f *fakeMessages) Create(_ context.Context, msg *models.Message) error {
	if f.err != nil {
		return f.err
	}
	f.seq++
	msg.ID = string(rune('a' + f.seq - 1))
	msg.Timestamp = "2026-01-01T00:00:00Z"
	f.msgs[msg.ID] = msg
	return nil
}

func (f *fakeMessages) Get(_ context.Context, id string) (*models.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.msgs[id], nil
}

func (f *fakeMessages) Edit(_ context.Context, id, newText string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	msg, ok := f.msgs[id]
	if !ok {
		return false, nil
	}
	msg.Text = newText
	return true, nil
}

func (f *fakeMessages) Delete(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.msgs, id)
	return nil
}

func (f *fakeMessages) Ping(context.Context) error { return f.err }

type fakeIndex struct {
	rooms map[string][]string
	pairs []models.ConversationPair
	err   error
}

func newFakeIndex(roomIDs ...string) *fakeIndex {
	f := &fakeIndex{rooms: make(map[string][]string)}
	for _, id := range roomIDs {
		f.rooms[id] = []string{}
	}
	return f
}

func (f *fakeIndex) Append(_ context.Context, chatBoxID, messageID string) error {
	if f.err != nil {
		return f.err
	}
	ids, ok := f.rooms[chatBoxID]
	if !ok {
		return ErrRoomNotFound
	}
	f.rooms[chatBoxID] = append(ids, messageID)
	return nil
}

func (f *fakeIndex) Remove(_ context.Context, chatBoxID, messageID string) error {
	if f.err != nil {
		return f.err
	}
	kept := f.rooms[chatBoxID][:0:0]
	for _, id := range f.rooms[chatBoxID] {
		if id != messageID {
			kept = append(kept, id)
		}
	}
	f.rooms[chatBoxID] = kept
	return nil
}

func (f *fakeIndex) RecordPairing(_ context.Context, pair *models.ConversationPair) error {
	if f.err != nil {
		return f.err
	}
	f.pairs = append(f.pairs, *pair)
	return nil
}

func (f *fakeIndex) Ping(context.Context) error { return f.err }
func (f *fakeIndex) Close()                     {}

func newTestStore(messages MessageStore, index IndexStore) *Store {
	return New(messages, index, zerolog.Nop())
}

func TestCreateMessageValidation(t *testing.T) {
	msgs := newFakeMessages()
	s := newTestStore(msgs, newFakeIndex("room1"))
	ctx := context.Background()

	_, err := s.CreateMessage(ctx, "a@x.com", "room1", "   ", "user")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.CreateMessage(ctx, "a@x.com", "room with spaces", "hi", "user")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.CreateMessage(ctx, "a@x.com", "", "hi", "user")
	assert.ErrorIs(t, err, ErrValidation)

	assert.Empty(t, msgs.msgs, "validation failures never reach the backend")
}

func TestCreateMessageSetsIDAndTimestamp(t *testing.T) {
	s := newTestStore(newFakeMessages(), newFakeIndex("room1"))

	msg, err := s.CreateMessage(context.Background(), "a@x.com", "room1", "hi", "user")
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.NotEmpty(t, msg.Timestamp)
	assert.Equal(t, "room1", msg.ChatBoxID)
	assert.Equal(t, "a@x.com", msg.SenderEmail)
}

func TestCreateMessageWrapsBackendFailure(t *testing.T) {
	msgs := newFakeMessages()
	msgs.err = errors.New("connection refused")
	s := newTestStore(msgs, newFakeIndex("room1"))

	_, err := s.CreateMessage(context.Background(), "a@x.com", "room1", "hi", "user")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestAppendToIndexRoomNotFound(t *testing.T) {
	s := newTestStore(newFakeMessages(), newFakeIndex("room1"))
	ctx := context.Background()

	require.NoError(t, s.AppendToIndex(ctx, "room1", "m1"))

	err := s.AppendToIndex(ctx, "missing-room", "m1")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestAppendToIndexWrapsBackendFailure(t *testing.T) {
	index := newFakeIndex("room1")
	index.err = errors.New("connection refused")
	s := newTestStore(newFakeMessages(), index)

	err := s.AppendToIndex(context.Background(), "room1", "m1")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrRoomNotFound)
}

func TestEditMessageText(t *testing.T) {
	msgs := newFakeMessages()
	s := newTestStore(msgs, newFakeIndex())
	ctx := context.Background()

	msg, err := s.CreateMessage(ctx, "a@x.com", "room1", "hi", "user")
	require.NoError(t, err)

	ok, err := s.EditMessageText(ctx, msg.ID, "hello")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.GetMessage(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Text)

	// Missing id is a stale edit, not an error.
	ok, err = s.EditMessageText(ctx, "gone", "hello")
	require.NoError(t, err)
	assert.False(t, ok)

	// Empty text is rejected before the backend.
	_, err = s.EditMessageText(ctx, msg.ID, " ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteMessageIdempotent(t *testing.T) {
	msgs := newFakeMessages()
	index := newFakeIndex("room1")
	s := newTestStore(msgs, index)
	ctx := context.Background()

	msg, err := s.CreateMessage(ctx, "a@x.com", "room1", "hi", "user")
	require.NoError(t, err)
	require.NoError(t, s.AppendToIndex(ctx, "room1", msg.ID))

	require.NoError(t, s.DeleteMessage(ctx, msg.ID, "room1"))
	assert.Empty(t, index.rooms["room1"])

	got, err := s.GetMessage(ctx, msg.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Second delete succeeds.
	require.NoError(t, s.DeleteMessage(ctx, msg.ID, "room1"))
}

func TestRecordPairing(t *testing.T) {
	index := newFakeIndex("room1")
	s := newTestStore(newFakeMessages(), index)

	require.NoError(t, s.RecordPairing(context.Background(), "room1", "m1", "m2"))
	require.Len(t, index.pairs, 1)
	assert.Equal(t, "m1", index.pairs[0].UserMessageID)
	assert.Equal(t, "m2", index.pairs[0].BotMessageID)

	index.err = errors.New("down")
	err := s.RecordPairing(context.Background(), "room1", "m3", "m4")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestStoreOpsObserveLatency(t *testing.T) {
	s := newTestStore(newFakeMessages(), newFakeIndex("room1"))
	ctx := context.Background()

	msg, err := s.CreateMessage(ctx, "a@x.com", "room1", "hi", "user")
	require.NoError(t, err)
	require.NoError(t, s.AppendToIndex(ctx, "room1", msg.ID))
	_, err = s.EditMessageText(ctx, msg.ID, "hello")
	require.NoError(t, err)
	_, err = s.GetMessage(ctx, msg.ID)
	require.NoError(t, err)
	require.NoError(t, s.DeleteMessage(ctx, msg.ID, "room1"))
	require.NoError(t, s.RecordPairing(ctx, "room1", "m1", "m2"))

	// Every op has recorded at least one sample under its own label.
	count := testutil.CollectAndCount(metrics.StoreLatency, "chatterly_store_latency_seconds")
	assert.GreaterOrEqual(t, count, 6)
}
