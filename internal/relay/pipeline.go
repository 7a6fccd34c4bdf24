package relay

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rishugoyal805/ChatterlyAi-Backend-1/internal/ai"
	"github.com/rishugoyal805/ChatterlyAi-Backend-1/internal/metrics"
	"github.com/rishugoyal805/ChatterlyAi-Backend-1/internal/models"
	"github.com/rishugoyal805/ChatterlyAi-Backend-1/internal/store"
)

// Pipeline orchestrates message intents: validate, persist, then fan out.
// Persistence failure suppresses fan-out and reports to the originating
// connection only; other room members never see partial state.
type Pipeline struct {
	store     store.Adapter
	broker    *Broker
	responder *ai.Client
	log       zerolog.Logger
	wg        sync.WaitGroup
}

// NewPipeline creates a pipeline over the store adapter and broker.
func NewPipeline(adapter store.Adapter, broker *Broker, responder *ai.Client, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		store:     adapter,
		broker:    broker,
		responder: responder,
		log:       logger.With().Str("component", "pipeline").Logger(),
	}
}

// Send persists a message (create, then index append) and fans it out to
// the room. Different rooms, and even concurrent sends to the same room,
// run in parallel; members observe events in persistence-completion order.
func (p *Pipeline) Send(ctx context.Context, origin *Client, payload SendMessagePayload) {
	msg, err := p.store.CreateMessage(ctx, payload.SenderEmail, payload.RoomID, payload.Text, models.RoleUser)
	if err != nil {
		p.log.Error().Err(err).Str("room", payload.RoomID).Msg("message create failed")
		p.broker.ToClient(origin, EventErrorMessage, ErrorPayload{Error: "Failed to send message"})
		return
	}

	if err := p.store.AppendToIndex(ctx, payload.RoomID, msg.ID); err != nil {
		p.log.Error().Err(err).Str("room", payload.RoomID).Str("message_id", msg.ID).Msg("index append failed")
		p.broker.ToClient(origin, EventErrorMessage, ErrorPayload{Error: "Failed to send message"})
		return
	}

	metrics.MessagesRelayed.WithLabelValues("send").Inc()
	p.broker.ToRoom(payload.RoomID, EventReceiveMessage, ReceiveMessagePayload{
		ChatBoxID:   payload.RoomID,
		SenderEmail: payload.SenderEmail,
		Text:        payload.Text,
		Timestamp:   msg.Timestamp,
		MessageID:   msg.ID,
	})
}

// Edit updates a message's text and fans out message-edited. An edit of a
// missing message still fans out: the adapter signals "not found" without
// an error and this pipeline deliberately does not distinguish it.
func (p *Pipeline) Edit(ctx context.Context, origin *Client, payload EditMessagePayload) {
	if _, err := p.store.EditMessageText(ctx, payload.MessageID, payload.NewText); err != nil {
		p.log.Error().Err(err).Str("message_id", payload.MessageID).Msg("message edit failed")
		p.broker.ToClient(origin, EventErrorMessage, ErrorPayload{Error: "Failed to edit message"})
		return
	}

	metrics.MessagesRelayed.WithLabelValues("edit").Inc()
	p.broker.ToRoom(payload.RoomID, EventMessageEdited, MessageEditedPayload{
		MessageID: payload.MessageID,
		NewText:   payload.NewText,
	})
}

// Delete removes a message and fans out message-deleted. Deleting an
// already-deleted message succeeds and still confirms to the room.
func (p *Pipeline) Delete(ctx context.Context, origin *Client, payload DeleteMessagePayload) {
	if err := p.store.DeleteMessage(ctx, payload.MessageID, payload.RoomID); err != nil {
		p.log.Error().Err(err).Str("message_id", payload.MessageID).Msg("message delete failed")
		p.broker.ToClient(origin, EventErrorMessage, ErrorPayload{Error: "Failed to delete message"})
		return
	}

	metrics.MessagesRelayed.WithLabelValues("delete").Inc()
	p.broker.ToRoom(payload.RoomID, EventMessageDeleted, MessageDeletedPayload{
		MessageID: payload.MessageID,
	})
}

// Wait blocks until in-flight AI relays have drained.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}
