package relay

import (
	"context"
	"time"

	"github.com/rishugoyal805/ChatterlyAi-Backend-1/internal/metrics"
	"github.com/rishugoyal805/ChatterlyAi-Backend-1/internal/models"
)

// botFallbackText is the reply substituted whenever the responder fails.
// The room always sees a bot reply for every relayed user message.
const botFallbackText = "I'm having trouble responding right now. Please try again later."

// botSender is the identity recorded on synthetic bot messages.
const botSender = "bot"

// SendAI persists and fans out the user's message immediately, then relays
// the text to the external responder in the background. The human message
// is never delayed by the responder's latency.
func (p *Pipeline) SendAI(ctx context.Context, origin *Client, payload AIMessagePayload) {
	role := payload.Role
	if role == "" {
		role = models.RoleUser
	}

	msg, err := p.store.CreateMessage(ctx, payload.SenderName, payload.RoomID, payload.Text, role)
	if err != nil {
		p.log.Error().Err(err).Str("room", payload.RoomID).Msg("ai message create failed")
		p.broker.ToClient(origin, EventErrorMessage, ErrorPayload{Error: "Failed to send message"})
		return
	}
	if err := p.store.AppendToIndex(ctx, payload.RoomID, msg.ID); err != nil {
		p.log.Error().Err(err).Str("room", payload.RoomID).Str("message_id", msg.ID).Msg("ai index append failed")
		p.broker.ToClient(origin, EventErrorMessage, ErrorPayload{Error: "Failed to send message"})
		return
	}

	metrics.MessagesRelayed.WithLabelValues("send").Inc()
	p.broker.ToRoom(payload.RoomID, EventReceiveMessage, ReceiveMessagePayload{
		ChatBoxID:   payload.RoomID,
		SenderEmail: payload.SenderName,
		Text:        payload.Text,
		Timestamp:   msg.Timestamp,
		MessageID:   msg.ID,
	})

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.relayBot(ctx, payload, msg.ID)
	}()
}

// relayBot asks the responder for a reply, persists it as a bot message,
// and fans it out. Every failure path still delivers a reply to the room:
// responder trouble substitutes the fallback text, and a persistence
// failure is logged but does not withhold the fan-out.
func (p *Pipeline) relayBot(ctx context.Context, payload AIMessagePayload, userMessageID string) {
	start := time.Now()
	reply, err := p.responder.Reply(ctx, payload.SenderName, payload.Text)
	metrics.AIResponseDuration.Observe(time.Since(start).Seconds())

	outcome := "ok"
	if err != nil {
		p.log.Warn().Err(err).Str("room", payload.RoomID).Msg("responder failed, using fallback")
		reply = botFallbackText
		outcome = "fallback"
	}
	metrics.AIRelays.WithLabelValues(outcome).Inc()

	botMessageID := ""
	botMsg, err := p.store.CreateMessage(ctx, botSender, payload.RoomID, reply, models.RoleBot)
	if err != nil {
		p.log.Error().Err(err).Str("room", payload.RoomID).Msg("bot message create failed")
	} else {
		botMessageID = botMsg.ID
		if err := p.store.AppendToIndex(ctx, payload.RoomID, botMsg.ID); err != nil {
			p.log.Error().Err(err).Str("room", payload.RoomID).Str("message_id", botMsg.ID).Msg("bot index append failed")
		}
	}

	p.broker.ToRoom(payload.RoomID, EventReceiveBotMessage, BotMessagePayload{
		Role: models.RoleBot,
		Text: reply,
	})

	// Conversation pairing is auxiliary; losing it never blocks delivery.
	if botMessageID != "" {
		if err := p.store.RecordPairing(ctx, payload.RoomID, userMessageID, botMessageID); err != nil {
			p.log.Warn().Err(err).Str("room", payload.RoomID).Msg("pairing record failed")
		}
	}
}
