// Package relay implements the room-scoped pub/sub core: the connection
// registry, presence tracking, room fan-out, and the persist-then-deliver
// message pipeline.
package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/rishugoyal805/ChatterlyAi-Backend-1/internal/ai"
	"github.com/rishugoyal805/ChatterlyAi-Backend-1/internal/metrics"
	"github.com/rishugoyal805/ChatterlyAi-Backend-1/internal/store"
)

// handlerFunc processes one inbound event from one connection.
type handlerFunc func(c *Client, data json.RawMessage)

// Hub wires the registry, presence tracker, broker, and pipeline together
// and owns the WebSocket endpoint.
type Hub struct {
	reg      *Registry
	presence *PresenceTracker
	broker   *Broker
	pipeline *Pipeline
	handlers map[string]handlerFunc
	upgrader websocket.Upgrader
	log      zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates a hub over the store adapter and responder client.
func NewHub(adapter store.Adapter, responder *ai.Client, logger zerolog.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		log:    logger.With().Str("component", "hub").Logger(),
		ctx:    ctx,
		cancel: cancel,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from anywhere, matching the
			// permissive CORS policy on the HTTP surface.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	h.reg = NewRegistry(logger)
	h.presence = NewPresenceTracker()
	h.broker = NewBroker(h.reg, logger)
	h.pipeline = NewPipeline(adapter, h.broker, responder, logger)

	h.handlers = map[string]handlerFunc{
		EventJoinChatRoom:       h.handleJoinRoom,
		EventJoinRoom:           h.handleJoinRoom,
		EventOnlineRoom:         h.handleOnlineRoom,
		EventRequestOnlineUsers: h.handleRequestOnlineUsers,
		EventSendMessage:        h.handleSendMessage,
		EventEditMessage:        h.handleEditMessage,
		EventDeleteMessage:      h.handleDeleteMessage,
		EventEditUserMessage:    h.handleEditUserMessage,
		EventChatCreated:        h.handleChatCreated,
		EventChatDeleted:        h.handleChatDeleted,
		EventSendAIMessage:      h.handleSendAIMessage,
	}

	return h
}

// ServeWS upgrades an HTTP request and attaches the connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("upgrade failed")
		return
	}

	c := newClient(conn, h.log)
	h.reg.Attach(c)
	metrics.ActiveConnections.Set(float64(h.reg.Len()))
	h.log.Info().Str("conn_id", c.ID).Str("remote", r.RemoteAddr).Msg("connection attached")

	go c.writePump()
	go c.readPump(h)
}

// dispatch routes one raw inbound frame to its handler.
func (h *Hub) dispatch(c *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.log.Debug().Err(err).Str("conn_id", c.ID).Msg("malformed envelope")
		return
	}

	handler, ok := h.handlers[env.Event]
	if !ok {
		h.log.Debug().Str("conn_id", c.ID).Str("event", env.Event).Msg("unknown event")
		return
	}

	metrics.EventsReceived.WithLabelValues(env.Event).Inc()
	handler(c, env.Data)
}

// handleDisconnect detaches the connection and updates presence. An
// in-flight send from this connection still completes and fans out.
func (h *Hub) handleDisconnect(c *Client) {
	identity, ok := h.reg.Detach(c.ID)
	if !ok {
		return
	}
	metrics.ActiveConnections.Set(float64(h.reg.Len()))
	h.log.Info().Str("conn_id", c.ID).Msg("connection detached")

	if identity != "" && h.presence.MarkOffline(identity) {
		metrics.OnlineIdentities.Set(float64(h.presence.Online()))
		h.broker.ToAll(EventUserOnlineStatus, UserOnlineStatusPayload{
			Email:    identity,
			IsOnline: false,
		})
	}
}

func (h *Hub) handleJoinRoom(c *Client, data json.RawMessage) {
	var roomID string
	if err := json.Unmarshal(data, &roomID); err != nil || roomID == "" {
		h.log.Debug().Str("conn_id", c.ID).Msg("join without room id")
		return
	}
	h.reg.JoinRoom(c.ID, roomID)
}

// handleOnlineRoom announces the connection's identity: it joins the
// identity's private notification room and marks presence. Re-announcing
// the same identity is a no-op for presence; announcing a different one
// moves the connection's presence count over.
func (h *Hub) handleOnlineRoom(c *Client, data json.RawMessage) {
	var identity string
	if err := json.Unmarshal(data, &identity); err != nil || identity == "" {
		h.log.Debug().Str("conn_id", c.ID).Msg("announce without identity")
		return
	}

	prev, ok := h.reg.AnnounceIdentity(c.ID, identity)
	if !ok {
		return
	}
	h.reg.JoinRoom(c.ID, identity)

	if prev == identity {
		return
	}
	if prev != "" && h.presence.MarkOffline(prev) {
		h.broker.ToAll(EventUserOnlineStatus, UserOnlineStatusPayload{Email: prev, IsOnline: false})
	}
	if h.presence.MarkOnline(identity) {
		h.broker.ToAll(EventUserOnlineStatus, UserOnlineStatusPayload{Email: identity, IsOnline: true})
	}
	metrics.OnlineIdentities.Set(float64(h.presence.Online()))
}

func (h *Hub) handleRequestOnlineUsers(c *Client, _ json.RawMessage) {
	h.broker.ToClient(c, EventOnlineUsersList, h.presence.Snapshot())
}

func (h *Hub) handleSendMessage(c *Client, data json.RawMessage) {
	var payload SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.broker.ToClient(c, EventErrorMessage, ErrorPayload{Error: "Failed to send message"})
		return
	}
	h.pipeline.Send(h.ctx, c, payload)
}

func (h *Hub) handleEditMessage(c *Client, data json.RawMessage) {
	var payload EditMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.broker.ToClient(c, EventErrorMessage, ErrorPayload{Error: "Failed to edit message"})
		return
	}
	h.pipeline.Edit(h.ctx, c, payload)
}

func (h *Hub) handleDeleteMessage(c *Client, data json.RawMessage) {
	var payload DeleteMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.broker.ToClient(c, EventErrorMessage, ErrorPayload{Error: "Failed to delete message"})
		return
	}
	h.pipeline.Delete(h.ctx, c, payload)
}

// handleEditUserMessage is a global rebroadcast with no persistence behind
// it; every connection sees the edit.
func (h *Hub) handleEditUserMessage(c *Client, data json.RawMessage) {
	var payload EditUserMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.log.Debug().Str("conn_id", c.ID).Msg("malformed edit-user-message")
		return
	}
	h.broker.ToAll(EventMessageEdited, MessageEditedPayload{
		MessageID: payload.MessageID,
		NewText:   payload.NewText,
	})
}

func (h *Hub) handleChatCreated(c *Client, data json.RawMessage) {
	var payload ChatCreatedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.log.Debug().Str("conn_id", c.ID).Msg("malformed chat-created")
		return
	}
	for _, user := range payload.Users {
		h.broker.ToIdentity(user, EventChatCreated, ChatCreatedNotice{ChatBox: payload.ChatBox})
	}
}

func (h *Hub) handleChatDeleted(c *Client, data json.RawMessage) {
	var payload ChatDeletedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.log.Debug().Str("conn_id", c.ID).Msg("malformed chat-deleted")
		return
	}
	for _, user := range payload.Users {
		h.broker.ToIdentity(user, EventChatDeleted, ChatDeletedNotice{ChatBoxID: payload.ChatBoxID})
	}
}

func (h *Hub) handleSendAIMessage(c *Client, data json.RawMessage) {
	var payload AIMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.broker.ToClient(c, EventErrorMessage, ErrorPayload{Error: "Failed to send message"})
		return
	}
	h.pipeline.SendAI(h.ctx, c, payload)
}

// Shutdown closes every connection and waits for in-flight AI relays.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.log.Info().Msg("shutting down hub")

	for _, c := range h.reg.AllClients() {
		c.close()
	}

	// In-flight relays keep the uncancelled hub context so they can finish
	// persisting; cancel only once they have drained.
	done := make(chan struct{})
	go func() {
		h.pipeline.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.cancel()
		return nil
	case <-time.After(timeout):
		h.cancel()
		h.log.Warn().Msg("hub shutdown timeout, ai relays still in flight")
		return context.DeadlineExceeded
	}
}
