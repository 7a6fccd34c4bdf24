package relay

import (
	"github.com/rs/zerolog"

	"github.com/rishugoyal805/ChatterlyAi-Backend-1/internal/metrics"
)

// Broker fans events out to room members, to a single identity's private
// room, or to every attached connection. Delivery order within a room
// follows the order callers invoke it; the broker never reorders.
type Broker struct {
	reg *Registry
	log zerolog.Logger
}

// NewBroker creates a broker over the registry.
func NewBroker(reg *Registry, logger zerolog.Logger) *Broker {
	return &Broker{
		reg: reg,
		log: logger.With().Str("component", "broker").Logger(),
	}
}

// ToRoom delivers an event to every connection joined to the room.
func (b *Broker) ToRoom(roomID, event string, data any) {
	payload, err := marshalEvent(event, data)
	if err != nil {
		b.log.Error().Err(err).Str("event", event).Msg("marshal failed")
		return
	}
	b.deliver(b.reg.RoomMembers(roomID), payload, event)
}

// ToIdentity delivers an event to the identity's private room. Connections
// join it when they announce themselves via online-room.
func (b *Broker) ToIdentity(identity, event string, data any) {
	b.ToRoom(identity, event, data)
}

// ToAll delivers an event to every attached connection.
func (b *Broker) ToAll(event string, data any) {
	payload, err := marshalEvent(event, data)
	if err != nil {
		b.log.Error().Err(err).Str("event", event).Msg("marshal failed")
		return
	}
	b.deliver(b.reg.AllClients(), payload, event)
}

// ToClient delivers an event to one connection only.
func (b *Broker) ToClient(c *Client, event string, data any) {
	payload, err := marshalEvent(event, data)
	if err != nil {
		b.log.Error().Err(err).Str("event", event).Msg("marshal failed")
		return
	}
	b.deliver([]*Client{c}, payload, event)
}

func (b *Broker) deliver(clients []*Client, payload []byte, event string) {
	for _, c := range clients {
		if c.trySend(payload) {
			metrics.FanoutDeliveries.Inc()
			continue
		}
		// Peer stopped reading; drop the connection and let its read
		// pump detach it.
		b.log.Warn().Str("conn_id", c.ID).Str("event", event).Msg("send buffer full, dropping connection")
		c.close()
	}
}
