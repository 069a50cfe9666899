// Package realtime fans testimonial and comment events out to connected
// websocket clients, scoped to per-testimonial rooms.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"inpstories/internal/logger"

	"github.com/rs/zerolog"
)

const (
	outboundBuffer = 256
	publishTimeout = 2 * time.Second
)

// Transport carries envelopes between hub instances. Whatever a transport
// publishes must come back to every attached hub through Deliver.
type Transport interface {
	Publish(ctx context.Context, env Envelope) error
}

type Option func(*Hub)

func WithTransport(t Transport) Option {
	return func(h *Hub) { h.transport = t }
}

// WithClientRelay lets clients emit the mutation events themselves.
func WithClientRelay(enabled bool) Option {
	return func(h *Hub) { h.relayClientEvents = enabled }
}

// Hub is the registry of connected clients and their rooms.
type Hub struct {
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}
	mu      sync.RWMutex

	outbound chan Envelope
	stopCh   chan struct{}
	stopOnce sync.Once

	transport         Transport
	relayClientEvents bool
	log               zerolog.Logger
}

func NewHub(opts ...Option) *Hub {
	h := &Hub{
		clients:  make(map[*Client]struct{}),
		rooms:    make(map[string]map[*Client]struct{}),
		outbound: make(chan Envelope, outboundBuffer),
		stopCh:   make(chan struct{}),
		log:      logger.WithComponent("realtime"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hub) Start() {
	go h.run()
}

// Stop ends delivery and disconnects every client.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)

		h.mu.Lock()
		for c := range h.clients {
			c.closeSend()
		}
		h.clients = make(map[*Client]struct{})
		h.rooms = make(map[string]map[*Client]struct{})
		h.mu.Unlock()
		connectedClients.Set(0)
	})
}

func (h *Hub) run() {
	for {
		select {
		case env := <-h.outbound:
			h.broadcast(env)
		case <-h.stopCh:
			return
		}
	}
}

// Deliver queues an envelope for local clients. It blocks while the queue is full.
func (h *Hub) Deliver(env Envelope) {
	select {
	case h.outbound <- env:
	case <-h.stopCh:
	}
}

// Publish routes an envelope through the transport when one is attached, and
// straight to local clients otherwise.
func (h *Hub) Publish(env Envelope) {
	if h.transport == nil {
		h.Deliver(env)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := h.transport.Publish(ctx, env); err != nil {
		h.log.Warn().Err(err).Str("event", env.Event).Msg("transport publish failed, delivering locally")
		h.Deliver(env)
	}
}

// Broadcast sends an event to every connected client.
func (h *Hub) Broadcast(event string, payload any) {
	h.emit("", event, payload)
}

// EmitToTestimonial sends an event to the clients that joined a testimonial's room.
func (h *Hub) EmitToTestimonial(testimonialID, event string, payload any) {
	h.emit(Room(testimonialID), event, payload)
}

func (h *Hub) emit(room, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("marshal payload")
		return
	}
	h.Publish(Envelope{Room: room, Event: event, Data: data})
}

func (h *Hub) broadcast(env Envelope) {
	frame, err := json.Marshal(Frame{Event: env.Event, Data: env.Data})
	if err != nil {
		h.log.Error().Err(err).Str("event", env.Event).Msg("marshal frame")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	targets := h.clients
	if env.Room != "" {
		targets = h.rooms[env.Room]
	}

	for c := range targets {
		if env.Exclude != "" && c.id == env.Exclude {
			continue
		}
		select {
		case c.send <- frame:
		default:
			droppedTotal.Inc()
			h.log.Debug().Str("client_id", c.id).Str("event", env.Event).Msg("client buffer full, frame dropped")
		}
	}
	eventsTotal.WithLabelValues(env.Event).Inc()
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	connectedClients.Set(float64(n))
	h.log.Debug().Str("client_id", c.id).Str("user_id", c.userID).Msg("client connected")
}

// Unregister removes a client from the hub and every room and closes its queue.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	for room := range c.rooms {
		h.removeFromRoom(room, c)
	}
	c.closeSend()
	n := len(h.clients)
	h.mu.Unlock()

	connectedClients.Set(float64(n))
	h.log.Debug().Str("client_id", c.id).Msg("client disconnected")
}

func (h *Hub) Join(c *Client, testimonialID string) {
	if testimonialID == "" {
		return
	}
	room := Room(testimonialID)

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
}

func (h *Hub) Leave(c *Client, testimonialID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeFromRoom(Room(testimonialID), c)
}

// removeFromRoom expects h.mu to be held.
func (h *Hub) removeFromRoom(room string, c *Client) {
	delete(c.rooms, room)
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) RoomSize(testimonialID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[Room(testimonialID)])
}

// HandleFrame applies one inbound client frame: room membership changes and
// relays according to relayRules.
func (h *Hub) HandleFrame(c *Client, raw []byte) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		h.log.Debug().Err(err).Str("client_id", c.id).Msg("malformed frame")
		return
	}

	switch f.Event {
	case EventJoin:
		h.Join(c, testimonialRef(f.Data))
		return
	case EventLeave:
		h.Leave(c, testimonialRef(f.Data))
		return
	}

	rule, ok := relayRules[f.Event]
	if !ok {
		h.log.Debug().Str("client_id", c.id).Str("event", f.Event).Msg("unknown event")
		return
	}
	if rule.mutating && !h.relayClientEvents {
		return
	}

	env := Envelope{Event: rule.emit, Data: f.Data}
	if rule.roomScoped {
		id := testimonialRef(f.Data)
		if id == "" {
			return
		}
		env.Room = Room(id)
	}
	if rule.excludeSender {
		env.Exclude = c.id
	}
	h.Publish(env)
}
