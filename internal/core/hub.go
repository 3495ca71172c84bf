package core

import (
	"context"

	"github.com/rs/zerolog"
)

type delivery struct {
	userID int64
	event  *Event
}

// Hub fans out events to the clients subscribed for each user.
// All client bookkeeping happens on the Run goroutine.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	publish    chan delivery
	done       chan struct{}

	clients map[int64]map[*Client]struct{}
	log     *zerolog.Logger
}

// NewHub creates a hub. Run must be called for it to deliver anything.
func NewHub(logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		publish:    make(chan delivery, 64),
		done:       make(chan struct{}),
		clients:    make(map[int64]map[*Client]struct{}),
		log:        logger,
	}
}

// Run processes registrations and deliveries until ctx is cancelled.
// On exit every remaining client's Events channel is closed.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case c := <-h.register:
			set, ok := h.clients[c.UserID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[c.UserID] = set
			}
			set[c] = struct{}{}
			h.log.Debug().Str("client_id", c.ID).Int64("user_id", c.UserID).Msg("client subscribed")
		case c := <-h.unregister:
			h.remove(c)
		case d := <-h.publish:
			for c := range h.clients[d.userID] {
				select {
				case c.Events <- d.event:
				default:
					h.log.Warn().Str("client_id", c.ID).Int64("user_id", d.userID).Msg("client buffer full, dropping event")
				}
			}
		case <-ctx.Done():
			for _, set := range h.clients {
				for c := range set {
					close(c.Events)
				}
			}
			h.clients = make(map[int64]map[*Client]struct{})
			return
		}
	}
}

// RegisterClient subscribes c to events for c.UserID.
func (h *Hub) RegisterClient(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.Events)
	}
}

// UnregisterClient removes c and closes its Events channel.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish queues ev for every client of userID. It drops the event once the hub has stopped.
func (h *Hub) Publish(userID int64, ev *Event) {
	select {
	case h.publish <- delivery{userID: userID, event: ev}:
	case <-h.done:
	}
}

func (h *Hub) remove(c *Client) {
	set, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.Events)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
	h.log.Debug().Str("client_id", c.ID).Int64("user_id", c.UserID).Msg("client unsubscribed")
}
