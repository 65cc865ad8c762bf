// Package live pushes refreshed item quotes to websocket subscribers.
package live

import (
	"context"
	"net/http"
	"time"

	"runetick/internal/market"
	"runetick/internal/metrics"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type subscription struct {
	client *Client
	op     string
	items  []string
}

// Hub owns the client set and the last broadcast quotes. All state is
// confined to the Run goroutine.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	subscribe  chan subscription
	broadcast  chan map[string]market.Quote
	done       chan struct{}

	clients map[*Client]struct{}
	latest  map[string]market.Quote

	upgrader websocket.Upgrader
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time
}

func NewHub(m *metrics.Metrics, log *zap.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subscribe:  make(chan subscription),
		broadcast:  make(chan map[string]market.Quote),
		done:       make(chan struct{}),
		clients:    make(map[*Client]struct{}),
		latest:     make(map[string]market.Quote),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// requests reach the hub only after the auth middleware
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		metrics: m,
		log:     log.Named("live"),
		now:     time.Now,
	}
}

// Run is the hub loop. It returns when ctx is cancelled, closing every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.metrics.LiveClients.Set(float64(len(h.clients)))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}

		case s := <-h.subscribe:
			if _, ok := h.clients[s.client]; !ok {
				continue
			}
			h.applySubscription(s)

		case quotes := <-h.broadcast:
			h.latest = quotes
			h.metrics.LiveBroadcasts.Inc()
			ts := h.now().UnixMilli()

			for c := range h.clients {
				data := filter(quotes, c.subs)
				if len(data) == 0 {
					continue
				}
				select {
				case c.send <- Update{Topic: "prices", Type: TypeDelta, Data: data, Ts: ts}:
				default:
					// client too slow, drop it so the hub never blocks
					h.metrics.LiveDropped.Inc()
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) applySubscription(s subscription) {
	c := s.client
	switch s.op {
	case OpSubscribe:
		for _, topic := range s.items {
			c.subs[itemFromTopic(topic)] = struct{}{}
		}
		snapshot := Update{Topic: "prices", Type: TypeSnapshot, Data: filter(h.latest, c.subs), Ts: h.now().UnixMilli()}
		select {
		case c.send <- snapshot:
		default:
			h.metrics.LiveDropped.Inc()
			h.drop(c)
		}
	case OpUnsubscribe:
		for _, topic := range s.items {
			delete(c.subs, itemFromTopic(topic))
		}
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.metrics.LiveClients.Set(float64(len(h.clients)))
}

// Broadcast hands a refreshed quote set to the hub loop.
func (h *Hub) Broadcast(ctx context.Context, quotes map[string]market.Quote) error {
	select {
	case h.broadcast <- quotes:
		return nil
	case <-h.done:
		return context.Canceled
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ServeWS upgrades the request and attaches a new client to the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &Client{
		hub:  h,
		conn: conn,
		send: make(chan Update, sendBuffer),
		subs: make(map[string]struct{}),
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return context.Canceled
	case <-r.Context().Done():
		conn.Close()
		return r.Context().Err()
	}

	go c.writePump()
	go c.readPump()
	return nil
}
