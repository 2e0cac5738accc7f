// Package roomgateway is the push half of the sync channel: a websocket fanout
// that bridges bus notifications to the browsers watching a room. Delivery is
// best-effort; a slow or wedged client is dropped rather than allowed to stall
// the rest of the room, and dropped clients converge through the poll
// endpoint.
package roomgateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/katilkim/katilkim-server/app/eventbus"
	roomevents "github.com/katilkim/katilkim-server/app/modules/room/domain/events"
	"github.com/katilkim/katilkim-server/internal/observability"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Envelope is the frame sent to websocket clients: the topic that fired plus
// the payload published on the bus, passed through verbatim.
type Envelope struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Gateway fans bus notifications out to websocket clients grouped by room
// code.
type Gateway struct {
	bus     eventbus.EventBus
	logger  *slog.Logger
	metrics *observability.Metrics

	mu    sync.RWMutex
	rooms map[string]map[*client]bool
}

// NewGateway creates a new Gateway.
func NewGateway(bus eventbus.EventBus, logger *slog.Logger, metrics *observability.Metrics) *Gateway {
	return &Gateway{
		bus:     bus,
		logger:  logger,
		metrics: metrics,
		rooms:   make(map[string]map[*client]bool),
	}
}

// Run subscribes to the room topics and pumps notifications to clients until
// the context is canceled.
func (g *Gateway) Run(ctx context.Context) error {
	topics := []string{
		roomevents.RoomCreated,
		roomevents.RoomUpdated,
		roomevents.RoomFinished,
		roomevents.PlayerJoined,
		roomevents.PlayerLeft,
	}
	for _, topic := range topics {
		ch, err := g.bus.Subscribe(ctx, topic)
		if err != nil {
			return err
		}
		go g.pump(ctx, topic, ch)
	}
	return nil
}

func (g *Gateway) pump(ctx context.Context, topic string, ch <-chan *message.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			g.dispatch(topic, msg)
			msg.Ack()
		}
	}
}

func (g *Gateway) dispatch(topic string, msg *message.Message) {
	code := msg.Metadata.Get(roomevents.MetadataRoomCode)
	if code == "" {
		g.logger.Warn("Dropping notification without a room code", slog.String("topic", topic))
		return
	}

	frame, err := json.Marshal(Envelope{Topic: topic, Payload: json.RawMessage(msg.Payload)})
	if err != nil {
		g.logger.Error("Failed to marshal websocket frame", slog.Any("error", err))
		return
	}

	g.mu.RLock()
	clients := g.rooms[code]
	stalled := make([]*client, 0)
	for c := range clients {
		select {
		case c.send <- frame:
		default:
			// Full buffer means the reader is gone or hopeless.
			stalled = append(stalled, c)
		}
	}
	g.mu.RUnlock()

	for _, c := range stalled {
		g.logger.Warn("Dropping stalled websocket client", slog.String("room_code", code))
		g.remove(code, c)
	}
}

// ServeHTTP upgrades GET /{code} to a websocket subscription on that room.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		http.Error(w, "missing room code", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("Websocket upgrade failed", slog.Any("error", err))
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, 16),
	}
	g.add(code, c)

	go c.writePump()
	c.readPump(g, code)
}

func (g *Gateway) add(code string, c *client) {
	g.mu.Lock()
	if g.rooms[code] == nil {
		g.rooms[code] = make(map[*client]bool)
	}
	g.rooms[code][c] = true
	g.mu.Unlock()
	g.metrics.WebsocketClients.Inc()
}

func (g *Gateway) remove(code string, c *client) {
	g.mu.Lock()
	clients, ok := g.rooms[code]
	if ok {
		if _, present := clients[c]; !present {
			ok = false
		} else {
			delete(clients, c)
			if len(clients) == 0 {
				delete(g.rooms, code)
			}
		}
	}
	g.mu.Unlock()

	if ok {
		close(c.send)
		g.metrics.WebsocketClients.Dec()
	}
}

// clientCount reports the connected clients for a room.
func (g *Gateway) clientCount(code string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms[code])
}

// readPump drains the connection until it closes. Clients send nothing
// meaningful upstream; all mutations go through the HTTP API.
func (c *client) readPump(g *Gateway, code string) {
	defer func() {
		g.remove(code, c)
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()

	for frame := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
	}
}
