package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"csx_ticker/internal/domain"
	"csx_ticker/internal/infra"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 512
	sendBuffer     = 16
)

// message is the envelope pushed to viewers
type message struct {
	Type string `json:"type"` // loading, render, error, clear
	Data any    `json:"data,omitempty"`
}

// command is what viewers may send back
type command struct {
	Type string `json:"type"` // retry
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub broadcasts render hand-offs to websocket viewers. The latest frame is replayed
// to every new viewer. Viewer count transitions 0 -> 1 and 1 -> 0 are reported as
// visibility changes.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	last    []byte
	retry   func()

	// visMu serializes viewer bookkeeping with visibility callbacks so that
	// callbacks observe transitions in order.
	visMu     sync.Mutex
	onVisible func(visible bool)

	upgrader websocket.Upgrader
	metrics  *infra.Metrics
}

// NewHub creates a hub. metrics may be nil.
func NewHub(metrics *infra.Metrics) *Hub {
	if metrics == nil {
		metrics = &infra.Metrics{}
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		metrics: metrics,
	}
}

// OnVisibilityChange registers fn to be called when the first viewer connects (true)
// and when the last one leaves (false). fn runs on a connection goroutine.
func (h *Hub) OnVisibilityChange(fn func(visible bool)) {
	h.visMu.Lock()
	defer h.visMu.Unlock()
	h.onVisible = fn
}

// Viewers returns the number of connected viewers
func (h *Hub) Viewers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) RenderLoading() {
	h.broadcast(message{Type: "loading"}, nil, false)
}

func (h *Hub) Render(model domain.RenderModel) {
	h.broadcast(message{Type: "render", Data: model}, nil, false)
}

func (h *Hub) RenderError(view domain.ErrorView) {
	h.broadcast(message{Type: "error", Data: view}, view.Retry, true)
}

func (h *Hub) Clear() {
	h.broadcast(message{Type: "clear"}, nil, false)
	h.mu.Lock()
	h.last = nil
	h.mu.Unlock()
}

func (h *Hub) broadcast(msg message, retry func(), keepRetry bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("Failed to encode viewer message", slog.String("type", msg.Type), slog.Any("error", err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = data
	if keepRetry {
		h.retry = retry
	} else {
		h.retry = nil
	}
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slog.Warn("Viewer too slow, dropping frame", slog.String("remote", c.conn.RemoteAddr().String()))
		}
	}
}

// ServeWS upgrades the request and serves one viewer until it disconnects
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Websocket upgrade failed", slog.Any("error", err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(c)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writePump(c)
	}()
	h.readPump(c)
	h.unregister(c)
	<-done
}

func (h *Hub) register(c *client) {
	h.visMu.Lock()
	defer h.visMu.Unlock()

	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
	n := len(h.clients)
	h.mu.Unlock()

	h.metrics.SetViewers(int32(n))
	slog.Info("Viewer connected", slog.String("remote", c.conn.RemoteAddr().String()), slog.Int("viewers", n))
	if n == 1 && h.onVisible != nil {
		h.onVisible(true)
	}
}

func (h *Hub) unregister(c *client) {
	h.visMu.Lock()
	defer h.visMu.Unlock()

	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	n := len(h.clients)
	h.mu.Unlock()

	h.metrics.SetViewers(int32(n))
	slog.Info("Viewer disconnected", slog.Int("viewers", n))
	if n == 0 && h.onVisible != nil {
		h.onVisible(false)
	}
}

func (h *Hub) readPump(c *client) {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("Viewer read failed", slog.Any("error", err))
			}
			return
		}

		var cmd command
		if err := json.Unmarshal(data, &cmd); err != nil {
			slog.Debug("Ignoring malformed viewer command", slog.Any("error", err))
			continue
		}
		if cmd.Type == "retry" {
			h.mu.Lock()
			retry := h.retry
			h.mu.Unlock()
			if retry != nil {
				go retry()
			}
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// CloseAll disconnects every viewer
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.conn.Close()
	}
}
