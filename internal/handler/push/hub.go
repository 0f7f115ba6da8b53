package push

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"SignalDesk/internal/view"
	applogger "SignalDesk/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait      = 10 * time.Second
	pingInterval   = 30 * time.Second
	pongWait       = 60 * time.Second
	sendBufferSize = 16
)

// Hub fans view events out to connected websocket clients. It implements
// view.Sink; a client that cannot keep up is dropped rather than allowed
// to stall the broadcast.
type Hub struct {
	log      *applogger.Logger
	upgrader websocket.Upgrader

	mu        sync.Mutex
	clients   map[*client]struct{}
	lastState []byte
	lastChart []byte
	closed    bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a websocket hub.
func NewHub(log *applogger.Logger) *Hub {
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// RegisterRoutes registers the websocket endpoint.
func (h *Hub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.Serve)
}

// Serve upgrades the connection and streams events until the peer leaves.
// The latest state and chart events are replayed so a fresh client renders
// immediately.
func (h *Hub) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	cl := &client{conn: conn, send: make(chan []byte, sendBufferSize)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return conn.Close()
	}
	h.clients[cl] = struct{}{}
	if h.lastState != nil {
		cl.send <- h.lastState
	}
	if h.lastChart != nil {
		cl.send <- h.lastChart
	}
	n := len(h.clients)
	h.mu.Unlock()

	h.log.Debug("push client connected", applogger.Int("clients", n))

	go h.writePump(cl)
	h.readPump(cl)
	return nil
}

// Publish implements view.Sink.
func (h *Hub) Publish(ev view.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("push marshal event", applogger.Error(err))
		return
	}

	h.mu.Lock()
	switch ev.Type {
	case "state":
		h.lastState = payload
	case "chart.render":
		h.lastChart = payload
	}
	for cl := range h.clients {
		select {
		case cl.send <- payload:
		default:
			// Slow consumer; close and forget it.
			delete(h.clients, cl)
			close(cl.send)
		}
	}
	h.mu.Unlock()
}

// Subscribers returns the number of connected clients.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for cl := range h.clients {
		close(cl.send)
		delete(h.clients, cl)
	}
	return nil
}

func (h *Hub) writePump(cl *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = cl.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames; it exists to notice the peer closing.
func (h *Hub) readPump(cl *client) {
	defer h.drop(cl)

	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	cl.conn.SetReadLimit(512)

	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) drop(cl *client) {
	h.mu.Lock()
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
	n := len(h.clients)
	h.mu.Unlock()

	_ = cl.conn.Close()
	h.log.Debug("push client disconnected", applogger.Int("clients", n))
}
