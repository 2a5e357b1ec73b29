package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yanqian/twin-dashboard/internal/domain/auth"
	"github.com/yanqian/twin-dashboard/internal/infra/events"
	"github.com/yanqian/twin-dashboard/pkg/metrics"
)

// Message types exchanged with the dashboard.
const (
	TypeWelcome = "welcome"
	TypePing    = "ping"
	TypePong    = "pong"
)

// TokenValidator authenticates the token passed on the upgrade request.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (auth.Claims, error)
}

// Config tunes connection limits and keepalive.
type Config struct {
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	MaxClients     int
	AllowedOrigins []string
	Metrics        *metrics.Metrics
}

// Hub tracks live dashboard connections and routes user events to them.
type Hub struct {
	cfg      Config
	auth     TokenValidator
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
	wg      sync.WaitGroup
}

type client struct {
	conn      *websocket.Conn
	userID    int64
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func (c *client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// NewHub constructs the hub.
func NewHub(cfg Config, validator TokenValidator, logger *slog.Logger) *Hub {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.MaxClients <= 0 {
		cfg.MaxClients = 100
	}
	h := &Hub{
		cfg:     cfg,
		auth:    validator,
		logger:  logger.With("component", "ws.hub"),
		clients: make(map[*client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range h.cfg.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// ServeHTTP authenticates via ?token= (or a Bearer header) and upgrades the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		if header := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(header), "bearer ") {
			token = strings.TrimSpace(header[len("bearer "):])
		}
	}
	claims, err := h.auth.ValidateToken(r.Context(), token)
	if err != nil {
		http.Error(w, "invalid or missing token", http.StatusUnauthorized)
		return
	}

	h.mu.RLock()
	closed, count := h.closed, len(h.clients)
	h.mu.RUnlock()
	if closed {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}
	if count >= h.cfg.MaxClients {
		http.Error(w, "maximum clients reached", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &client{
		conn:   conn,
		userID: claims.UserID,
		send:   make(chan []byte, 16),
		done:   make(chan struct{}),
	}
	if !h.register(c) {
		conn.Close()
		return
	}
	h.logger.Info("websocket connected", "user_id", c.userID)

	h.enqueue(c, map[string]any{
		"type":      TypeWelcome,
		"user_id":   c.userID,
		"timestamp": time.Now().UTC(),
	})

	go func() {
		defer h.wg.Done()
		h.writeLoop(c)
	}()
	h.readLoop(c)
}

// register counts c's writer in wg under the same lock Close takes, so Close
// never waits on a counter that is still being raised.
func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || len(h.clients) >= h.cfg.MaxClients {
		return false
	}
	h.clients[c] = struct{}{}
	h.wg.Add(1)
	h.cfg.Metrics.ClientConnected()
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		h.cfg.Metrics.ClientDisconnected()
	}
	h.mu.Unlock()
	c.close()
}

func (h *Hub) readLoop(c *client) {
	defer func() {
		h.unregister(c)
		h.logger.Info("websocket disconnected", "user_id", c.userID)
	}()
	readTimeout := 2*h.cfg.PingInterval + h.cfg.WriteTimeout
	c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", "user_id", c.userID, "error", err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(readTimeout))

		var msg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			h.logger.Debug("websocket message ignored", "user_id", c.userID, "error", err)
			continue
		}
		if msg.Type == TypePing {
			h.enqueue(c, map[string]any{"type": TypePong, "timestamp": time.Now().UTC()})
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
		c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		c.conn.Close()
	}()
	for {
		select {
		case payload := <-c.send:
			if err := h.write(c, payload); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			ping, _ := json.Marshal(map[string]any{"type": TypePing, "timestamp": time.Now().UTC()})
			if err := h.write(c, ping); err != nil {
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (h *Hub) write(c *client, payload []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		h.logger.Warn("websocket write failed", "user_id", c.userID, "error", err)
		return err
	}
	return nil
}

// enqueue drops the message when the client's buffer is full.
func (h *Hub) enqueue(c *client, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("websocket message encode failed", "error", err)
		return
	}
	select {
	case c.send <- data:
	case <-c.done:
	default:
		h.logger.Warn("websocket send buffer full, dropping message", "user_id", c.userID)
	}
}

// SendToUser delivers msg to every connection of userID and reports how many were reached.
func (h *Hub) SendToUser(userID int64, msg any) int {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		if c.userID == userID {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()
	for _, c := range targets {
		h.enqueue(c, msg)
	}
	return len(targets)
}

// Dispatch is the events.Handler that forwards bus events to the owning user.
// The payload's fields are flattened next to "type".
func (h *Hub) Dispatch(_ context.Context, event events.Event) {
	msg := map[string]json.RawMessage{}
	if len(event.Payload) > 0 {
		if err := json.Unmarshal(event.Payload, &msg); err != nil {
			msg = map[string]json.RawMessage{"data": event.Payload}
		}
	}
	typ, _ := json.Marshal(event.Type)
	msg["type"] = typ
	delivered := h.SendToUser(event.UserID, msg)
	h.cfg.Metrics.EventDelivered(event.Type, delivered)
	h.logger.Debug("event dispatched", "type", event.Type, "user_id", event.UserID, "connections", delivered)
}

// ClientCount reports the number of live connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and waits for their writers to exit.
func (h *Hub) Close(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	for _, c := range clients {
		c.close()
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Join(errors.New("websocket hub close timed out"), ctx.Err())
	}
}
