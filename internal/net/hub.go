// Package net publishes a read-only live mirror of the board to watchers on
// the LAN over websockets and announces it with mDNS.
package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"DocInk/internal/geom"
	"DocInk/internal/state"

	"github.com/gorilla/websocket"
)

// Snapshot is the state a watcher sees: the current page, its ink and the
// host's viewport.
type Snapshot struct {
	Seq       uint64       `json:"seq"`
	Page      int          `json:"page"`
	PageCount int          `json:"page_count"`
	Zoom      float64      `json:"zoom"`
	Pan       geom.Point   `json:"pan"`
	Paths     []state.Path `json:"paths"`
}

const writeWait = 5 * time.Second

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans snapshots out to every connected watcher. Watchers that fall behind
// only get the latest snapshot. Messages from watchers are ignored.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]bool
	latest  []byte
	seq     uint64

	upgrader websocket.Upgrader
}

// NewHub returns a hub with no watchers.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Publish sends s to all watchers and keeps it for the ones that join later.
func (h *Hub) Publish(s Snapshot) error {
	h.mu.Lock()
	h.seq++
	s.Seq = h.seq
	data, err := json.Marshal(s)
	if err != nil {
		h.mu.Unlock()
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	h.latest = data
	h.mu.Unlock()

	h.Broadcast(data)
	return nil
}

// Broadcast queues data on every watcher, replacing anything still unsent.
func (h *Hub) Broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		offer(c.send, data)
	}
}

func offer(ch chan []byte, data []byte) {
	select {
	case ch <- data:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- data:
	default:
	}
}

// ClientCount returns the number of connected watchers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
	if h.latest != nil {
		c.send <- h.latest
	}
	log.Printf("[MIRROR] Watcher connected from %s", c.conn.RemoteAddr())
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.clients[c] {
		return
	}
	delete(h.clients, c)
	close(c.send)
	log.Printf("[MIRROR] Watcher %s left", c.conn.RemoteAddr())
}

// Handler serves the websocket stream at /ws and the latest snapshot as JSON
// at /snapshot.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.serveWS)
	mux.HandleFunc("/snapshot", h.serveSnapshot)
	return mux
}

func (h *Hub) serveSnapshot(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	data := h.latest
	h.mu.RUnlock()
	if data == nil {
		http.Error(w, "no snapshot yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[MIRROR] Upgrade failed: %v", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, 1)}
	h.add(c)
	go h.writeLoop(c)
	h.readLoop(c)
}

// readLoop discards watcher messages and notices when the watcher leaves.
func (h *Hub) readLoop(c *client) {
	defer h.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("[MIRROR] Send to %s failed: %v", c.conn.RemoteAddr(), err)
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Serve runs the mirror on addr until ctx is done.
func Serve(ctx context.Context, addr string, h *Hub) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start mirror on %s: %w", addr, err)
	}
	srv := &http.Server{Handler: h.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	log.Printf("[MIRROR] Listening on %s", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("mirror server: %w", err)
	}
	return nil
}

// Watch connects to the mirror at addr (host:port) and calls fn with every
// snapshot until ctx is done or the host goes away.
func Watch(ctx context.Context, addr string, fn func(Snapshot)) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, "ws://"+addr+"/ws", nil)
	if err != nil {
		return fmt.Errorf("connect to mirror %s: %w", addr, err)
	}
	defer conn.Close()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("read snapshot: %w", err)
		}
		var s Snapshot
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode snapshot: %w", err)
		}
		fn(s)
	}
}
