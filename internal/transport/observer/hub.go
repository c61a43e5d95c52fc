// Package observer streams simulation snapshots to websocket clients.
package observer

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/vsrbench/internal/dynamo"
	"github.com/san-kum/vsrbench/internal/logging"
)

const (
	clientBuffer = 64
	writeTimeout = 5 * time.Second
)

// Hub is a dynamo.Observer that fans snapshots out to every connected
// client. OnSnapshot never blocks the stepping goroutine: a client whose
// buffer is full misses that frame.
type Hub struct {
	every    int
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[uint64]chan []byte
	joined  chan struct{}
	closed  bool

	nextID  atomic.Uint64
	seen    atomic.Int64
	dropped atomic.Int64
}

// NewHub sends every n-th snapshot; n < 1 sends all of them.
func NewHub(every int, logger *slog.Logger) *Hub {
	return &Hub{
		every:  max(every, 1),
		logger: logging.Discard(logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[uint64]chan []byte),
		joined:  make(chan struct{}),
	}
}

func (h *Hub) OnSnapshot(s dynamo.Snapshot) {
	if (h.seen.Add(1)-1)%int64(h.every) != 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients) == 0 {
		return
	}
	b, err := json.Marshal(s)
	if err != nil {
		h.logger.Warn("cannot encode snapshot", "time", s.Time, "error", err)
		return
	}
	for _, ch := range h.clients {
		select {
		case ch <- b:
		default:
			h.dropped.Add(1)
		}
	}
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped counts frames skipped because a client was too slow.
func (h *Hub) Dropped() int64 { return h.dropped.Load() }

// WaitForClient blocks until the first client connects or ctx is done.
func (h *Hub) WaitForClient(ctx context.Context) error {
	select {
	case <-h.joined:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.clients {
		close(ch)
		delete(h.clients, id)
	}
}

func (h *Hub) join() (uint64, chan []byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0, nil, false
	}
	id := h.nextID.Add(1)
	ch := make(chan []byte, clientBuffer)
	h.clients[id] = ch
	if id == 1 {
		close(h.joined)
	}
	return id, ch, true
}

func (h *Hub) leave(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.clients[id]; ok {
		close(ch)
		delete(h.clients, id)
	}
}

// Handler upgrades the request and streams snapshots as JSON text frames
// until the client goes away or the hub is closed.
func (h *Hub) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		id, out, ok := h.join()
		if !ok {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "run finished"), time.Now().Add(time.Second))
			return
		}
		h.logger.Debug("observer joined", "client", id, "remote", r.RemoteAddr)
		defer h.leave(id)

		// Reads only detect the client closing.
		gone := make(chan struct{})
		go func() {
			defer close(gone)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-gone:
				return
			case b, ok := <-out:
				if !ok {
					_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run finished"), time.Now().Add(time.Second))
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					return
				}
			}
		}
	}
}
