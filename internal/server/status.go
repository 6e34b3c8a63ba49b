package server

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/Integrity-Ltd/energymeter-admin/internal/config"
)

const (
	statusOnline  = "online"
	statusOffline = "offline"
)

type statusMessage struct {
	Status string `json:"status"`
}

// statusHub pushes backend reachability to every connected page so the
// navbar indicator updates without a reload.
type statusHub struct {
	mu        sync.Mutex
	clients   map[*websocket.Conn]bool
	broadcast chan statusMessage
	current   statusMessage
}

func newStatusHub() *statusHub {
	return &statusHub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan statusMessage, 16),
		current:   statusMessage{Status: statusOffline},
	}
}

func (h *statusHub) run() {
	for msg := range h.broadcast {
		h.mu.Lock()
		h.current = msg
		for conn := range h.clients {
			if err := conn.WriteJSON(msg); err != nil {
				conn.Close()
				delete(h.clients, conn)
			}
		}
		h.mu.Unlock()
	}
}

func (h *statusHub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
}

func (h *statusHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

func (h *statusHub) Current() statusMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

func (s *Server) pollBackend() {
	interval := config.StatusInterval()
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), config.APITimeout())
		msg := statusMessage{Status: statusOnline}
		if err := s.api.Health(ctx); err != nil {
			msg.Status = statusOffline
		}
		cancel()
		s.status.broadcast <- msg
	}
}

func (s *Server) handleStatusWS(conn *websocket.Conn) {
	defer func() {
		s.status.remove(conn)
		conn.Close()
	}()

	if err := conn.WriteJSON(s.status.Current()); err != nil {
		return
	}
	s.status.add(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
