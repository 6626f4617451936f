package ws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Local overlays are served from file:// or other ports.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server exposes a Hub over HTTP: /ws streams frames, /frame returns the
// latest one.
type Server struct {
	hub    *Hub
	logger *slog.Logger

	srv *http.Server
	ln  net.Listener
	wg  sync.WaitGroup
}

// NewServer wraps hub.
func NewServer(hub *Hub, logger *slog.Logger) *Server {
	s := &Server{hub: hub, logger: logger}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/frame", s.handleFrame)
	s.srv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	return s
}

// Start listens on addr and serves in the background.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.ln = ln
	s.logger.Info("Frame push server listening", "addr", ln.Addr().String())
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Frame push server failed", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address after Start.
func (s *Server) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Close stops the server and disconnects every client.
func (s *Server) Close(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	s.hub.mu.Lock()
	for c := range s.hub.clients {
		s.hub.removeLocked(c)
	}
	s.hub.mu.Unlock()
	s.wg.Wait()
	return err
}

func (s *Server) handleFrame(w http.ResponseWriter, _ *http.Request) {
	data := s.hub.Latest()
	if data == nil {
		http.Error(w, "no frame yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	c := s.hub.add()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.writePump(conn, c)
	}()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// Clients only listen; reading detects the close.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.hub.remove(c)
				return
			}
		}
	}()
}

func (s *Server) writePump(conn *websocket.Conn, c *client) {
	defer conn.Close()
	for msg := range c.send {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
