// Package server exposes a host.Runner over websockets. Each connection
// either plays one human seat or watches as a spectator.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/host"
)

const spectator = -1

// Server fans runner events out to websocket clients and feeds their
// actions back into the runner.
type Server struct {
	runner   *host.Runner
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*Connection]struct{}
	seats map[int]*Connection
}

// New creates a server and subscribes it to runner.
func New(runner *host.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner: runner,
		logger: logger.WithPrefix("server"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for now
			},
		},
		conns: make(map[*Connection]struct{}),
		seats: make(map[int]*Connection),
	}
	runner.Subscribe(s)
	return s
}

// Handler returns the http handler serving /ws and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.closeAll()
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// OnEvent queues e for every client, redacted for its seat.
func (s *Server) OnEvent(e game.Event) {
	s.mu.Lock()
	conns := make([]*Connection, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	bySeat := make(map[int]*Message)
	for _, c := range conns {
		msg, ok := bySeat[c.seat]
		if !ok {
			var err error
			msg, err = newEventMessage(redactEvent(e, c.seat))
			if err != nil {
				s.logger.Error("Failed to encode event", "seat", c.seat, "error", err)
			}
			bySeat[c.seat] = msg
		}
		if msg != nil {
			c.enqueue(msg)
		}
	}
}

// Connections returns the number of open connections.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) parseSeat(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("seat")
	if raw == "" {
		return spectator, nil
	}
	seat, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid seat %q", raw)
	}
	if seat < 0 || seat >= s.runner.SeatCount() {
		return 0, fmt.Errorf("%w: %d", game.ErrUnknownSeat, seat)
	}
	if s.runner.IsBot(seat) {
		return 0, fmt.Errorf("%w: %d", host.ErrBotSeat, seat)
	}
	return seat, nil
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	seat, err := s.parseSeat(r)
	if err != nil {
		s.logger.Warn("Rejected connection", "remote", r.RemoteAddr, "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}

	c := newConnection(ws, seat, s)
	s.register(c)
	s.logger.Info("Client connected", "remote", r.RemoteAddr, "seat", seat)

	c.enqueue(c.snapshot())
	c.start()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) register(c *Connection) {
	s.mu.Lock()
	var old *Connection
	if c.seat != spectator {
		old = s.seats[c.seat]
		s.seats[c.seat] = c
	}
	s.conns[c] = struct{}{}
	s.mu.Unlock()

	if old != nil {
		s.logger.Info("Replacing connection", "seat", c.seat)
		_ = old.Close()
	}
}

// unregister drops c and folds its seat unless another connection has
// taken the seat over.
func (s *Server) unregister(c *Connection) {
	s.mu.Lock()
	delete(s.conns, c)
	owned := c.seat != spectator && s.seats[c.seat] == c
	if owned {
		delete(s.seats, c.seat)
	}
	s.mu.Unlock()

	if !owned {
		return
	}
	s.logger.Info("Client disconnected", "seat", c.seat)
	err := s.runner.Disconnect(c.seat)
	if err != nil && !errors.Is(err, game.ErrHandNotInProgress) && !errors.Is(err, game.ErrIllegalAction) {
		s.logger.Warn("Failed to fold disconnected seat", "seat", c.seat, "error", err)
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	conns := make([]*Connection, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()
	for _, c := range conns {
		_ = c.Close()
	}
}
