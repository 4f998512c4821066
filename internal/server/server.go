// Package server exposes the read-only status API: target listings, per-target
// status and history, and a WebSocket stream of change events.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/raysh454/kanshi/internal/config"
	"github.com/raysh454/kanshi/internal/interfaces"
	"github.com/raysh454/kanshi/internal/monitor"
	"github.com/raysh454/kanshi/internal/store"
)

// Server is the HTTP + WebSocket status surface.
type Server struct {
	cfg      *config.Config
	detector *monitor.Detector
	router   chi.Router
	hub      *Hub
	logger   interfaces.Logger
}

// New builds a Server over the loaded config and detector. The returned
// server's Hub should be registered with the notify manager so detected
// changes reach WebSocket subscribers.
func New(cfg *config.Config, detector *monitor.Detector, logger interfaces.Logger) *Server {
	logger = logger.With(interfaces.Field{Key: "component", Value: "server"})
	s := &Server{
		cfg:      cfg,
		detector: detector,
		router:   chi.NewRouter(),
		hub:      NewHub(logger),
		logger:   logger,
	}
	s.routes()
	return s
}

// Hub returns the server's WebSocket broadcast hub.
func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) routes() {
	r := s.router

	r.Get("/targets", s.handleListTargets)
	r.Get("/targets/{name}/status", s.handleTargetStatus)
	r.Get("/targets/{name}/history", s.handleTargetHistory)

	r.Get("/ws/events", s.hub.handleWS)
}

// ServeHTTP implements http.Handler with request logging.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("http_request",
		interfaces.Field{Key: "method", Value: r.Method},
		interfaces.Field{Key: "path", Value: r.URL.Path})
	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.Settings.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // allow streaming
	}
}

// Close disconnects all WebSocket subscribers.
func (s *Server) Close() {
	s.hub.Close()
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// --- HTTP handlers ---

type targetStatus struct {
	Name     string         `json:"name"`
	URL      string         `json:"url"`
	Mode     string         `json:"mode"`
	Interval int            `json:"interval,omitempty"`
	Status   *store.Summary `json:"status"`
}

func (s *Server) handleListTargets(w http.ResponseWriter, r *http.Request) {
	out := make([]targetStatus, 0, len(s.cfg.Targets))
	for _, t := range s.cfg.Targets {
		sum, err := s.detector.Status(t.Name)
		if err != nil {
			s.logger.Warn("summarizing target",
				interfaces.Field{Key: "target", Value: t.Name},
				interfaces.Field{Key: "error", Value: err.Error()})
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out = append(out, targetStatus{
			Name:     t.Name,
			URL:      t.URL,
			Mode:     string(t.Mode),
			Interval: t.Interval,
			Status:   sum,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTargetStatus(w http.ResponseWriter, r *http.Request) {
	t := s.cfg.FindTarget(chi.URLParam(r, "name"))
	if t == nil {
		writeError(w, http.StatusNotFound, "unknown target")
		return
	}

	sum, err := s.detector.Status(t.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleTargetHistory(w http.ResponseWriter, r *http.Request) {
	t := s.cfg.FindTarget(chi.URLParam(r, "name"))
	if t == nil {
		writeError(w, http.StatusNotFound, "unknown target")
		return
	}

	events, err := s.detector.History(t.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		if limit < len(events) {
			events = events[len(events)-limit:]
		}
	}
	writeJSON(w, http.StatusOK, events)
}

// --- WebSocket hub ---

// Hub broadcasts ChangeRecords to connected WebSocket clients. It implements
// notify.Notifier so it can be registered like any other channel.
type Hub struct {
	upgrader websocket.Upgrader
	logger   interfaces.Logger

	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan *monitor.ChangeRecord
	done       chan struct{}
}

func NewHub(logger interfaces.Logger) *Hub {
	h := &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:     logger,
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan *monitor.ChangeRecord, 16),
		done:       make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	clients := make(map[*websocket.Conn]bool)
	defer func() {
		for conn := range clients {
			conn.Close()
		}
	}()

	for {
		select {
		case <-h.done:
			return
		case conn := <-h.register:
			clients[conn] = true
		case conn := <-h.unregister:
			if clients[conn] {
				delete(clients, conn)
				conn.Close()
			}
		case change := <-h.broadcast:
			for conn := range clients {
				if err := conn.WriteJSON(change); err != nil {
					h.logger.Debug("ws write failed",
						interfaces.Field{Key: "error", Value: err.Error()})
					delete(clients, conn)
					conn.Close()
				}
			}
		}
	}
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", interfaces.Field{Key: "error", Value: err.Error()})
		return
	}
	h.register <- conn

	// Drain client frames so pings are answered; unregister on error.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				select {
				case h.unregister <- conn:
				case <-h.done:
				}
				return
			}
		}
	}()
}

func (h *Hub) Name() string { return "websocket" }

// Notify queues the change for broadcast. A full queue drops the event
// rather than blocking a check.
func (h *Hub) Notify(_ context.Context, change *monitor.ChangeRecord) error {
	select {
	case h.broadcast <- change:
	default:
	}
	return nil
}

// Close stops the hub and disconnects all clients.
func (h *Hub) Close() {
	close(h.done)
}
