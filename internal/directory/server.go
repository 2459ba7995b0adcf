// Package directory is the small HTTP service that game hosts talk to: it
// serves the asset tree, records telemetry pings and lists maps.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/recwars/internal/bootstrap"
	"github.com/vovakirdan/recwars/internal/storage"
)

// Config holds configuration for the directory server.
type Config struct {
	// Address is the host:port to listen on (e.g., ":8080").
	Address string

	// AssetsDir is served under /assets/. Empty disables asset serving.
	AssetsDir string

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Address:         ":8080",
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server serves assets and records pings.
type Server struct {
	config Config
	store  *storage.Store
	logger *log.Logger
	http   *http.Server
}

// NewServer creates a server. store may be nil, in which case pings are
// accepted but not recorded.
func NewServer(cfg Config, store *storage.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{config: cfg, store: store, logger: logger}
	s.http = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler wires the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	if s.config.AssetsDir != "" {
		mux.Handle("/assets/", http.StripPrefix("/assets/", http.FileServer(http.Dir(s.config.AssetsDir))))
	}
	mux.Handle("/ping", http.HandlerFunc(s.handlePing))
	mux.Handle("/maps", http.HandlerFunc(s.handleMaps))
	mux.Handle("/stats", http.HandlerFunc(s.handleStats))
	mux.Handle("/pings", http.HandlerFunc(s.handlePings))
	return s.loggingMiddleware(mux)
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	serveErr := make(chan error, 1)
	s.logger.Info("starting directory server", "address", s.config.Address, "assets", s.config.AssetsDir)
	go func() {
		serveErr <- s.http.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		timeout := s.config.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("directory: shutdown: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("directory: serve: %w", err)
	}
}

// Addr returns the server's listen address string.
func (s *Server) Addr() string {
	return s.config.Address
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	p := storage.Ping{
		Client:  q.Get("client"),
		Map:     q.Get("map"),
		Balance: q.Get("balance"),
		Version: q.Get("version"),
		Remote:  remoteHost(r.RemoteAddr),
	}
	if p.Client == "" {
		http.Error(w, "missing client", http.StatusBadRequest)
		return
	}
	if s.store != nil {
		if _, err := s.store.RecordPing(r.Context(), p); err != nil {
			s.logger.Error("record ping", "error", err)
			http.Error(w, "cannot record ping", http.StatusInternalServerError)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMaps(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, bootstrap.Maps())
}

// mapStats is the JSON form of storage.MapStats.
type mapStats struct {
	Map      string    `json:"map"`
	Sessions int       `json:"sessions"`
	LastSeen time.Time `json:"last_seen"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeJSON(w, []mapStats{})
		return
	}
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.logger.Error("load stats", "error", err)
		http.Error(w, "cannot load stats", http.StatusInternalServerError)
		return
	}
	out := make([]mapStats, 0, len(stats))
	for _, m := range stats {
		out = append(out, mapStats{Map: m.Map, Sessions: m.Sessions, LastSeen: m.LastSeen})
	}
	s.writeJSON(w, out)
}

// ping is the JSON form of storage.Ping. The remote address stays private.
type ping struct {
	Client    string    `json:"client"`
	Map       string    `json:"map"`
	Balance   string    `json:"balance"`
	Version   string    `json:"version,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) handlePings(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeJSON(w, []ping{})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	pings, err := s.store.RecentPings(r.Context(), limit)
	if err != nil {
		s.logger.Error("load pings", "error", err)
		http.Error(w, "cannot load pings", http.StatusInternalServerError)
		return
	}
	out := make([]ping, 0, len(pings))
	for _, p := range pings {
		out = append(out, ping{Client: p.Client, Map: p.Map, Balance: p.Balance, Version: p.Version, CreatedAt: p.CreatedAt})
	}
	s.writeJSON(w, out)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "error", err)
	}
}

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs each request.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"remote", r.RemoteAddr,
			"took", time.Since(start),
		)
	})
}

func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
