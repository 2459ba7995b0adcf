package tui

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/recwars/internal/bootstrap"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.recwars/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// CvarsFile is layered under each connection's own overrides.
	CvarsFile string

	// Session is the template for every connection. Settings, MapPath,
	// the size and the logger are filled in per connection.
	Session Options
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		IdleTimeout: 30 * time.Minute,
		Session:     Options{FrameRate: DefaultFrameRate},
	}
}

// SSHServer wraps a Wish SSH server that hosts one play session per connection.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	logger *log.Logger
	active atomic.Int64
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "recwars-ssh",
		})
	}

	srv := &SSHServer{
		config: cfg,
		logger: logger,
	}

	hostKeyPath, err := ensureHostKeyDir(cfg.HostKeyPath)
	if err != nil {
		return nil, err
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// ensureHostKeyDir returns the host key path, defaulting to
// ~/.recwars/host_key, and creates its directory. Wish generates the key
// itself when the file is missing.
func ensureHostKeyDir(path string) (string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot get home directory: %w", err)
		}
		path = filepath.Join(home, ".recwars", "host_key")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("cannot create host key directory: %w", err)
	}
	return path, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
// The SSH command, if any, is the launch request: either a query string
// ("map=Snow&d_speed=2") or "name value" pairs.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	opts, err := s.sessionOptions(sshSession.Command())
	if err != nil {
		s.logger.Warn("bad launch request", "user", sshSession.User(), "error", err)
		wish.Fatalln(sshSession, err)
		return nil, nil
	}
	opts.Width = pty.Window.Width
	opts.Height = pty.Window.Height
	opts.Logger = s.logger.With("user", sshSession.User())

	model := NewModel(sshSession.Context(), opts)

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithReportFocus(),
	}
}

// sessionOptions resolves a connection's launch request against the template.
func (s *SSHServer) sessionOptions(command []string) (Options, error) {
	req, err := ParseLaunch(command)
	if err != nil {
		return Options{}, err
	}
	settings, err := req.Resolve(s.config.CvarsFile)
	if err != nil {
		return Options{}, err
	}

	opts := s.config.Session
	opts.Settings = settings
	opts.MapPath = bootstrap.SelectMap(req.Map, rand.New(rand.NewSource(time.Now().UnixNano())))
	return opts, nil
}

// ParseLaunch reads a launch request from command arguments: a single query
// string, or "name value" pairs where "map" and "balance" are reserved.
func ParseLaunch(args []string) (bootstrap.Request, error) {
	if len(args) == 1 && strings.Contains(args[0], "=") {
		return bootstrap.ParseQuery(args[0])
	}
	return bootstrap.FromArgs("", "", args)
}

// loggingMiddleware logs each connection with how long it played.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		started := time.Now()
		logger := s.logger.With("user", sshSession.User(), "remote", sshSession.RemoteAddr().String())
		logger.Info("session started",
			"command", strings.Join(sshSession.Command(), " "),
			"active", s.active.Add(1),
		)
		defer func() {
			logger.Info("session ended",
				"duration", time.Since(started).Round(time.Second),
				"active", s.active.Add(-1),
			)
		}()
		next(sshSession)
	}
}

// ListenAndServe starts the SSH server and blocks until ctx ends.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown()
	case err := <-serveErr:
		if errors.Is(err, ssh.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("ssh: serve: %w", err)
	}
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
