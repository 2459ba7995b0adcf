package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/recwars/internal/bootstrap"
	"github.com/vovakirdan/recwars/internal/directory"
	"github.com/vovakirdan/recwars/internal/engine/preview"
	"github.com/vovakirdan/recwars/internal/platform/tui"
	"github.com/vovakirdan/recwars/internal/storage"
)

var (
	flagHTTPAddr    string
	flagAssetsDir   string
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve assets, record telemetry, optionally host play over SSH",
	Long: `Start the directory: an HTTP server that serves the asset tree under
/assets/, records telemetry pings on /ping and lists maps and stats on /maps
and /stats.

With --ssh it also starts an SSH server. Each connection plays one session
whose assets come from --assets. The SSH command is the launch request,
either a query string or name/value pairs.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.recwars/host_key

Examples:
  recwars serve --assets-dir ./assets
  recwars serve --assets-dir ./assets --ssh :23234
  recwars serve --http :9000 --db ./directory.db

Players can connect with:
  ssh localhost -p 23234
  ssh localhost -p 23234 'map=Snow&balance=recwar'`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagHTTPAddr, "http", ":8080", "HTTP server address (host:port)")
	serveCmd.Flags().StringVar(&flagAssetsDir, "assets-dir", "", "Directory served under /assets/")
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port), empty disables")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger, closeLog, err := newLogger(os.Stderr, "recwars")
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open directory database, pings are not recorded", "error", err)
		// Continue without storage
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	dirCfg := directory.DefaultConfig()
	dirCfg.Address = flagHTTPAddr
	dirCfg.AssetsDir = flagAssetsDir
	dir := directory.NewServer(dirCfg, store, logger.WithPrefix("http"))
	g.Go(func() error { return dir.ListenAndServe(ctx) })

	if flagSSHAddr != "" {
		sshServer, err := newSSHServer(logger)
		if err != nil {
			return err
		}
		g.Go(func() error { return sshServer.ListenAndServe(ctx) })
		fmt.Fprintf(cmd.OutOrStdout(), "Connect with: ssh localhost -p %s\n", portOf(sshServer.Addr()))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Directory listening on %s\n", dir.Addr())
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	return g.Wait()
}

func newSSHServer(logger *log.Logger) (*tui.SSHServer, error) {
	fetcher, err := bootstrap.NewFetcher(flagAssets, &http.Client{Timeout: 30 * time.Second})
	if err != nil {
		return nil, err
	}

	cfg := tui.DefaultSSHServerConfig()
	cfg.Address = flagSSHAddr
	cfg.HostKeyPath = flagHostKey
	cfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	cfg.CvarsFile = flagCvarsFile
	cfg.Session.EngineID = preview.ID
	cfg.Session.Fetcher = fetcher
	cfg.Session.Version = version
	cfg.Session.Pinger = bootstrap.NewPinger(flagTelemetry, &http.Client{Timeout: 10 * time.Second}, logger)

	return tui.NewSSHServer(cfg, logger.WithPrefix("ssh"))
}

func portOf(addr string) string {
	if _, port, err := net.SplitHostPort(addr); err == nil {
		return port
	}
	return addr
}
