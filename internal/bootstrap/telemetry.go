package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
)

// Client identifies this host in telemetry pings.
const Client = "recwars-tui"

// PingInfo is what a session reports to the directory service.
type PingInfo struct {
	Map     string
	Balance string
	Version string
}

// Pinger sends a best-effort GET to the directory service. Its outcome never
// affects startup; callers only log it.
type Pinger struct {
	endpoint string
	client   *http.Client
	logger   *log.Logger
}

// NewPinger creates a pinger for endpoint. An empty endpoint disables pings.
func NewPinger(endpoint string, client *http.Client, logger *log.Logger) *Pinger {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Pinger{endpoint: endpoint, client: client, logger: logger}
}

// Enabled reports whether pings go anywhere.
func (p *Pinger) Enabled() bool {
	return p != nil && p.endpoint != ""
}

// Ping sends one ping and logs the response status. The returned error is
// informational.
func (p *Pinger) Ping(ctx context.Context, info PingInfo) error {
	if !p.Enabled() {
		return nil
	}
	u, err := url.Parse(p.endpoint)
	if err != nil {
		return fmt.Errorf("telemetry: bad endpoint: %w", err)
	}
	q := u.Query()
	q.Set("client", Client)
	q.Set("map", info.Map)
	q.Set("balance", info.Balance)
	if info.Version != "" {
		q.Set("version", info.Version)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer resp.Body.Close()
	//nolint:errcheck // Response content is not used
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	p.logger.Debug("telemetry ping", "status", resp.StatusCode)
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("telemetry: %s", resp.Status)
	}
	return nil
}

// Go sends a ping in the background. Failures are logged and dropped.
func (p *Pinger) Go(ctx context.Context, info PingInfo) {
	if !p.Enabled() {
		return
	}
	go func() {
		if err := p.Ping(ctx, info); err != nil {
			p.logger.Warn("telemetry ping failed", "error", err)
		}
	}()
}
