package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/recwars/internal/bootstrap"
	"github.com/vovakirdan/recwars/internal/config"
	"github.com/vovakirdan/recwars/internal/core"
	"github.com/vovakirdan/recwars/internal/driver"
	"github.com/vovakirdan/recwars/internal/input"
	"github.com/vovakirdan/recwars/internal/registry"
)

// footerRows is the space kept under the screen for help, warnings and errors.
const footerRows = 1

// warningTTL is how long startup warnings stay in the footer.
const warningTTL = 8 * time.Second

type phase int

const (
	phaseLoading phase = iota
	phaseRunning
	phaseFailed  // startup failed; no engine was built
	phaseAborted // the frame loop stopped on an engine failure
)

// Options configures one play session.
type Options struct {
	Settings  bootstrap.Settings
	MapPath   string
	EngineID  string
	Fetcher   bootstrap.Fetcher
	Pinger    *bootstrap.Pinger
	Version   string
	Width     int
	Height    int
	FrameRate int
	Logger    *log.Logger
}

type pingDoneMsg struct{ err error }

// Model is the Bubble Tea model for one session: it loads the assets,
// builds the engine and then drives the frame loop.
type Model struct {
	opts     Options
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *log.Logger
	phase    phase
	pipeline *bootstrap.Pipeline
	spinner  spinner.Model
	help     help.Model
	keys     KeyMap

	cvars  *config.Cvars
	input  *input.Aggregator
	holds  *input.HoldTracker
	sched  *tickScheduler
	driver *driver.Driver
	screen *core.Screen

	width     int
	height    int
	warnings  []string
	warnUntil time.Time
	err       error
	quitting  bool
}

// NewModel creates the host model. Nothing is fetched until Init.
func NewModel(ctx context.Context, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	ctx, cancel := context.WithCancel(ctx)

	cvars := opts.Settings.Cvars
	bindings := input.DefaultBindings()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	h := help.New()
	h.Width = opts.Width

	for _, w := range opts.Settings.Warnings {
		logger.Warn("launch parameter", "warning", w)
	}
	for _, name := range opts.Settings.Report.Applied {
		v, _ := cvars.Get(name)
		logger.Info("cvar override", "name", name, "value", v)
	}
	for _, name := range opts.Settings.Report.Unknown {
		logger.Debug("ignored unknown cvar", "name", name)
	}
	for k, actions := range bindings.Collisions() {
		logger.Debug("key drives several actions", "key", k, "actions", actions)
	}

	return Model{
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger,
		pipeline: bootstrap.New(opts.Fetcher, opts.MapPath, logger),
		spinner:  sp,
		help:     h,
		keys:     NewKeyMap(bindings),
		cvars:    &cvars,
		input:    input.NewAggregator(bindings),
		holds:    input.NewHoldTracker(input.DefaultHoldWindow),
		sched:    newTickScheduler(opts.FrameRate),
		width:    opts.Width,
		height:   opts.Height,
		warnings: opts.Settings.Warnings,
	}
}

// Init starts the asset fetches and the telemetry ping side by side.
func (m Model) Init() tea.Cmd {
	m.logger.Info("starting session", "map", m.opts.MapPath, "balance", m.opts.Settings.Balance)
	return tea.Batch(m.spinner.Tick, m.stageCmd(m.pipeline.Start(m.ctx)), m.pingCmd())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.FocusMsg:
		return m.handleFocus(true)

	case tea.BlurMsg:
		return m.handleFocus(false)

	case FrameMsg:
		return m.handleFrame(msg)

	case bootstrap.Msg:
		return m.handleStage(msg)

	case pingDoneMsg:
		if msg.err != nil {
			m.logger.Warn("telemetry ping failed", "error", msg.err)
		}
		return m, nil

	case spinner.TickMsg:
		if m.phase != phaseLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleKey processes keyboard input. Host keys are handled here; every
// other key goes through the hold tracker to the aggregator.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Screenshot):
		if m.screen != nil {
			m.saveScreenshot()
		}
		return m, nil
	}

	if m.phase != phaseRunning {
		return m, nil
	}
	if ev, ok := m.holds.Press(msg.String(), time.Now()); ok {
		m.input.OnKeyEvent(ev)
	}
	return m, nil
}

// handleResize processes window resize events. The engine keeps its target
// and draws into the new size on the next frame.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.help.Width = msg.Width
	if m.screen != nil {
		m.screen.Resize(msg.Width, max(msg.Height-footerRows, 0))
	}
	return m, nil
}

func (m Model) handleFocus(focused bool) (tea.Model, tea.Cmd) {
	if m.driver == nil {
		return m, nil
	}
	if !focused {
		for _, ev := range m.holds.ReleaseAll() {
			m.input.OnKeyEvent(ev)
		}
	}
	m.driver.Focus(focused)
	m.logger.Debug("focus changed", "focused", focused, "paused", m.input.Paused())
	return m, nil
}

// handleStage feeds a finished fetch to the pipeline and issues the next one.
func (m Model) handleStage(msg bootstrap.Msg) (tea.Model, tea.Cmd) {
	next := m.pipeline.Handle(m.ctx, msg)
	switch m.pipeline.State() {
	case bootstrap.StateDone:
		return m.start()
	case bootstrap.StateFailed:
		_, err := m.pipeline.Result()
		m.err = err
		m.phase = phaseFailed
		return m, nil
	}
	return m, m.stageCmd(next)
}

// start builds the engine from the loaded resources and starts the frame loop.
func (m Model) start() (tea.Model, tea.Cmd) {
	res, err := m.pipeline.Result()
	if err != nil {
		m.err = err
		m.phase = phaseFailed
		return m, nil
	}

	m.cvars.EnsureSeed(time.Now())
	m.screen = core.NewScreen(m.width, max(m.height-footerRows, 0))
	engine, err := registry.Create(m.opts.EngineID, registry.Setup{
		Cvars:    m.cvars,
		Target:   m.screen,
		Width:    m.screen.Width(),
		Height:   m.screen.Height(),
		MapPath:  res.MapPath,
		Manifest: res.Manifest,
		Level:    res.Level,
	})
	if err != nil {
		m.logger.Error("engine construction failed", "error", err)
		m.err = err
		m.phase = phaseFailed
		return m, nil
	}

	m.driver = driver.New(&driver.Session{
		Cvars:   m.cvars,
		Input:   m.input,
		Engine:  engine,
		MapPath: res.MapPath,
		Balance: m.opts.Settings.Balance,
		Logger:  m.logger,
	}, m.sched)
	if err := m.driver.Start(); err != nil {
		m.err = err
		m.phase = phaseFailed
		return m, nil
	}
	m.phase = phaseRunning
	if len(m.warnings) > 0 {
		m.warnUntil = time.Now().Add(warningTTL)
	}
	return m, m.sched.Cmd()
}

// handleFrame runs one frame and schedules whatever the driver asked for.
func (m Model) handleFrame(msg FrameMsg) (tea.Model, tea.Cmd) {
	if m.driver == nil || !m.sched.Fire(msg) {
		return m, nil
	}
	for _, ev := range m.holds.Expire(msg.Time) {
		m.input.OnKeyEvent(ev)
	}
	if err := m.driver.Frame(msg.Handle, wallMillis(msg.Time)); err != nil {
		m.err = err
		m.phase = phaseAborted
		var fe *driver.FrameError
		if errors.As(err, &fe) && len(fe.Stack) > 0 {
			m.logger.Error("engine panic", "stack", string(fe.Stack))
		}
	}
	return m, m.sched.Cmd()
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.driver != nil {
		m.driver.Stop()
	}
	m.cancel()
	m.quitting = true
	return m, tea.Quit
}

func (m Model) stageCmd(step bootstrap.Step) tea.Cmd {
	if step == nil {
		return nil
	}
	return func() tea.Msg {
		return step()
	}
}

func (m Model) pingCmd() tea.Cmd {
	if !m.opts.Pinger.Enabled() {
		return nil
	}
	p := m.opts.Pinger
	info := bootstrap.PingInfo{
		Map:     m.opts.MapPath,
		Balance: string(m.opts.Settings.Balance),
		Version: m.opts.Version,
	}
	ctx := m.ctx
	return func() tea.Msg {
		return pingDoneMsg{err: p.Ping(ctx, info)}
	}
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	dir := filepath.Join(os.Getenv("HOME"), ".recwars", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.logger.Warn("screenshot", "error", err)
		return
	}

	name := strings.TrimSuffix(filepath.Base(m.opts.MapPath), ".map")
	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", name, timestamp))

	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.logger.Warn("screenshot", "error", err)
		return
	}
	m.logger.Info("screenshot saved", "path", path)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.phase {
	case phaseLoading:
		return m.place(boxStyle.Render(fmt.Sprintf("%s %s\n\n%s",
			m.spinner.View(), m.loadingText(), dimStyle.Render(m.opts.MapPath))))
	case phaseFailed:
		return m.place(lipgloss.JoinVertical(lipgloss.Center,
			errorStyle.Render("startup failed"),
			"",
			lipgloss.NewStyle().Width(min(m.width, 72)).Render(m.err.Error()),
			"",
			dimStyle.Render("esc to quit")))
	}

	return RenderScreen(m.overlaid()) + "\n" + m.footer()
}

func (m Model) loadingText() string {
	switch m.pipeline.State() {
	case bootstrap.StateLevel:
		return "loading level"
	default:
		return "loading " + bootstrap.ManifestPath
	}
}

func (m Model) place(s string) string {
	if m.width <= 0 || m.height <= 0 {
		return s
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, s)
}

func (m Model) footer() string {
	line := lipgloss.NewStyle().MaxWidth(max(m.width, 1))
	switch {
	case m.phase == phaseAborted:
		return line.Render(errorStyle.Render("stopped") + " " + m.err.Error() + dimStyle.Render("  esc to quit"))
	case len(m.warnings) > 0 && time.Now().Before(m.warnUntil):
		return line.Render(warnStyle.Render(strings.Join(m.warnings, "; ")))
	case m.cvars.HudHelp:
		return line.Render(m.help.View(m.keys))
	}
	return ""
}

// overlaid returns a copy of the last frame with the diagnostics and the
// pause banner on top. The engine's screen is left as drawn, so nothing
// from an earlier overlay survives into the next view while paused.
func (m Model) overlaid() *core.Screen {
	scr := m.screen.Clone()
	dbg := m.driver.Debug()

	var lines []string
	if m.cvars.DFps {
		lines = append(lines, fmt.Sprintf("%3.0f fps", dbg.Fps))
	}
	if m.cvars.DDbg {
		lines = append(lines,
			fmt.Sprintf("t %.2fs x%.2f", dbg.ScaledTime, m.cvars.DSpeed),
			fmt.Sprintf("frames %d skip %d steps %d", dbg.Frames, dbg.Skipped, dbg.Steps),
			fmt.Sprintf("upd %.2f/%.2fms", dbg.UpdateAvg*1000, dbg.UpdateMax*1000),
			fmt.Sprintf("draw %.2f/%.2fms", dbg.DrawAvg*1000, dbg.DrawMax*1000),
			"in "+dbg.Input.String(),
		)
	}
	top := 0
	if m.cvars.HudNames {
		top = 1
	}
	for i, l := range lines {
		x := scr.Width() - len([]rune(l)) - 1
		scr.DrawTextColored(max(x, 0), top+i, l, core.ColorBrightWhite)
	}

	if dbg.Paused {
		drawBanner(scr, " PAUSED ", core.ColorBrightYellow)
	}
	return scr
}

// drawBanner frames text in a box centred on the screen, clipped to its bounds.
func drawBanner(scr *core.Screen, text string, c core.Color) {
	bounds := scr.Bounds()
	box := core.NewRect(0, 0, len([]rune(text))+2, 3)
	box.X = core.Clamp((bounds.W-box.W)/2, 0, max(bounds.W-box.W, 0))
	box.Y = core.Clamp((bounds.H-box.H)/2, 0, max(bounds.H-box.H, 0))
	scr.DrawBox(box, c)
	scr.DrawTextColored(box.X+1, box.Y+1, text, c)
}

// Run starts the Bubble Tea program for one session.
func Run(ctx context.Context, opts Options) error {
	model := NewModel(ctx, opts)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),   // Use alternate screen buffer
		tea.WithReportFocus(), // Focus/blur drive auto-pause
		tea.WithContext(ctx),
	)

	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(Model); ok {
		return m.Err()
	}
	return nil
}

// Err returns the failure that ended the session, if any.
func (m Model) Err() error {
	return m.err
}

// Phase names the current phase, for tests and logs.
func (m Model) Phase() string {
	switch m.phase {
	case phaseLoading:
		return "loading"
	case phaseRunning:
		return "running"
	case phaseFailed:
		return "failed"
	case phaseAborted:
		return "aborted"
	default:
		return "unknown"
	}
}
