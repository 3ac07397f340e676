package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/freqmon/internal/config"
	"github.com/rileyhilliard/freqmon/internal/errors"
	"github.com/rileyhilliard/freqmon/internal/logger"
	"github.com/rileyhilliard/freqmon/internal/source"
)

// Width breakpoint above which cards are laid out two per row.
const BreakpointWide = 160

// Cue is the audible alert the dashboard drives. *alarm.Alarm satisfies it.
type Cue interface {
	Start()
	Stop()
	Sync(alerting bool)
	SetMuted(muted bool)
	Muted() bool
}

// OpenFunc opens a source for a mode, used when the user switches modes.
type OpenFunc func(mode config.SourceMode) (source.Source, error)

// Options configures a Model.
type Options struct {
	Config *config.Config
	Source source.Source

	// Open is used by the mode toggle; nil disables it.
	Open OpenFunc

	// Cue may be nil for a silent dashboard.
	Cue Cue

	Log logger.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Model is the Bubble Tea model for the frequency dashboard.
type Model struct {
	cfg  *config.Config
	src  source.Source
	open OpenFunc
	cue  Cue
	log  logger.Logger
	now  func() time.Time

	// ctx is cancelled on quit, aborting the cycle in flight.
	ctx    context.Context
	cancel context.CancelFunc

	// retired sources are closed once no cycle can still be using them.
	retired []source.Source
	srcGen  int

	report     *Report
	lastUpdate time.Time
	inFlight   bool
	tickSeq    int

	intervalSec  int
	thresholdSec int

	selected int
	viewMode ViewMode
	showHelp bool
	quitting bool
	width    int
	height   int

	status    string
	statusErr bool

	detailViewport viewport.Model
	viewportReady  bool
}

// tickMsg schedules the next cycle; stale sequence numbers are ignored.
type tickMsg int

// reportMsg carries a finished cycle. gen identifies the source it ran against.
type reportMsg struct {
	gen    int
	report Report
}

// NewModel creates a dashboard over opts.Source. The first cycle starts
// from Init.
func NewModel(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log := opts.Log
	if log == nil {
		log = logger.Noop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		cfg:          cfg,
		src:          opts.Source,
		open:         opts.Open,
		cue:          opts.Cue,
		log:          log,
		now:          now,
		ctx:          ctx,
		cancel:       cancel,
		inFlight:     true,
		intervalSec:  clamp(cfg.RefreshInterval, config.MinRefreshInterval, config.MaxRefreshInterval),
		thresholdSec: clamp(cfg.DelayThreshold, config.MinDelayThreshold, config.MaxDelayThreshold),
	}
}

// Init starts the first cycle.
func (m Model) Init() tea.Cmd {
	return m.cycleCmd()
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg)
		if handled {
			return m, cmd
		}
		if m.viewMode == ViewDetail && m.viewportReady {
			var cmd tea.Cmd
			m.detailViewport, cmd = m.detailViewport.Update(msg)
			return m, cmd
		}

	case tea.MouseMsg:
		if m.viewMode == ViewDetail && m.viewportReady {
			var cmd tea.Cmd
			m.detailViewport, cmd = m.detailViewport.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 2
		footerHeight := 2
		viewportHeight := m.height - headerHeight - footerHeight
		if viewportHeight < 1 {
			viewportHeight = 1
		}
		if !m.viewportReady {
			m.detailViewport = viewport.New(m.width, viewportHeight)
			m.detailViewport.YPosition = headerHeight
			m.viewportReady = true
		} else {
			m.detailViewport.Width = m.width
			m.detailViewport.Height = viewportHeight
		}
		if m.viewMode == ViewDetail {
			m.updateDetailViewportContent()
		}

	case tickMsg:
		if int(msg) != m.tickSeq || m.inFlight || m.quitting {
			return m, nil
		}
		return m, m.startCycle()

	case reportMsg:
		m.inFlight = false
		m.closeRetired()
		if m.quitting {
			return m, nil
		}
		if msg.gen != m.srcGen {
			// Ran against a source the user has since switched away from.
			return m, m.startCycle()
		}

		r := msg.report
		m.report = &r
		m.lastUpdate = r.Finished
		if m.cue != nil {
			m.cue.Sync(r.CueStarted)
		}
		if n := m.deviceCount(); m.selected >= n {
			m.selected = max(n-1, 0)
		}
		if m.viewMode == ViewDetail {
			if m.deviceCount() == 0 {
				m.viewMode = ViewList
			} else {
				m.updateDetailViewportContent()
			}
		}
		return m, m.scheduleTick()
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	if m.viewMode == ViewDetail {
		return m.renderDetailView()
	}
	return m.renderDashboard()
}

// cycleCmd runs one cycle off the UI goroutine against the current source.
func (m Model) cycleCmd() tea.Cmd {
	ctx, src, gen := m.ctx, m.src, m.srcGen
	opts := CycleOptions{
		Threshold: time.Duration(m.thresholdSec) * time.Second,
		Now:       m.now,
		Log:       m.log,
	}
	if m.cue != nil {
		opts.Cue = m.cue.Start
	}
	return func() tea.Msg {
		return reportMsg{gen: gen, report: RunCycle(ctx, src, opts)}
	}
}

// startCycle marks a cycle in flight and returns the command running it.
func (m *Model) startCycle() tea.Cmd {
	m.inFlight = true
	return m.cycleCmd()
}

// scheduleTick arms the next cycle one interval from now, invalidating
// any tick already pending.
func (m *Model) scheduleTick() tea.Cmd {
	m.tickSeq++
	seq := m.tickSeq
	return tea.Tick(m.Interval(), func(time.Time) tea.Msg {
		return tickMsg(seq)
	})
}

// refresh runs a cycle now unless one is already running.
func (m *Model) refresh() tea.Cmd {
	if m.inFlight {
		return nil
	}
	m.tickSeq++
	return m.startCycle()
}

func (m *Model) quit() tea.Cmd {
	m.quitting = true
	m.cancel()
	if m.cue != nil {
		m.cue.Stop()
	}
	// Any cycle still in flight has been cancelled above.
	m.inFlight = false
	m.retired = append(m.retired, m.src)
	m.closeRetired()
	return tea.Quit
}

// AlternateMode is the mode the toggle switches to from the current one:
// local goes to the configured mode (remote when that is local too), and
// anything else goes back to local.
func (m Model) AlternateMode() config.SourceMode {
	if m.src != nil && m.src.Mode() != config.ModeLocal {
		return config.ModeLocal
	}
	if m.cfg.Source.Mode != config.ModeLocal && m.cfg.Source.Mode != "" {
		return m.cfg.Source.Mode
	}
	return config.ModeRemote
}

func (m *Model) toggleMode() tea.Cmd {
	if m.open == nil {
		m.setStatus("Switching sources isn't available here", true)
		return nil
	}
	target := m.AlternateMode()
	src, err := m.open(target)
	if err != nil {
		m.log.Warn("switching to %s source: %s", target, errors.Short(err))
		m.setStatus(errors.Short(err), true)
		return nil
	}

	m.retired = append(m.retired, m.src)
	m.src = src
	m.srcGen++
	m.report = nil
	m.selected = 0
	m.viewMode = ViewList
	m.setStatus(fmt.Sprintf("Reading %s source %s", target, src.Location()), false)

	if m.inFlight {
		// The stale report triggers the next cycle when it lands.
		return nil
	}
	m.closeRetired()
	m.tickSeq++
	return m.startCycle()
}

func (m *Model) closeRetired() {
	if m.inFlight {
		return
	}
	for _, s := range m.retired {
		if s == nil {
			continue
		}
		if err := s.Close(); err != nil {
			m.log.Debug("closing %s source: %v", s.Mode(), err)
		}
	}
	m.retired = nil
}

// setInterval changes the refresh interval and re-arms the pending tick.
func (m *Model) setInterval(sec int) tea.Cmd {
	m.intervalSec = clamp(sec, config.MinRefreshInterval, config.MaxRefreshInterval)
	m.setStatus(fmt.Sprintf("Refresh every %ds", m.intervalSec), false)
	if m.inFlight {
		return nil
	}
	return m.scheduleTick()
}

// setThreshold changes the delay threshold used from the next cycle on.
func (m *Model) setThreshold(sec int) {
	m.thresholdSec = clamp(sec, config.MinDelayThreshold, config.MaxDelayThreshold)
	m.setStatus(fmt.Sprintf("Delay threshold %ds (applies next refresh)", m.thresholdSec), false)
}

func (m *Model) toggleMute() {
	if m.cue == nil {
		m.setStatus("No alert sound configured", true)
		return
	}
	muted := !m.cue.Muted()
	m.cue.SetMuted(muted)
	if muted {
		m.setStatus("Alert sound muted", false)
	} else {
		m.setStatus("Alert sound on", false)
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// Interval is the current refresh interval.
func (m Model) Interval() time.Duration {
	return time.Duration(m.intervalSec) * time.Second
}

// Threshold is the current delay threshold.
func (m Model) Threshold() time.Duration {
	return time.Duration(m.thresholdSec) * time.Second
}

// Report returns the latest cycle's report, or nil before the first one.
func (m Model) Report() *Report {
	return m.report
}

// Source returns the source cycles currently read from.
func (m Model) Source() source.Source {
	return m.src
}

// Muted reports whether the alert sound is muted.
func (m Model) Muted() bool {
	return m.cue != nil && m.cue.Muted()
}

// SelectedDevice returns the selected device report.
func (m Model) SelectedDevice() (DeviceReport, bool) {
	if m.report == nil || m.selected < 0 || m.selected >= len(m.report.Devices) {
		return DeviceReport{}, false
	}
	return m.report.Devices[m.selected], true
}

// SecondsSinceUpdate returns how many seconds have passed since the last report.
func (m Model) SecondsSinceUpdate() int {
	if m.lastUpdate.IsZero() {
		return 0
	}
	return int(m.now().Sub(m.lastUpdate).Seconds())
}

func (m Model) deviceCount() int {
	if m.report == nil {
		return 0
	}
	return len(m.report.Devices)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
