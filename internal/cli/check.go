package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/freqmon/internal/chart"
	"github.com/rileyhilliard/freqmon/internal/dashboard"
	"github.com/rileyhilliard/freqmon/internal/errors"
	"github.com/rileyhilliard/freqmon/internal/evaluate"
	"github.com/rileyhilliard/freqmon/internal/logger"
	"github.com/rileyhilliard/freqmon/internal/source"
	"github.com/rileyhilliard/freqmon/internal/telemetry"
	"github.com/rileyhilliard/freqmon/internal/ui"
	"golang.org/x/term"
)

// Exit codes for check.
const (
	exitListingFailed = 1
	exitAlerting      = 2
)

// Chart size used by check --chart.
const (
	checkChartWidth  = 80
	checkChartHeight = 12
)

type checkOptions struct {
	Source SourceFlags
	JSON   bool
	Chart  bool
}

// CheckOutput is the --json form of one cycle.
type CheckOutput struct {
	Mode      string               `json:"mode"`
	Location  string               `json:"location"`
	CheckedAt time.Time            `json:"checked_at"`
	Threshold float64              `json:"threshold_seconds"`
	Devices   []DeviceCheckOutput  `json:"devices"`
	Alerting  []telemetry.DeviceID `json:"alerting"`
	Warnings  []string             `json:"warnings,omitempty"`
}

// DeviceCheckOutput is one device in CheckOutput.
type DeviceCheckOutput struct {
	ID            telemetry.DeviceID `json:"id"`
	HasData       bool               `json:"has_data"`
	Samples       int                `json:"samples"`
	Current       *float64           `json:"current,omitempty"`
	DelaySeconds  *float64           `json:"delay_seconds,omitempty"`
	MinFreq       *float64           `json:"min_freq,omitempty"`
	MaxFreq       *float64           `json:"max_freq,omitempty"`
	Timezone      string             `json:"timezone,omitempty"`
	OutOfBounds   bool               `json:"out_of_bounds"`
	DelayExceeded bool               `json:"delay_exceeded"`
	Alerting      bool               `json:"alerting"`
	Messages      []string           `json:"messages"`
	Error         string             `json:"error,omitempty"`
}

// checkCommand runs one cycle and reports it. The exit status carries the
// outcome: alerting devices exit 2, a failed listing exits 1.
func checkCommand(w io.Writer, opts checkOptions) error {
	cfg, _, err := loadConfig(opts.Source)
	if err != nil {
		if opts.JSON {
			WriteJSONFromError(w, err) //nolint:errcheck // Already failing
			return &ExitCodeError{Code: 1}
		}
		return err
	}

	src, err := source.Open(cfg, cfg.Source.Mode, sourceOptions())
	if err != nil {
		if opts.JSON {
			WriteJSONFromError(w, err) //nolint:errcheck // Already failing
			return &ExitCodeError{Code: 1}
		}
		return err
	}
	defer src.Close() //nolint:errcheck // Best-effort close, error not actionable

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report := dashboard.RunCycle(ctx, src, dashboard.CycleOptions{
		Threshold: cfg.Threshold(),
		Log:       logger.NewEnvLogger("[check]"),
	})

	if opts.JSON {
		if err := writeCheckJSON(w, report, cfg.Threshold()); err != nil {
			return err
		}
	} else {
		if !isTerminal(w) {
			ui.DisableColors()
		}
		renderReport(w, report, opts.Chart)
	}

	return checkExit(report)
}

func checkExit(r dashboard.Report) error {
	switch {
	case r.Err != nil:
		return &ExitCodeError{Code: exitListingFailed}
	case len(r.Alerting()) > 0:
		return &ExitCodeError{Code: exitAlerting}
	}
	return nil
}

// writeCheckJSON writes the cycle in the JSON envelope. A failed listing
// or an alerting device makes it unsuccessful, with the data still attached.
func writeCheckJSON(w io.Writer, r dashboard.Report, threshold time.Duration) error {
	out := checkOutput(r, threshold)
	env := JSONEnvelope{Success: true, Data: out}

	switch n := len(out.Alerting); {
	case r.Err != nil:
		env.Success = false
		env.Error = ErrorToJSON(r.Err)
	case n > 0:
		env.Success = false
		env.Error = &JSONError{
			Code:    ErrCodeDeviceAlerting,
			Message: fmt.Sprintf("%d device%s alerting", n, pluralSuffix(n)),
			Details: out.Alerting,
		}
	}
	return writeJSONEnvelope(w, env)
}

// isTerminal reports whether w is a terminal, deciding between styled and
// plain output.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func checkOutput(r dashboard.Report, threshold time.Duration) CheckOutput {
	out := CheckOutput{
		Mode:      string(r.Mode),
		Location:  r.Location,
		CheckedAt: r.Finished,
		Threshold: threshold.Seconds(),
		Devices:   make([]DeviceCheckOutput, 0, len(r.Devices)),
		Alerting:  r.Alerting(),
		Warnings:  r.Warnings,
	}
	if out.Alerting == nil {
		out.Alerting = []telemetry.DeviceID{}
	}

	for _, d := range r.Devices {
		dev := DeviceCheckOutput{
			ID:       d.ID,
			HasData:  d.HasData(),
			Samples:  d.Window.Len(),
			Alerting: d.Alerting(),
			Messages: make([]string, 0, len(d.Banners)),
		}
		for _, b := range d.Banners {
			dev.Messages = append(dev.Messages, b.Text)
		}
		if d.Err != nil {
			dev.Error = errors.Short(d.Err)
		}
		if v, ok := d.Current(); ok && !math.IsNaN(v) {
			dev.Current = &v
		}
		if d.HasData() {
			sec := d.Delay.Seconds()
			dev.DelaySeconds = &sec
		}
		if d.Bounds != nil {
			lo, hi := d.Bounds.MinFreq, d.Bounds.MaxFreq
			dev.MinFreq, dev.MaxFreq = &lo, &hi
			dev.Timezone = d.Bounds.Timezone
		}
		if d.Status != nil {
			dev.OutOfBounds = d.Status.FrequencyOutOfBounds
			dev.DelayExceeded = d.Status.DelayExceeded
		}
		out.Devices = append(out.Devices, dev)
	}
	return out
}

// renderReport prints a cycle the way the dashboard cards read, one block
// per device.
func renderReport(w io.Writer, r dashboard.Report, withChart bool) {
	fmt.Fprintf(w, "%s %s %s\n\n",
		ui.BoldStyle().Render("freqmon"),
		r.Mode,
		ui.MutedStyle().Render(r.Location))

	if r.Err != nil {
		fmt.Fprintf(w, "%s %s\n\n", ui.ErrorStyle().Render(ui.SymbolFail), errors.Short(r.Err))
	}
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "%s %s\n\n", ui.WarningStyle().Render(ui.SymbolWarning), warning)
	}

	for _, d := range r.Devices {
		fmt.Fprintf(w, "%s %s\n", deviceIcon(d), ui.BoldStyle().Render(fmt.Sprintf("Device %d", d.ID)))

		if d.HasData() {
			current := "n/a"
			if v, ok := d.Current(); ok {
				current = evaluate.FormatFrequency(v)
			}
			fmt.Fprintf(w, "  %s %s   %s %s\n",
				ui.MutedStyle().Render("Current Frequency"), current,
				ui.MutedStyle().Render("Delay"), evaluate.FormatDelay(d.Delay))
			if d.Bounds != nil {
				fmt.Fprintf(w, "  %s %s - %s (%s)\n",
					ui.MutedStyle().Render("Bounds"),
					evaluate.FormatFrequency(d.Bounds.MinFreq),
					evaluate.FormatFrequency(d.Bounds.MaxFreq),
					d.Bounds.Timezone)
			}
		}

		// Load failures carry their message in a banner already; panics don't.
		if d.Err != nil && len(d.Banners) == 0 {
			fmt.Fprintf(w, "  %s\n", ui.ErrorStyle().Render(errors.Short(d.Err)))
		}
		for _, b := range d.Banners {
			fmt.Fprintf(w, "  %s\n", bannerStyle(b.Severity).Render(b.Text))
		}

		if withChart && d.Figure != nil {
			fmt.Fprintln(w)
			for _, line := range strings.Split(chart.Render(*d.Figure, checkChartWidth, checkChartHeight), "\n") {
				fmt.Fprintf(w, "  %s\n", line)
			}
		}
		fmt.Fprintln(w)
	}

	alerting, failed := len(r.Alerting()), failedDevices(r)
	if alerting > 0 {
		fmt.Fprintf(w, "%s %d device%s alerting\n", ui.ErrorStyle().Render(ui.SymbolFail), alerting, pluralSuffix(alerting))
	}
	if failed > 0 {
		fmt.Fprintf(w, "%s %d device%s could not be read\n", ui.ErrorStyle().Render(ui.SymbolFail), failed, pluralSuffix(failed))
	}
	if alerting == 0 && failed == 0 && r.Err == nil && len(r.Devices) > 0 {
		fmt.Fprintf(w, "%s No devices alerting\n", ui.SuccessStyle().Render(ui.SymbolSuccess))
	}
}

func failedDevices(r dashboard.Report) int {
	n := 0
	for _, d := range r.Devices {
		if d.Err != nil {
			n++
		}
	}
	return n
}

func deviceIcon(d dashboard.DeviceReport) string {
	switch {
	case d.Err != nil:
		return ui.ErrorStyle().Render(ui.SymbolFail)
	case d.Alerting():
		return ui.ErrorStyle().Render(ui.SymbolWarning)
	case !d.HasData() || d.Bounds == nil:
		return ui.WarningStyle().Render(ui.SymbolPending)
	}
	return ui.SuccessStyle().Render(ui.SymbolSuccess)
}

func bannerStyle(s dashboard.Severity) lipgloss.Style {
	switch s {
	case dashboard.SeverityError:
		return ui.ErrorStyle()
	case dashboard.SeverityWarning:
		return ui.WarningStyle()
	}
	return ui.SuccessStyle()
}

// pluralSuffix returns "s" if n != 1.
func pluralSuffix(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
