package cli

import (
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/freqmon/internal/alarm"
	"github.com/rileyhilliard/freqmon/internal/config"
	"github.com/rileyhilliard/freqmon/internal/dashboard"
	"github.com/rileyhilliard/freqmon/internal/errors"
	"github.com/rileyhilliard/freqmon/internal/logger"
	"github.com/rileyhilliard/freqmon/internal/source"
	"github.com/rileyhilliard/freqmon/pkg/sshutil"
)

// debugLogFile receives log output while the dashboard owns the terminal.
const debugLogFile = "freqmon-debug.log"

type watchOptions struct {
	Source  SourceFlags
	NoSound bool
}

// watchCommand runs the dashboard until the user quits.
func watchCommand(opts watchOptions) error {
	cfg, _, err := loadConfig(opts.Source)
	if err != nil {
		return err
	}

	closeLog, err := redirectLogs()
	if err != nil {
		return err
	}
	defer closeLog()

	srcOpts := sourceOptions()
	src, err := source.Open(cfg, cfg.Source.Mode, srcOpts)
	if err != nil {
		return err
	}

	dopts := dashboard.Options{
		Config: cfg,
		Source: src,
		Open: func(mode config.SourceMode) (source.Source, error) {
			return source.Open(cfg, mode, srcOpts)
		},
		Log: logger.NewEnvLogger("[dashboard]"),
	}
	if !opts.NoSound {
		dopts.Cue = newAlarm(cfg.Alert)
	}

	p := tea.NewProgram(dashboard.NewModel(dopts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()

	sshutil.CloseAgent()

	if err != nil {
		return errors.WrapWithCode(err, errors.ErrExec,
			"Dashboard stopped unexpectedly",
			"Run with --verbose and check "+debugLogFile)
	}
	return nil
}

// redirectLogs keeps log output off the screen while the TUI runs: to
// freqmon-debug.log when debugging, otherwise nowhere.
func redirectLogs() (func(), error) {
	if !logger.DebugEnabled() {
		log.SetOutput(io.Discard)
		return func() { log.SetOutput(os.Stderr) }, nil
	}

	f, err := tea.LogToFile(debugLogFile, "freqmon")
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Can't open "+debugLogFile,
			"Check the current directory is writable, or drop --verbose")
	}
	return func() {
		f.Close() //nolint:errcheck // Best-effort close, error not actionable
		log.SetOutput(os.Stderr)
	}, nil
}

// newAlarm builds the audio cue: the configured or detected player, with
// the terminal bell as fallback.
func newAlarm(ac config.AlertConfig) *alarm.Alarm {
	a := alarm.New(alarm.Detect(ac.Player), alarm.NewBellPlayer(), ac.Sound, logger.NewEnvLogger("[alarm]"))
	a.SetMuted(ac.Muted)
	return a
}

// sourceOptions wires sources to the real minio and SSH clients.
func sourceOptions() source.Options {
	return source.Options{Log: logger.NewEnvLogger("[source]")}
}
