// Package source reads per-device telemetry from wherever the producer
// writes it: a local directory, an S3-compatible bucket, or a directory on
// an SSH host. Every mode yields the same telemetry types and the same
// three-way outcome: data, nothing (not found), or a coded error.
package source

import (
	"bytes"
	"context"

	"github.com/rileyhilliard/freqmon/internal/config"
	"github.com/rileyhilliard/freqmon/internal/errors"
	"github.com/rileyhilliard/freqmon/internal/logger"
	"github.com/rileyhilliard/freqmon/internal/telemetry"
	"github.com/rileyhilliard/freqmon/pkg/sshutil"
)

// Source loads device telemetry.
type Source interface {
	Mode() config.SourceMode

	// Location describes where files are read from, for display.
	Location() string

	// Devices lists device ids with a sample file, ascending. Names with
	// an unparsable device number come back as a *telemetry.SkippedFilesError
	// alongside the ids that did parse.
	Devices(ctx context.Context) ([]telemetry.DeviceID, error)

	// Load returns the device's window and bounds. A missing sample file
	// yields (nil, nil, nil). Bounds may be nil when the window is not.
	Load(ctx context.Context, id telemetry.DeviceID) (*telemetry.Window, *telemetry.Bounds, error)

	Close() error
}

// Options carries the collaborators a Source may need. Zero values pick
// the real implementations.
type Options struct {
	Log   logger.Logger
	Store ObjectStore
	Dial  sshutil.DialFunc
}

// Open builds the Source for mode from cfg. Remote and SSH settings are
// validated here so switching modes at runtime reports bad config early.
func Open(cfg *config.Config, mode config.SourceMode, opts Options) (Source, error) {
	log := opts.Log
	if log == nil {
		log = logger.Default()
	}

	switch mode {
	case config.ModeLocal:
		return NewLocal(cfg.Source.Dir, log), nil

	case config.ModeRemote:
		rc := cfg.Source.Remote
		if err := config.ValidateRemote(rc); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig, err.Error(),
				"Check 'source.remote' in .freqmon.yaml and the secrets file.")
		}
		store := opts.Store
		if store == nil {
			s, err := NewMinioStore(rc)
			if err != nil {
				return nil, err
			}
			store = s
		}
		return NewRemote(store, rc.Prefix, log), nil

	case config.ModeSSH:
		sc := cfg.Source.SSH
		if err := config.ValidateSSH(sc); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig, err.Error(),
				"Check 'source.ssh' in .freqmon.yaml.")
		}
		dial := opts.Dial
		if dial == nil {
			dial = sshutil.DialRunner
		}
		return NewSSH(sc, dial, log), nil
	}

	return nil, errors.New(errors.ErrConfig,
		"Unknown source mode '"+string(mode)+"'",
		"Use 'local', 'remote', or 'ssh'.")
}

// decodeWindow parses sample bytes, coding parse failures as CONTENT.
func decodeWindow(name string, data []byte) (*telemetry.Window, error) {
	w, err := telemetry.ParseWindow(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Content(name, err)
	}
	return w, nil
}

// decodeBounds parses bounds bytes, coding parse failures as CONTENT.
func decodeBounds(name string, data []byte) (*telemetry.Bounds, error) {
	b, err := telemetry.ParseBounds(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Content(name, err)
	}
	return b, nil
}

func sourceError(err error, message string) error {
	return errors.WrapWithCode(err, errors.ErrSource, message,
		"The dashboard retries on the next refresh.")
}
