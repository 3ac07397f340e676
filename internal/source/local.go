package source

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rileyhilliard/freqmon/internal/config"
	"github.com/rileyhilliard/freqmon/internal/logger"
	"github.com/rileyhilliard/freqmon/internal/telemetry"
)

// Local reads device files from a directory on this machine.
type Local struct {
	dir string
	log logger.Logger
}

var _ Source = (*Local)(nil)

// NewLocal creates a Local source rooted at dir.
func NewLocal(dir string, log logger.Logger) *Local {
	return &Local{dir: dir, log: log}
}

func (l *Local) Mode() config.SourceMode { return config.ModeLocal }
func (l *Local) Location() string        { return l.dir }
func (l *Local) Close() error            { return nil }

// Devices lists the directory. A missing directory has no devices.
func (l *Local) Devices(ctx context.Context) ([]telemetry.DeviceID, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			l.log.Debug("data directory %s does not exist", l.dir)
			return nil, nil
		}
		return nil, sourceError(err, "Can't list "+l.dir)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return telemetry.DeviceIDsFromNames(names)
}

func (l *Local) Load(ctx context.Context, id telemetry.DeviceID) (*telemetry.Window, *telemetry.Bounds, error) {
	samplePath := filepath.Join(l.dir, telemetry.DataFileName(id))
	data, err := os.ReadFile(samplePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, sourceError(err, "Can't read "+samplePath)
	}
	w, err := decodeWindow(samplePath, data)
	if err != nil {
		return nil, nil, err
	}

	boundsPath := filepath.Join(l.dir, telemetry.BoundsFileName(id))
	data, err = os.ReadFile(boundsPath)
	if err != nil {
		if os.IsNotExist(err) {
			l.log.Debug("device %d has no bounds file", id)
			return w, nil, nil
		}
		return nil, nil, sourceError(err, "Can't read "+boundsPath)
	}
	b, err := decodeBounds(boundsPath, data)
	if err != nil {
		return nil, nil, err
	}
	return w, b, nil
}
