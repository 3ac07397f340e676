package doctor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/freqmon/internal/config"
	"github.com/rileyhilliard/freqmon/internal/errors"
	"github.com/rileyhilliard/freqmon/internal/source"
	"github.com/rileyhilliard/freqmon/internal/telemetry"
)

// checkTimeout bounds each network round trip a check makes.
const checkTimeout = 15 * time.Second

// Probe opens the configured source once and shares it between checks.
type Probe struct {
	Config  *config.Config
	Mode    config.SourceMode
	Options source.Options

	once sync.Once
	src  source.Source
	err  error
}

// Source opens the source on first use.
func (p *Probe) Source() (source.Source, error) {
	p.once.Do(func() {
		p.src, p.err = source.Open(p.Config, p.Mode, p.Options)
	})
	return p.src, p.err
}

// Close releases the source if it was opened.
func (p *Probe) Close() {
	if p.src != nil {
		p.src.Close() //nolint:errcheck // Best-effort close, error not actionable
	}
}

// SourceCheck lists devices in the configured source.
type SourceCheck struct {
	Probe *Probe
}

func (c *SourceCheck) Name() string     { return "source_devices" }
func (c *SourceCheck) Category() string { return "SOURCE" }

func (c *SourceCheck) Run() CheckResult {
	src, err := c.Probe.Source()
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    errors.Short(err),
			Suggestion: "Fix the source settings in .freqmon.yaml",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()
	ids, err := src.Devices(ctx)
	skipped, partial := telemetry.SkippedFiles(err)
	if err != nil && !partial {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Can't list %s: %s", src.Location(), errors.Short(err)),
			Suggestion: "Check the source is reachable and readable",
		}
	}
	if partial {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("%d device%s in %s; %s", len(ids), pluralize(len(ids)), src.Location(), skipped.Error()),
			Suggestion: fmt.Sprintf("Sample files must be named %s with a whole device number", telemetry.DataFileGlob),
		}
	}
	if len(ids) == 0 {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("No device data found in %s", src.Location()),
			Suggestion: fmt.Sprintf("The producer should write %s files there", telemetry.DataFileGlob),
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%d device%s in %s (%s)", len(ids), pluralize(len(ids)), src.Location(), formatIDs(ids)),
	}
}

// DeviceDataCheck loads every device once and reports unreadable or
// malformed files and devices without bounds.
type DeviceDataCheck struct {
	Probe *Probe
}

func (c *DeviceDataCheck) Name() string     { return "device_data" }
func (c *DeviceDataCheck) Category() string { return "SOURCE" }

func (c *DeviceDataCheck) Run() CheckResult {
	src, err := c.Probe.Source()
	if err != nil {
		// SourceCheck reports this.
		return CheckResult{Name: c.Name(), Status: StatusFail, Message: "Source not available"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()
	ids, err := src.Devices(ctx)
	if _, partial := telemetry.SkippedFiles(err); partial {
		err = nil
	}
	if err != nil || len(ids) == 0 {
		return CheckResult{Name: c.Name(), Status: StatusPass, Message: "No device files to check"}
	}

	var broken, noBounds, empty []string
	for _, id := range ids {
		w, b, err := src.Load(ctx, id)
		switch {
		case err != nil:
			broken = append(broken, fmt.Sprintf("device %d: %s", id, errors.Short(err)))
		case w.Empty():
			empty = append(empty, fmt.Sprint(id))
		case b == nil:
			noBounds = append(noBounds, fmt.Sprint(id))
		}
	}

	if len(broken) > 0 {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    strings.Join(broken, "; "),
			Suggestion: "Sample files need time, freq and freq_filtered columns; bounds files need min_freq, max_freq and timezone",
		}
	}
	if len(empty) > 0 || len(noBounds) > 0 {
		var parts []string
		if len(empty) > 0 {
			parts = append(parts, "no samples for device "+strings.Join(empty, ", "))
		}
		if len(noBounds) > 0 {
			parts = append(parts, "no bounds for device "+strings.Join(noBounds, ", "))
		}
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    strings.Join(parts, "; "),
			Suggestion: "Devices without bounds are shown but never alert",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("All %d device%s parse with bounds", len(ids), pluralize(len(ids))),
	}
}

// Pinger is an object store that can confirm its bucket exists.
type Pinger interface {
	Ping(ctx context.Context) error
	Describe() string
}

// BucketCheck confirms the remote bucket is reachable with the configured
// credentials.
type BucketCheck struct {
	Remote config.RemoteConfig

	// Store overrides the minio client built from Remote.
	Store Pinger
}

func (c *BucketCheck) Name() string     { return "bucket" }
func (c *BucketCheck) Category() string { return "SOURCE" }

func (c *BucketCheck) Run() CheckResult {
	store := c.Store
	if store == nil {
		if err := config.ValidateRemote(c.Remote); err != nil {
			return CheckResult{Name: c.Name(), Status: StatusFail, Message: errors.Short(err)}
		}
		s, err := source.NewMinioStore(c.Remote)
		if err != nil {
			return CheckResult{Name: c.Name(), Status: StatusFail, Message: errors.Short(err)}
		}
		store = s
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s: %s", store.Describe(), errors.Short(err)),
			Suggestion: "Check the bucket name, endpoint, region and credentials",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Bucket reachable: %s", store.Describe()),
	}
}

// NewSourceChecks creates the checks for the active source mode.
func NewSourceChecks(p *Probe) []Check {
	var checks []Check
	switch p.Mode {
	case config.ModeRemote:
		checks = append(checks, &BucketCheck{Remote: p.Config.Source.Remote})
	case config.ModeSSH:
		checks = append(checks, NewSSHChecks(p.Config.Source.SSH, p.Options.Dial)...)
	}
	return append(checks, &SourceCheck{Probe: p}, &DeviceDataCheck{Probe: p})
}

func formatIDs(ids []telemetry.DeviceID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}
