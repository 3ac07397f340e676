package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/rileyhilliard/freqmon/internal/chart"
	"github.com/rileyhilliard/freqmon/internal/config"
	"github.com/rileyhilliard/freqmon/internal/errors"
	"github.com/rileyhilliard/freqmon/internal/evaluate"
	"github.com/rileyhilliard/freqmon/internal/logger"
	"github.com/rileyhilliard/freqmon/internal/source"
	"github.com/rileyhilliard/freqmon/internal/telemetry"
)

// Messages shown by the dashboard.
const (
	MsgNoDevices    = "No device data found in the recent data directory."
	MsgOutOfBounds  = "Frequency out of bounds!"
	MsgWithinBounds = "Frequency within bounds"
)

// Severity ranks a banner.
type Severity int

const (
	SeverityOK Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "ok"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Banner is one line of status shown in a device region.
type Banner struct {
	Severity Severity
	Text     string
}

// DeviceReport is everything one cycle learned about one device.
type DeviceReport struct {
	ID     telemetry.DeviceID
	Window *telemetry.Window
	Bounds *telemetry.Bounds

	// Status is nil when the device has no data or no bounds.
	Status *evaluate.Status

	// Delay is set whenever there is data, with or without bounds.
	Delay time.Duration

	Banners []Banner
	Figure  *chart.Figure

	// Err is a load failure or a recovered panic, shown inline.
	Err error
}

// HasData reports whether a non-empty window was loaded.
func (d DeviceReport) HasData() bool {
	return !d.Window.Empty()
}

// Alerting reports whether the device raised an alert this cycle.
func (d DeviceReport) Alerting() bool {
	return d.Status != nil && d.Status.Alerting()
}

// Current returns the newest filtered frequency. ok is false without data.
func (d DeviceReport) Current() (v float64, ok bool) {
	last, ok := d.Window.Last()
	return last.FreqFiltered, ok
}

// Report is the result of one refresh cycle.
type Report struct {
	Mode     config.SourceMode
	Location string
	Started  time.Time
	Finished time.Time

	Devices []DeviceReport

	// Warnings are cycle-level messages, such as no devices found or
	// sample files skipped for a bad device number.
	Warnings []string

	// Err is set when the device listing failed.
	Err error

	// CueStarted is true when an alerting device started the cue.
	CueStarted bool
}

// Alerting returns the ids of alerting devices.
func (r Report) Alerting() []telemetry.DeviceID {
	var ids []telemetry.DeviceID
	for _, d := range r.Devices {
		if d.Alerting() {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

// CycleOptions tunes one cycle.
type CycleOptions struct {
	Threshold time.Duration

	// Now defaults to time.Now.
	Now func() time.Time

	// Local is the zone used for the delay metric of devices without
	// bounds. Defaults to time.Local.
	Local *time.Location

	// Cue is called once, for the first alerting device. May be nil.
	Cue func()

	Log logger.Logger
}

// RunCycle performs one refresh against src. It never fails as a whole:
// listing faults become Report.Err, per-device faults become that
// device's Err.
func RunCycle(ctx context.Context, src source.Source, opts CycleOptions) Report {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Local == nil {
		opts.Local = time.Local
	}
	if opts.Log == nil {
		opts.Log = logger.Noop()
	}

	r := Report{
		Mode:     src.Mode(),
		Location: src.Location(),
		Started:  opts.Now(),
	}
	defer func() { r.Finished = opts.Now() }()

	ids, err := src.Devices(ctx)
	if skipped, ok := telemetry.SkippedFiles(err); ok {
		opts.Log.Warn("listing devices in %s: %s", r.Location, skipped.Error())
		r.Warnings = append(r.Warnings, skipped.Error())
		err = nil
	}
	if err != nil {
		opts.Log.Warn("listing devices in %s: %s", r.Location, errors.Short(err))
		r.Err = err
		ids = nil
	}
	if len(ids) == 0 {
		r.Warnings = append(r.Warnings, MsgNoDevices)
		return r
	}

	cueStarted := false
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		var d DeviceReport
		d, cueStarted = processDevice(ctx, src, id, opts, cueStarted)
		r.Devices = append(r.Devices, d)
	}
	r.CueStarted = cueStarted
	return r
}

// NoDataMessage is the warning for a device with no usable samples.
func NoDataMessage(id telemetry.DeviceID) string {
	return fmt.Sprintf("No valid data available for Device %d", id)
}

// processDevice handles one device region. cueStarted is the cycle's flag
// going in; the returned flag is true once any device has started the cue.
func processDevice(ctx context.Context, src source.Source, id telemetry.DeviceID, opts CycleOptions, cueStarted bool) (d DeviceReport, started bool) {
	d.ID = id
	started = cueStarted

	defer func() {
		if p := recover(); p != nil {
			opts.Log.Error("device %d: panic: %v", id, p)
			d = DeviceReport{
				ID:  id,
				Err: errors.New(errors.ErrContent, fmt.Sprintf("Error processing data for Device %d: %v", id, p), ""),
			}
		}
	}()

	w, b, err := src.Load(ctx, id)
	if err != nil {
		opts.Log.Warn("device %d: %s", id, errors.Short(err))
		d.Err = err
		d.Banners = append(d.Banners, Banner{SeverityError, errors.Short(err)})
		return d, started
	}
	if w.Empty() {
		d.Banners = append(d.Banners, Banner{SeverityWarning, NoDataMessage(id)})
		return d, started
	}
	d.Window, d.Bounds = w, b

	last, _ := w.Last()
	now := opts.Now()
	if b == nil {
		d.Delay = evaluate.Delay(last, opts.Local, now)
	} else {
		st := evaluate.Evaluate(last, *b, opts.Threshold, now)
		d.Status = &st
		d.Delay = st.Delay

		if st.FrequencyOutOfBounds {
			d.Banners = append(d.Banners, Banner{SeverityError, MsgOutOfBounds})
		}
		if st.DelayExceeded {
			d.Banners = append(d.Banners, Banner{SeverityError, st.DelayMessage()})
		}
		if st.Alerting() {
			if !started && opts.Cue != nil {
				opts.Cue()
			}
			started = true
		} else {
			d.Banners = append(d.Banners, Banner{SeverityOK, MsgWithinBounds})
		}
	}

	fig := chart.Build(id, w, b)
	d.Figure = &fig
	return d, started
}
