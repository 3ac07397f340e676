package dashboard

import (
	"context"
	"time"

	"github.com/rileyhilliard/freqmon/internal/config"
	"github.com/rileyhilliard/freqmon/internal/telemetry"
)

// fakeSource serves canned windows and bounds.
type fakeSource struct {
	mode     config.SourceMode
	location string
	ids      []telemetry.DeviceID
	listErr  error
	skipped  []string
	windows  map[telemetry.DeviceID]*telemetry.Window
	bounds   map[telemetry.DeviceID]*telemetry.Bounds
	errs     map[telemetry.DeviceID]error
	panics   map[telemetry.DeviceID]bool

	loads  []telemetry.DeviceID
	closed int
}

func newFakeSource(mode config.SourceMode) *fakeSource {
	return &fakeSource{
		mode:     mode,
		location: "fixture",
		windows:  make(map[telemetry.DeviceID]*telemetry.Window),
		bounds:   make(map[telemetry.DeviceID]*telemetry.Bounds),
		errs:     make(map[telemetry.DeviceID]error),
		panics:   make(map[telemetry.DeviceID]bool),
	}
}

func (f *fakeSource) add(id telemetry.DeviceID, w *telemetry.Window, b *telemetry.Bounds) {
	f.ids = append(f.ids, id)
	f.windows[id] = w
	f.bounds[id] = b
}

func (f *fakeSource) Mode() config.SourceMode { return f.mode }
func (f *fakeSource) Location() string        { return f.location }

func (f *fakeSource) Devices(ctx context.Context) ([]telemetry.DeviceID, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.skipped) > 0 {
		return f.ids, &telemetry.SkippedFilesError{Names: f.skipped}
	}
	return f.ids, nil
}

func (f *fakeSource) Load(ctx context.Context, id telemetry.DeviceID) (*telemetry.Window, *telemetry.Bounds, error) {
	f.loads = append(f.loads, id)
	if f.panics[id] {
		panic("corrupt frame")
	}
	if err := f.errs[id]; err != nil {
		return nil, nil, err
	}
	return f.windows[id], f.bounds[id], nil
}

func (f *fakeSource) Close() error {
	f.closed++
	return nil
}

// fakeCue records how the dashboard drives the alert sound.
type fakeCue struct {
	starts int
	stops  int
	syncs  []bool
	muted  bool
}

func (c *fakeCue) Start()              { c.starts++ }
func (c *fakeCue) Stop()               { c.stops++ }
func (c *fakeCue) Sync(alerting bool)  { c.syncs = append(c.syncs, alerting) }
func (c *fakeCue) SetMuted(muted bool) { c.muted = muted }
func (c *fakeCue) Muted() bool         { return c.muted }

// naiveWindow builds a window of filtered values one second apart, the
// last one at last (a naive wall-clock time).
func naiveWindow(last time.Time, filtered ...float64) *telemetry.Window {
	w := &telemetry.Window{}
	start := last.Add(-time.Duration(len(filtered)-1) * time.Second)
	for i, v := range filtered {
		w.Samples = append(w.Samples, telemetry.Sample{
			Time:         start.Add(time.Duration(i) * time.Second),
			Freq:         v + 1,
			FreqFiltered: v,
			Naive:        true,
		})
	}
	return w
}

func bounds(lo, hi float64, loc *time.Location) *telemetry.Bounds {
	return &telemetry.Bounds{MinFreq: lo, MaxFreq: hi, Timezone: loc.String(), Location: loc}
}

// fixedNow returns a clock frozen at t.
func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
