// Package telemetry defines the per-device records the dashboard reads:
// sample windows and frequency bounds, plus their CSV decoding and the
// file naming convention shared by every data source.
package telemetry

import (
	"math"
	"time"
)

// DeviceID identifies one monitored device. Always positive.
type DeviceID int

// Sample is one row of a device's recent-data file.
type Sample struct {
	Time         time.Time `json:"time"`
	Freq         float64   `json:"freq"`
	FreqFiltered float64   `json:"freq_filtered"`

	// Naive is set when the timestamp had no zone offset. Time then holds
	// the wall clock in UTC and must be localized before comparing.
	Naive bool `json:"-"`
}

// Window is a device's current samples, ascending by time.
type Window struct {
	Samples []Sample `json:"samples"`
}

// Len returns the number of samples.
func (w *Window) Len() int {
	if w == nil {
		return 0
	}
	return len(w.Samples)
}

// Empty reports whether the window has no samples. A nil window is empty.
func (w *Window) Empty() bool {
	return w.Len() == 0
}

// Last returns the most recent sample. ok is false for an empty window.
func (w *Window) Last() (s Sample, ok bool) {
	if w.Empty() {
		return Sample{}, false
	}
	return w.Samples[len(w.Samples)-1], true
}

// Times returns the sample timestamps.
func (w *Window) Times() []time.Time {
	out := make([]time.Time, w.Len())
	for i, s := range w.Samples {
		out[i] = s.Time
	}
	return out
}

// RawSeries returns the raw frequency column.
func (w *Window) RawSeries() []float64 {
	out := make([]float64, w.Len())
	for i, s := range w.Samples {
		out[i] = s.Freq
	}
	return out
}

// FilteredSeries returns the filtered frequency column.
func (w *Window) FilteredSeries() []float64 {
	out := make([]float64, w.Len())
	for i, s := range w.Samples {
		out[i] = s.FreqFiltered
	}
	return out
}

// FilteredRange returns the smallest and largest filtered values, skipping NaN.
// ok is false when there is no finite filtered value.
func (w *Window) FilteredRange() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range w.Samples {
		v := s.FreqFiltered
		if math.IsNaN(v) {
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 0, false
	}
	return lo, hi, true
}

// Bounds is a device's acceptable frequency band and display metadata.
type Bounds struct {
	MinFreq float64 `json:"min_freq"`
	MaxFreq float64 `json:"max_freq"`

	// YMin and YMax fix the chart's y-axis; used only when both are set.
	YMin *float64 `json:"y_min,omitempty"`
	YMax *float64 `json:"y_max,omitempty"`

	// Timezone is the IANA name as written in the file; Location is its resolved zone.
	Timezone string         `json:"timezone"`
	Location *time.Location `json:"-"`
}

// RenderRange returns the explicit y-axis range when both ends are present.
func (b *Bounds) RenderRange() (lo, hi float64, ok bool) {
	if b == nil || b.YMin == nil || b.YMax == nil {
		return 0, 0, false
	}
	return *b.YMin, *b.YMax, true
}

// Contains reports whether v lies inside [MinFreq, MaxFreq].
func (b Bounds) Contains(v float64) bool {
	return !(v < b.MinFreq || v > b.MaxFreq)
}
