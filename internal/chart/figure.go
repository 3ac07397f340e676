// Package chart turns a device's samples and bounds into a declarative
// Figure and draws that figure in a terminal with braille dots.
package chart

import (
	"fmt"
	"math"
	"time"

	"github.com/rileyhilliard/freqmon/internal/telemetry"
)

// Color is a named chart color; the renderer maps names to terminal colors.
type Color string

const (
	ColorBlue       Color = "blue"
	ColorRed        Color = "red"
	ColorLightGreen Color = "lightgreen"
)

// Mode says how a series is drawn.
type Mode string

const (
	ModeLines        Mode = "lines"
	ModeLinesMarkers Mode = "lines+markers"
)

// Series is one trace against time.
type Series struct {
	Name  string
	X     []time.Time
	Y     []float64
	Mode  Mode
	Color Color
	Width int
}

// HLine is a horizontal reference line across the plot.
type HLine struct {
	Name   string
	Y      float64
	Color  Color
	Dashed bool
}

// Band is a shaded horizontal region from Y0 up to Y1, drawn below the series.
type Band struct {
	Name    string
	Y0, Y1  float64
	Color   Color
	Opacity float64
}

// Empty reports whether the band has no extent. Bands are not reordered,
// so one whose Y1 is below its Y0 is empty rather than flipped.
func (b Band) Empty() bool {
	return !(b.Y1 > b.Y0)
}

// Figure is a complete, renderer-independent chart description.
type Figure struct {
	Title  string
	XLabel string
	YLabel string

	Series []Series
	HLines []HLine
	Bands  []Band

	// YRange fixes the y axis when set; otherwise it is auto-scaled.
	YRange *[2]float64
}

// Band opacity matches the translucent fills of the web view.
const bandOpacity = 0.2

// Build describes the chart for one device. Bounds may be nil.
func Build(id telemetry.DeviceID, w *telemetry.Window, b *telemetry.Bounds) Figure {
	fig := Figure{
		Title:  fmt.Sprintf("Device %d Frequency Data", id),
		XLabel: "Time",
		YLabel: "Frequency (RPM)",
	}

	times := w.Times()
	fig.Series = []Series{
		{Name: "Raw Frequency", X: times, Y: w.RawSeries(), Mode: ModeLinesMarkers, Color: ColorBlue, Width: 1},
		{Name: "Filtered Frequency", X: times, Y: w.FilteredSeries(), Mode: ModeLines, Color: ColorRed, Width: 2},
	}

	if b == nil {
		return fig
	}

	fig.HLines = []HLine{
		{Name: "Lower Bound", Y: b.MinFreq, Color: ColorRed, Dashed: true},
		{Name: "Upper Bound", Y: b.MaxFreq, Color: ColorRed, Dashed: true},
	}

	fig.Bands = []Band{{Name: "Normal Range", Y0: b.MinFreq, Y1: b.MaxFreq, Color: ColorLightGreen, Opacity: bandOpacity}}
	if lo, hi, ok := w.FilteredRange(); ok {
		fig.Bands = append(fig.Bands,
			Band{Name: "Below Range", Y0: lo, Y1: b.MinFreq, Color: ColorRed, Opacity: bandOpacity},
			Band{Name: "Above Range", Y0: b.MaxFreq, Y1: hi, Color: ColorRed, Opacity: bandOpacity},
		)
	}

	if lo, hi, ok := b.RenderRange(); ok {
		fig.YRange = &[2]float64{lo, hi}
	}
	return fig
}

// TimeRange returns the earliest and latest x across all series.
func (f Figure) TimeRange() (first, last time.Time, ok bool) {
	for _, s := range f.Series {
		for _, t := range s.X {
			if !ok || t.Before(first) {
				first = t
			}
			if !ok || t.After(last) {
				last = t
			}
			ok = true
		}
	}
	return first, last, ok
}

// YExtent returns the y axis range: YRange when fixed, otherwise the span
// of every finite series value and reference line, padded by 5%.
func (f Figure) YExtent() (lo, hi float64) {
	if f.YRange != nil {
		return f.YRange[0], f.YRange[1]
	}

	lo, hi = math.Inf(1), math.Inf(-1)
	see := func(v float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	for _, s := range f.Series {
		for _, v := range s.Y {
			see(v)
		}
	}
	for _, l := range f.HLines {
		see(l.Y)
	}

	switch {
	case math.IsInf(lo, 1):
		return 0, 1
	case lo == hi:
		return lo - 1, hi + 1
	}
	pad := (hi - lo) * 0.05
	return lo - pad, hi + pad
}
