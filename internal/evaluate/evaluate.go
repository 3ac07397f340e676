// Package evaluate decides whether a device's newest sample is out of
// bounds or stale.
package evaluate

import (
	"fmt"
	"time"

	"github.com/rileyhilliard/freqmon/internal/telemetry"
)

// Status is the verdict for one device in one cycle.
type Status struct {
	Current   float64       // filtered frequency of the newest sample
	Delay     time.Duration // how long ago the newest sample was taken
	Threshold time.Duration
	Min, Max  float64

	FrequencyOutOfBounds bool
	DelayExceeded        bool
}

// Alerting reports whether either condition fired.
func (s Status) Alerting() bool {
	return s.FrequencyOutOfBounds || s.DelayExceeded
}

// DelayMessage is the banner shown when DelayExceeded.
func (s Status) DelayMessage() string {
	return fmt.Sprintf("Delay exceeds threshold (%.1fs > %ds)!", s.Delay.Seconds(), int(s.Threshold/time.Second))
}

// Evaluate checks last against b. The frequency check is inclusive at both
// ends; the delay check fires only when the delay is strictly greater than
// threshold.
func Evaluate(last telemetry.Sample, b telemetry.Bounds, threshold time.Duration, now time.Time) Status {
	loc := b.Location
	if loc == nil {
		loc = time.UTC
	}
	delay := Delay(last, loc, now)

	return Status{
		Current:              last.FreqFiltered,
		Delay:                delay,
		Threshold:            threshold,
		Min:                  b.MinFreq,
		Max:                  b.MaxFreq,
		FrequencyOutOfBounds: !b.Contains(last.FreqFiltered),
		DelayExceeded:        delay > threshold,
	}
}

// Delay is now minus the sample's time. Naive timestamps are wall-clock
// readings in loc, so they are reinterpreted there (not converted).
// Timestamps that carried an offset are absolute already.
func Delay(last telemetry.Sample, loc *time.Location, now time.Time) time.Duration {
	return now.Sub(Localize(last, loc))
}

// Localize returns the sample's absolute time, reading a naive wall clock in loc.
func Localize(s telemetry.Sample, loc *time.Location) time.Time {
	t := s.Time
	if !s.Naive || loc == nil {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// FormatDelay renders a delay metric, e.g. "12.5 seconds".
func FormatDelay(d time.Duration) string {
	return fmt.Sprintf("%.1f seconds", d.Seconds())
}

// FormatFrequency renders a frequency metric, e.g. "1500.0 RPM".
func FormatFrequency(f float64) string {
	return fmt.Sprintf("%.1f RPM", f)
}
