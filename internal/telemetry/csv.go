package telemetry

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// Column names of the two file schemas.
const (
	ColTime         = "time"
	ColFreq         = "freq"
	ColFreqFiltered = "freq_filtered"

	ColMinFreq  = "min_freq"
	ColMaxFreq  = "max_freq"
	ColTimezone = "timezone"
	ColYMin     = "y_min"
	ColYMax     = "y_max"
)

// timeLayouts are tried in order. Layouts without a zone produce naive
// wall-clock times (UTC location) that the evaluator later localizes.
var timeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime parses a timestamp the way upstream producers write them.
// naive is true when the text carried no zone offset.
func ParseTime(s string) (t time.Time, naive bool, err error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, !strings.Contains(layout, "Z07"), nil
		}
	}
	return time.Time{}, false, fmt.Errorf("unrecognized timestamp %q", s)
}

// ParseWindow decodes a recent-data CSV. The header must name at least
// time, freq and freq_filtered; other columns are ignored. Empty numeric
// cells decode as NaN. Rows must be ascending by time.
func ParseWindow(r io.Reader) (*Window, error) {
	cr := newReader(r)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("file is empty (no header row)")
		}
		return nil, err
	}
	idx, err := columnIndex(header, ColTime, ColFreq, ColFreqFiltered)
	if err != nil {
		return nil, err
	}

	w := &Window{}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		ts, naive, err := ParseTime(rec[idx[ColTime]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		freq, err := parseFloat(rec[idx[ColFreq]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", line, ColFreq, err)
		}
		filtered, err := parseFloat(rec[idx[ColFreqFiltered]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", line, ColFreqFiltered, err)
		}

		if n := len(w.Samples); n > 0 && ts.Before(w.Samples[n-1].Time) {
			return nil, fmt.Errorf("line %d: time %s goes backwards", line, rec[idx[ColTime]])
		}
		w.Samples = append(w.Samples, Sample{Time: ts, Freq: freq, FreqFiltered: filtered, Naive: naive})
	}
	return w, nil
}

// ParseBounds decodes a bounds CSV and returns its first row. A file with a
// header but no rows yields (nil, nil): the device has no bounds. An
// inverted row (min_freq > max_freq) is kept as written, so no value is
// within bounds.
func ParseBounds(r io.Reader) (*Bounds, error) {
	cr := newReader(r)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("file is empty (no header row)")
		}
		return nil, err
	}
	idx, err := columnIndex(header, ColMinFreq, ColMaxFreq, ColTimezone)
	if err != nil {
		return nil, err
	}

	rec, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	b := &Bounds{}
	if b.MinFreq, err = parseRequiredFloat(rec[idx[ColMinFreq]]); err != nil {
		return nil, fmt.Errorf("%s: %w", ColMinFreq, err)
	}
	if b.MaxFreq, err = parseRequiredFloat(rec[idx[ColMaxFreq]]); err != nil {
		return nil, fmt.Errorf("%s: %w", ColMaxFreq, err)
	}

	b.Timezone = strings.TrimSpace(rec[idx[ColTimezone]])
	if b.Timezone == "" {
		return nil, fmt.Errorf("%s is empty", ColTimezone)
	}
	if b.Location, err = time.LoadLocation(b.Timezone); err != nil {
		return nil, fmt.Errorf("%s: %w", ColTimezone, err)
	}

	if b.YMin, err = optionalFloat(idx, rec, ColYMin); err != nil {
		return nil, err
	}
	if b.YMax, err = optionalFloat(idx, rec, ColYMax); err != nil {
		return nil, err
	}
	return b, nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	return cr
}

// columnIndex maps required column names to their positions.
func columnIndex(header []string, required ...string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		// A UTF-8 BOM sneaks into the first header cell of some exports.
		h = strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	var missing []string
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing column(s): %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseRequiredFloat(s string) (float64, error) {
	v, err := parseFloat(s)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) {
		return 0, errors.New("value is empty")
	}
	return v, nil
}

func optionalFloat(idx map[string]int, rec []string, col string) (*float64, error) {
	i, ok := idx[col]
	if !ok {
		return nil, nil
	}
	v, err := parseFloat(rec[i])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", col, err)
	}
	if math.IsNaN(v) {
		return nil, nil
	}
	return &v, nil
}
