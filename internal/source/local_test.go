package source

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/rileyhilliard/freqmon/internal/config"
	"github.com/rileyhilliard/freqmon/internal/errors"
	"github.com/rileyhilliard/freqmon/internal/logger"
	"github.com/rileyhilliard/freqmon/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sampleCSV = "time,freq,freq_filtered\n" +
		"2024-01-01T00:00:00,1500,1499\n" +
		"2024-01-01T00:00:01,1502,1500.5\n"
	boundsCSV = "min_freq,max_freq,timezone,y_min,y_max\n1450,1550,UTC,1400,1600\n"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

// writeCSV writes rows the way a producer would, header first.
func writeCSV(t *testing.T, path string, rows [][]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	w := csv.NewWriter(f)
	require.NoError(t, w.WriteAll(rows))
}

func TestLocal_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

	rows := [][]string{{"", "time", "freq", "freq_filtered"}}
	for i := 0; i < 5; i++ {
		ts := start.Add(time.Duration(i) * time.Second).Format("2006-01-02 15:04:05")
		rows = append(rows, []string{
			strconv.Itoa(i), ts,
			[]string{"1500", "1501.5", "1499", "1503", "1500"}[i],
			[]string{"1500", "1500.7", "1500.1", "1501", "1500.9"}[i],
		})
	}
	writeCSV(t, filepath.Join(dir, telemetry.DataFileName(2)), rows)
	writeCSV(t, filepath.Join(dir, telemetry.BoundsFileName(2)), [][]string{
		{"min_freq", "max_freq", "timezone"},
		{"1450", "1550", "Europe/Berlin"},
	})

	src := NewLocal(dir, logger.Noop())
	ids, err := src.Devices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []telemetry.DeviceID{2}, ids)

	w, b, err := src.Load(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, 5, w.Len())
	assert.Equal(t, start, w.Samples[0].Time)
	assert.Equal(t, start.Add(4*time.Second), w.Samples[4].Time)
	assert.Equal(t, []float64{1500, 1501.5, 1499, 1503, 1500}, w.RawSeries())
	assert.Equal(t, 1500.9, w.Samples[4].FreqFiltered)

	require.NotNil(t, b)
	assert.Equal(t, 1450.0, b.MinFreq)
	assert.Equal(t, 1550.0, b.MaxFreq)
	assert.Equal(t, "Europe/Berlin", b.Location.String())
}

func TestLocal_Devices(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "recent_data_device_3.csv", sampleCSV)
	writeFile(t, dir, "recent_data_device_1.csv", sampleCSV)
	writeFile(t, dir, "freq_bounds_device_7.csv", boundsCSV)
	writeFile(t, dir, "README.md", "hi")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "recent_data_device_9.csv"), 0755))

	src := NewLocal(dir, logger.Noop())
	ids, err := src.Devices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []telemetry.DeviceID{1, 3}, ids, "bounds-only devices and directories are not listed")

	t.Run("missing directory has no devices", func(t *testing.T) {
		ids, err := NewLocal(filepath.Join(dir, "nope"), logger.Noop()).Devices(context.Background())
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("unparsable id is skipped", func(t *testing.T) {
		mixed := t.TempDir()
		writeFile(t, mixed, "recent_data_device_0.csv", sampleCSV)
		writeFile(t, mixed, "recent_data_device_x.csv", sampleCSV)
		writeFile(t, mixed, "recent_data_device_2.csv", sampleCSV)

		ids, err := NewLocal(mixed, logger.Noop()).Devices(context.Background())
		assert.Equal(t, []telemetry.DeviceID{0, 2}, ids)
		skipped, ok := telemetry.SkippedFiles(err)
		require.True(t, ok)
		assert.Equal(t, []string{"recent_data_device_x.csv"}, skipped.Names)
	})
}

func TestLocal_Load(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "recent_data_device_1.csv", sampleCSV)
	writeFile(t, dir, "freq_bounds_device_1.csv", boundsCSV)
	writeFile(t, dir, "recent_data_device_2.csv", sampleCSV)
	writeFile(t, dir, "freq_bounds_device_3.csv", boundsCSV)
	writeFile(t, dir, "recent_data_device_4.csv", "time,freq\n2024-01-01,1\n")
	writeFile(t, dir, "recent_data_device_5.csv", sampleCSV)
	writeFile(t, dir, "freq_bounds_device_5.csv", "min_freq,max_freq,timezone\n1,2,Nowhere/Land\n")

	log := logger.NewBufferLogger()
	src := NewLocal(dir, log)

	t.Run("window and bounds", func(t *testing.T) {
		w, b, err := src.Load(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 2, w.Len())
		require.NotNil(t, b)
		lo, hi, ok := b.RenderRange()
		assert.True(t, ok)
		assert.Equal(t, 1400.0, lo)
		assert.Equal(t, 1600.0, hi)
	})

	t.Run("missing bounds is not an error", func(t *testing.T) {
		w, b, err := src.Load(ctx, 2)
		require.NoError(t, err)
		assert.NotNil(t, w)
		assert.Nil(t, b)
		assert.True(t, log.HasLevel("debug"))
	})

	t.Run("missing samples means no data even with bounds", func(t *testing.T) {
		w, b, err := src.Load(ctx, 3)
		require.NoError(t, err)
		assert.Nil(t, w)
		assert.Nil(t, b)
	})

	t.Run("malformed samples", func(t *testing.T) {
		_, _, err := src.Load(ctx, 4)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrContent))
		assert.Contains(t, errors.Short(err), "freq_filtered")
	})

	t.Run("malformed bounds", func(t *testing.T) {
		_, _, err := src.Load(ctx, 5)
		assert.True(t, errors.IsCode(err, errors.ErrContent))
	})

	t.Run("unreadable sample file", func(t *testing.T) {
		require.NoError(t, os.Mkdir(filepath.Join(dir, "recent_data_device_6.csv"), 0755))
		_, _, err := src.Load(ctx, 6)
		assert.True(t, errors.IsCode(err, errors.ErrSource))
	})
}

func TestOpen(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Source.Dir = t.TempDir()

	src, err := Open(cfg, config.ModeLocal, Options{})
	require.NoError(t, err)
	assert.Equal(t, config.ModeLocal, src.Mode())
	assert.Equal(t, cfg.Source.Dir, src.Location())

	_, err = Open(cfg, config.ModeRemote, Options{})
	assert.True(t, errors.IsCode(err, errors.ErrConfig), "remote without a bucket is a config error")

	cfg.Source.Remote.Bucket = "telemetry"
	src, err = Open(cfg, config.ModeRemote, Options{Store: newFakeStore()})
	require.NoError(t, err)
	assert.Equal(t, config.ModeRemote, src.Mode())

	_, err = Open(cfg, config.ModeSSH, Options{})
	assert.True(t, errors.IsCode(err, errors.ErrConfig))

	_, err = Open(cfg, "ftp", Options{})
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}
