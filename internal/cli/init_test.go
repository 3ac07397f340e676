package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rileyhilliard/freqmon/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearInitEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{envInitSource, envInitDir, envInitSSHHost, envInitNonInteractive, "CI"} {
		t.Setenv(key, "")
	}
}

func TestGetInitDefaults(t *testing.T) {
	t.Run("env vars populated", func(t *testing.T) {
		clearInitEnv(t)
		t.Setenv(envInitSource, "ssh")
		t.Setenv(envInitDir, "/env/dir")
		t.Setenv(envInitSSHHost, "lab-pi")
		t.Setenv(envInitNonInteractive, "true")

		defaults := getInitDefaults()
		assert.Equal(t, "ssh", defaults.Mode)
		assert.Equal(t, "/env/dir", defaults.Dir)
		assert.Equal(t, "lab-pi", defaults.SSHHost)
		assert.True(t, defaults.NonInteractive)
	})

	t.Run("CI env triggers non-interactive", func(t *testing.T) {
		clearInitEnv(t)
		t.Setenv("CI", "true")

		assert.True(t, getInitDefaults().NonInteractive)
	})

	t.Run("garbage is not truthy", func(t *testing.T) {
		clearInitEnv(t)
		t.Setenv("CI", "maybe")

		assert.False(t, getInitDefaults().NonInteractive)
	})

	t.Run("empty env vars", func(t *testing.T) {
		clearInitEnv(t)

		defaults := getInitDefaults()
		assert.Empty(t, defaults.Mode)
		assert.Empty(t, defaults.Dir)
		assert.Empty(t, defaults.SSHHost)
		assert.False(t, defaults.NonInteractive)
	})
}

func TestMergeInitOptions(t *testing.T) {
	t.Run("flags override env vars", func(t *testing.T) {
		clearInitEnv(t)
		t.Setenv(envInitSource, "ssh")
		t.Setenv(envInitDir, "/env/dir")

		merged := mergeInitOptions(InitOptions{Mode: "local", Dir: "/flag/dir"})
		assert.Equal(t, "local", merged.Mode)
		assert.Equal(t, "/flag/dir", merged.Dir)
	})

	t.Run("env vars fill in empty flags", func(t *testing.T) {
		clearInitEnv(t)
		t.Setenv(envInitSource, "ssh")
		t.Setenv(envInitSSHHost, "lab-pi")

		merged := mergeInitOptions(InitOptions{})
		assert.Equal(t, "ssh", merged.Mode)
		assert.Equal(t, "lab-pi", merged.SSHHost)
	})

	t.Run("CI env sets non-interactive", func(t *testing.T) {
		clearInitEnv(t)
		t.Setenv("CI", "1")

		merged := mergeInitOptions(InitOptions{NonInteractive: false})
		assert.True(t, merged.NonInteractive)
	})
}

// inTempDir runs the test from an empty directory.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	return dir
}

func readWrittenConfig(t *testing.T, dir string) *config.Config {
	t.Helper()
	path := filepath.Join(dir, config.ConfigFileName)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	return cfg
}

func TestInit_NonInteractive_Defaults(t *testing.T) {
	dir := inTempDir(t)

	require.NoError(t, Init(InitOptions{NonInteractive: true}))

	content, err := os.ReadFile(filepath.Join(dir, config.ConfigFileName))
	require.NoError(t, err)
	assert.Contains(t, string(content), "# freqmon configuration")
	assert.Contains(t, string(content), "version: 1")
	assert.NotContains(t, string(content), "access_key")

	cfg := readWrittenConfig(t, dir)
	assert.Equal(t, config.ModeLocal, cfg.Source.Mode)
	assert.Equal(t, config.DefaultRefreshInterval, cfg.RefreshInterval)
	assert.Equal(t, config.DefaultDelayThreshold, cfg.DelayThreshold)
}

func TestInit_NonInteractive_SSH(t *testing.T) {
	dir := inTempDir(t)

	require.NoError(t, Init(InitOptions{
		NonInteractive: true,
		Mode:           "SSH",
		SSHHost:        "pi@lab-pi",
		SSHDir:         "/srv/recent_data",
	}))

	cfg := readWrittenConfig(t, dir)
	assert.Equal(t, config.ModeSSH, cfg.Source.Mode)
	assert.Equal(t, "pi@lab-pi", cfg.Source.SSH.Host)
	assert.Equal(t, "/srv/recent_data", cfg.Source.SSH.Dir)
	assert.Equal(t, config.DefaultConfig().Source.SSH.Timeout, cfg.Source.SSH.Timeout)
}

func TestInit_NonInteractive_SSHNeedsHost(t *testing.T) {
	dir := inTempDir(t)

	err := Init(InitOptions{NonInteractive: true, Mode: "ssh"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SSH host is required")

	_, statErr := os.Stat(filepath.Join(dir, config.ConfigFileName))
	assert.True(t, os.IsNotExist(statErr), "nothing is written on error")
}

func TestInit_NonInteractive_RemoteWithoutBucket(t *testing.T) {
	dir := inTempDir(t)

	require.NoError(t, Init(InitOptions{
		NonInteractive: true,
		Mode:           "remote",
		Endpoint:       "minio.lab:9000",
	}))

	cfg := readWrittenConfig(t, dir)
	assert.Equal(t, config.ModeRemote, cfg.Source.Mode)
	assert.Equal(t, "minio.lab:9000", cfg.Source.Remote.Endpoint)
	assert.Empty(t, cfg.Source.Remote.Bucket)
}

func TestInit_NonInteractive_RejectsURLEndpoint(t *testing.T) {
	inTempDir(t)

	err := Init(InitOptions{NonInteractive: true, Mode: "remote", Endpoint: "https://s3.example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a URL")
}

func TestInit_NonInteractive_BadMode(t *testing.T) {
	inTempDir(t)

	err := Init(InitOptions{NonInteractive: true, Mode: "ftp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "isn't a source mode")
}

func TestInit_NonInteractive_ConfigExists(t *testing.T) {
	dir := inTempDir(t)
	path := filepath.Join(dir, config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0644))

	err := Init(InitOptions{NonInteractive: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already a config file")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "version: 1\n", string(content))
}

func TestInit_NonInteractive_ForceOverwrite(t *testing.T) {
	dir := inTempDir(t)
	path := filepath.Join(dir, config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0644))

	require.NoError(t, Init(InitOptions{NonInteractive: true, Overwrite: true, Dir: "data"}))

	cfg := readWrittenConfig(t, dir)
	assert.Equal(t, filepath.Join(dir, "data"), cfg.Source.Dir, "relative dirs resolve against the config file")
}

func TestCheckExistingConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.ConfigFileName)

	proceed, err := checkExistingConfig(path, InitOptions{})
	require.NoError(t, err)
	assert.True(t, proceed, "no config yet")

	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0644))

	proceed, err = checkExistingConfig(path, InitOptions{Overwrite: true})
	require.NoError(t, err)
	assert.True(t, proceed)

	proceed, err = checkExistingConfig(path, InitOptions{NonInteractive: true})
	require.Error(t, err)
	assert.False(t, proceed)
}

func TestBuildInitConfig_Timing(t *testing.T) {
	vals, err := initialValues(InitOptions{})
	require.NoError(t, err)

	vals.interval = "5s"
	vals.threshold = "2m"
	cfg, err := buildInitConfig(vals)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.RefreshInterval)
	assert.Equal(t, 120, cfg.DelayThreshold)

	vals.threshold = "3000"
	_, err = buildInitConfig(vals)
	assert.Error(t, err, "threshold out of range")
}

func TestSecondsInRange(t *testing.T) {
	validate := secondsInRange(1, 60)

	assert.NoError(t, validate("1"))
	assert.NoError(t, validate("60"))
	assert.NoError(t, validate("30s"))
	assert.Error(t, validate("0"))
	assert.Error(t, validate("61"))
	assert.Error(t, validate("soon"))
}

func TestValidEndpoint(t *testing.T) {
	assert.NoError(t, validEndpoint("s3.amazonaws.com"))
	assert.NoError(t, validEndpoint("localhost:9000"))
	assert.Error(t, validEndpoint(""))
	assert.Error(t, validEndpoint("http://localhost:9000"))
}
