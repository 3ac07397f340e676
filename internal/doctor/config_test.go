package doctor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rileyhilliard/freqmon/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestConfigFileCheck(t *testing.T) {
	t.Run("explicit file", func(t *testing.T) {
		path := writeConfig(t, "version: 1\n")
		result := (&ConfigFileCheck{ConfigPath: path}).Run()
		assert.Equal(t, StatusPass, result.Status)
		assert.Contains(t, result.Message, path)
	})

	t.Run("explicit file missing", func(t *testing.T) {
		result := (&ConfigFileCheck{ConfigPath: filepath.Join(t.TempDir(), "nope.yaml")}).Run()
		assert.Equal(t, StatusFail, result.Status)
		assert.Contains(t, result.Message, "not found")
	})

	t.Run("nothing to find", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0755))
		t.Chdir(dir)
		t.Setenv("HOME", dir)

		result := (&ConfigFileCheck{}).Run()
		assert.Equal(t, StatusWarn, result.Status)
		assert.Contains(t, result.Suggestion, "freqmon init")
	})
}

func TestConfigValidCheck(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		path := writeConfig(t, "version: 1\nrefresh_interval: 5\ndelay_threshold: 30\n")
		result := (&ConfigValidCheck{ConfigPath: path}).Run()
		assert.Equal(t, StatusPass, result.Status, result.Message)
		assert.Contains(t, result.Message, "refresh 5s")
		assert.Contains(t, result.Message, "delay threshold 30s")
	})

	t.Run("out of range", func(t *testing.T) {
		path := writeConfig(t, "version: 1\nrefresh_interval: 0\n")
		result := (&ConfigValidCheck{ConfigPath: path}).Run()
		assert.Equal(t, StatusFail, result.Status)
		assert.Contains(t, result.Message, "refresh_interval")
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := writeConfig(t, "source: [unclosed\n")
		result := (&ConfigValidCheck{ConfigPath: path}).Run()
		assert.Equal(t, StatusFail, result.Status)
	})
}

func TestSecretsCheck(t *testing.T) {
	remote := func(access, secret string) *config.Config {
		cfg := config.DefaultConfig()
		cfg.SecretsFile = filepath.Join(t.TempDir(), "secrets.yaml")
		cfg.Source.Remote.Bucket = "telemetry"
		cfg.Source.Remote.Endpoint = "s3.amazonaws.com"
		cfg.Source.Remote.AccessKey = access
		cfg.Source.Remote.SecretKey = secret
		return cfg
	}

	t.Run("not remote", func(t *testing.T) {
		result := (&SecretsCheck{Config: config.DefaultConfig(), Mode: config.ModeLocal}).Run()
		assert.Equal(t, StatusPass, result.Status)
		assert.Contains(t, result.Message, "local")
	})

	t.Run("no credentials", func(t *testing.T) {
		result := (&SecretsCheck{Config: remote("", ""), Mode: config.ModeRemote}).Run()
		assert.Equal(t, StatusWarn, result.Status)
		assert.Contains(t, result.Message, "no secrets file")
		assert.Contains(t, result.Suggestion, config.SecretAccessKey)
	})

	t.Run("half set", func(t *testing.T) {
		result := (&SecretsCheck{Config: remote("AKIA", ""), Mode: config.ModeRemote}).Run()
		assert.Equal(t, StatusFail, result.Status)
	})

	t.Run("both set", func(t *testing.T) {
		result := (&SecretsCheck{Config: remote("AKIA", "shh"), Mode: config.ModeRemote}).Run()
		assert.Equal(t, StatusPass, result.Status)
		assert.Contains(t, result.Message, "telemetry")
	})
}

func TestNewConfigChecks(t *testing.T) {
	assert.Len(t, NewConfigChecks("", nil, config.ModeLocal), 2)
	assert.Len(t, NewConfigChecks("", config.DefaultConfig(), config.ModeLocal), 3)
}
