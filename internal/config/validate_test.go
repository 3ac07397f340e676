package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		errContains string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{
			name:        "future version",
			mutate:      func(c *Config) { c.Version = 99 },
			errContains: "from the future",
		},
		{
			name:        "interval too small",
			mutate:      func(c *Config) { c.RefreshInterval = 0 },
			errContains: "refresh_interval needs to be 1-60",
		},
		{
			name:        "interval too large",
			mutate:      func(c *Config) { c.RefreshInterval = 61 },
			errContains: "refresh_interval",
		},
		{name: "interval at max", mutate: func(c *Config) { c.RefreshInterval = 60 }},
		{name: "threshold at max", mutate: func(c *Config) { c.DelayThreshold = 300 }},
		{
			name:        "threshold too large",
			mutate:      func(c *Config) { c.DelayThreshold = 301 },
			errContains: "delay_threshold needs to be 1-300",
		},
		{
			name:        "unknown mode",
			mutate:      func(c *Config) { c.Source.Mode = "ftp" },
			errContains: "source.mode 'ftp'",
		},
		{
			name:        "local without dir",
			mutate:      func(c *Config) { c.Source.Dir = " " },
			errContains: "source.dir is empty",
		},
		{
			name:        "remote without bucket",
			mutate:      func(c *Config) { c.Source.Mode = ModeRemote },
			errContains: "bucket is empty",
		},
		{
			name: "remote with URL endpoint",
			mutate: func(c *Config) {
				c.Source.Mode = ModeRemote
				c.Source.Remote.Bucket = "b"
				c.Source.Remote.Endpoint = "https://s3.example.com"
			},
			errContains: "not a URL",
		},
		{
			name: "remote with half credentials",
			mutate: func(c *Config) {
				c.Source.Mode = ModeRemote
				c.Source.Remote.Bucket = "b"
				c.Source.Remote.AccessKey = "k"
			},
			errContains: "only one of S3_KEY and S3_SECRET",
		},
		{
			name: "remote anonymous",
			mutate: func(c *Config) {
				c.Source.Mode = ModeRemote
				c.Source.Remote.Bucket = "b"
			},
		},
		{
			name:        "ssh without host",
			mutate:      func(c *Config) { c.Source.Mode = ModeSSH },
			errContains: "source.ssh.host is empty",
		},
		{
			name: "ssh with unexpanded dir",
			mutate: func(c *Config) {
				c.Source.Mode = ModeSSH
				c.Source.SSH.Host = "gw"
				c.Source.SSH.Dir = "${DATA}/recent"
			},
			errContains: "unexpanded variable",
		},
		{
			name: "ssh negative timeout",
			mutate: func(c *Config) {
				c.Source.Mode = ModeSSH
				c.Source.SSH.Host = "gw"
				c.Source.SSH.Dir = "~/recent"
				c.Source.SSH.Timeout = -time.Second
			},
			errContains: "negative",
		},
		{
			name: "inactive mode settings are not checked",
			mutate: func(c *Config) {
				c.Source.SSH.Dir = "${BROKEN}"
				c.Source.Remote.AccessKey = "only-key"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.errContains)
			}
		})
	}

	assert.Error(t, Validate(nil))
}
