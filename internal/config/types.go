package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
const CurrentConfigVersion = 1

// SourceMode selects where device telemetry is read from.
type SourceMode string

const (
	ModeLocal  SourceMode = "local"
	ModeRemote SourceMode = "remote"
	ModeSSH    SourceMode = "ssh"
)

// Valid reports whether m is a known mode.
func (m SourceMode) Valid() bool {
	switch m {
	case ModeLocal, ModeRemote, ModeSSH:
		return true
	}
	return false
}

// Refresh and delay limits, in seconds.
const (
	MinRefreshInterval     = 1
	MaxRefreshInterval     = 60
	DefaultRefreshInterval = 1

	MinDelayThreshold     = 1
	MaxDelayThreshold     = 300
	DefaultDelayThreshold = 60
)

// Config represents the complete .freqmon.yaml configuration file.
type Config struct {
	Version int          `yaml:"version" mapstructure:"version"`
	Source  SourceConfig `yaml:"source" mapstructure:"source"`

	// RefreshInterval is the pause between dashboard cycles, in seconds.
	RefreshInterval int `yaml:"refresh_interval" mapstructure:"refresh_interval"`

	// DelayThreshold is how stale the newest sample may be before alerting, in seconds.
	DelayThreshold int `yaml:"delay_threshold" mapstructure:"delay_threshold"`

	Alert AlertConfig `yaml:"alert" mapstructure:"alert"`

	// SecretsFile holds object-store credentials, relative to the config file.
	SecretsFile string `yaml:"secrets_file" mapstructure:"secrets_file"`
}

// SourceConfig describes every data source; Mode picks the active one.
type SourceConfig struct {
	Mode   SourceMode   `yaml:"mode" mapstructure:"mode"`
	Dir    string       `yaml:"dir" mapstructure:"dir"`
	Remote RemoteConfig `yaml:"remote" mapstructure:"remote"`
	SSH    SSHConfig    `yaml:"ssh" mapstructure:"ssh"`
}

// RemoteConfig locates the S3-compatible bucket holding device files.
// Credentials never go in the main config file; see SecretsFile.
type RemoteConfig struct {
	Bucket   string `yaml:"bucket,omitempty" mapstructure:"bucket"`
	Prefix   string `yaml:"prefix" mapstructure:"prefix"`
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	Region   string `yaml:"region,omitempty" mapstructure:"region"`
	UseSSL   bool   `yaml:"use_ssl" mapstructure:"use_ssl"`

	AccessKey string `yaml:"-" mapstructure:"access_key"`
	SecretKey string `yaml:"-" mapstructure:"secret_key"`
}

// Configured reports whether enough is set to attempt a connection.
func (r RemoteConfig) Configured() bool {
	return r.Bucket != "" && r.Endpoint != ""
}

// SSHConfig points at a directory of device files on another machine.
type SSHConfig struct {
	// Host is an SSH config alias, hostname, user@host or host:port.
	Host    string        `yaml:"host,omitempty" mapstructure:"host"`
	Dir     string        `yaml:"dir,omitempty" mapstructure:"dir"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// StrictHostKeyChecking verifies the host against ~/.ssh/known_hosts.
	StrictHostKeyChecking bool `yaml:"strict_host_key_checking" mapstructure:"strict_host_key_checking"`
}

// AlertConfig controls the audio cue.
type AlertConfig struct {
	// Sound is the file looped while any device alerts.
	Sound string `yaml:"sound" mapstructure:"sound"`

	// Player overrides the audio player command (e.g. "paplay"). Empty auto-detects.
	Player string `yaml:"player,omitempty" mapstructure:"player"`

	Muted bool `yaml:"muted" mapstructure:"muted"`
}

// Interval returns RefreshInterval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Second
}

// Threshold returns DelayThreshold as a duration.
func (c *Config) Threshold() time.Duration {
	return time.Duration(c.DelayThreshold) * time.Second
}

// DefaultConfig returns a Config with defaults matching the standard
// artifacts/ layout of the upstream producer.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Source: SourceConfig{
			Mode: ModeLocal,
			Dir:  "artifacts/recent_data",
			Remote: RemoteConfig{
				Prefix:   "recent_data/",
				Endpoint: "s3.amazonaws.com",
				UseSSL:   true,
			},
			SSH: SSHConfig{
				Timeout:               10 * time.Second,
				StrictHostKeyChecking: true,
			},
		},
		RefreshInterval: DefaultRefreshInterval,
		DelayThreshold:  DefaultDelayThreshold,
		Alert: AlertConfig{
			Sound: "artifacts/warning.wav",
		},
		SecretsFile: ".freqmon/secrets.yaml",
	}
}
