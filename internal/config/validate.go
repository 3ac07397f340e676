package config

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/freqmon/internal/errors"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but freqmon only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade freqmon to the latest release.")
	}

	if err := validateRange("refresh_interval", cfg.RefreshInterval, MinRefreshInterval, MaxRefreshInterval); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check 'refresh_interval' in your .freqmon.yaml.")
	}
	if err := validateRange("delay_threshold", cfg.DelayThreshold, MinDelayThreshold, MaxDelayThreshold); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check 'delay_threshold' in your .freqmon.yaml.")
	}

	if err := validateSource(cfg.Source); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'source' section in your .freqmon.yaml.")
	}
	return nil
}

func validateRange(name string, v, lo, hi int) error {
	if v < lo || v > hi {
		return fmt.Errorf("%s needs to be %d-%d seconds (got %d)", name, lo, hi, v)
	}
	return nil
}

// validateSource checks only the settings of the active mode; the others
// may be half-filled since the dashboard can switch to them at runtime.
func validateSource(src SourceConfig) error {
	if !src.Mode.Valid() {
		return fmt.Errorf("source.mode '%s' isn't valid - use 'local', 'remote', or 'ssh'", src.Mode)
	}

	switch src.Mode {
	case ModeLocal:
		if strings.TrimSpace(src.Dir) == "" {
			return fmt.Errorf("source.dir is empty - point it at the directory holding recent_data_device_*.csv")
		}
	case ModeRemote:
		return ValidateRemote(src.Remote)
	case ModeSSH:
		return ValidateSSH(src.SSH)
	}
	return nil
}

// ValidateRemote checks that the object-store settings are usable.
func ValidateRemote(r RemoteConfig) error {
	if r.Bucket == "" {
		return fmt.Errorf("source.remote.bucket is empty - set it here or as S3_BUCKET_NAME in the secrets file")
	}
	if r.Endpoint == "" {
		return fmt.Errorf("source.remote.endpoint is empty - use e.g. 's3.amazonaws.com'")
	}
	if strings.Contains(r.Endpoint, "://") {
		return fmt.Errorf("source.remote.endpoint '%s' should be a host[:port], not a URL - use 'use_ssl' for https", r.Endpoint)
	}
	if (r.AccessKey == "") != (r.SecretKey == "") {
		return fmt.Errorf("only one of S3_KEY and S3_SECRET is set - provide both, or neither for anonymous access")
	}
	return nil
}

// ValidateSSH checks that the SSH source settings are usable.
// Tilde is allowed in the dir since the remote shell expands it.
func ValidateSSH(s SSHConfig) error {
	if strings.TrimSpace(s.Host) == "" {
		return fmt.Errorf("source.ssh.host is empty - use an SSH alias or 'user@hostname'")
	}
	if strings.TrimSpace(s.Dir) == "" {
		return fmt.Errorf("source.ssh.dir is empty - point it at the remote recent_data directory")
	}
	if strings.Contains(s.Dir, "${") {
		return fmt.Errorf("source.ssh.dir has an unexpanded variable: %s", s.Dir)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("source.ssh.timeout can't be negative")
	}
	return nil
}
