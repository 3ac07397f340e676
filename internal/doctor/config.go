package doctor

import (
	"fmt"
	"os"

	"github.com/rileyhilliard/freqmon/internal/config"
	"github.com/rileyhilliard/freqmon/internal/errors"
)

// ConfigFileCheck reports which config file is in use.
type ConfigFileCheck struct {
	ConfigPath string // Explicit path, or empty to search
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return "CONFIG" }

func (c *ConfigFileCheck) Run() CheckResult {
	path, err := config.Find(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    errors.Short(err),
			Suggestion: "Check the --config path",
		}
	}

	if path == "" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "No config file found, using defaults",
			Suggestion: "Run 'freqmon init' to create a .freqmon.yaml",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Config file: %s", path),
	}
}

// ConfigValidCheck loads and validates the config.
type ConfigValidCheck struct {
	ConfigPath string
}

func (c *ConfigValidCheck) Name() string     { return "config_valid" }
func (c *ConfigValidCheck) Category() string { return "CONFIG" }

func (c *ConfigValidCheck) Run() CheckResult {
	cfg, _, err := config.LoadOrDefault(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    errors.Short(err),
			Suggestion: "Check the YAML syntax in your config file",
		}
	}

	if err := config.Validate(cfg); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    errors.Short(err),
			Suggestion: "Fix the setting in .freqmon.yaml or the matching FREQMON_* variable",
		}
	}

	return CheckResult{
		Name:   c.Name(),
		Status: StatusPass,
		Message: fmt.Sprintf("Source %s, refresh %ds, delay threshold %ds",
			cfg.Source.Mode, cfg.RefreshInterval, cfg.DelayThreshold),
	}
}

// SecretsCheck looks at object-store credentials. Only meaningful for
// remote mode; otherwise it passes with a note.
type SecretsCheck struct {
	Config *config.Config
	Mode   config.SourceMode
}

func (c *SecretsCheck) Name() string     { return "secrets" }
func (c *SecretsCheck) Category() string { return "CONFIG" }

func (c *SecretsCheck) Run() CheckResult {
	if c.Mode != config.ModeRemote {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: fmt.Sprintf("No credentials needed for %s mode", c.Mode),
		}
	}

	path := c.Config.SecretsFile
	_, statErr := os.Stat(path)
	rc := c.Config.Source.Remote

	if rc.AccessKey == "" && rc.SecretKey == "" {
		msg := "No S3 credentials set, trying AWS environment and ~/.aws/credentials"
		if path != "" && statErr != nil {
			msg += fmt.Sprintf(" (no secrets file at %s)", path)
		}
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    msg,
			Suggestion: fmt.Sprintf("Put %s and %s in %s, or set FREQMON_%s / FREQMON_%s", config.SecretAccessKey, config.SecretSecretKey, path, config.SecretAccessKey, config.SecretSecretKey),
		}
	}

	if err := config.ValidateRemote(rc); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    errors.Short(err),
			Suggestion: "Set both keys in the secrets file or the environment",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("S3 credentials loaded for bucket %s", rc.Bucket),
	}
}

// NewConfigChecks creates the config checks.
func NewConfigChecks(configPath string, cfg *config.Config, mode config.SourceMode) []Check {
	checks := []Check{
		&ConfigFileCheck{ConfigPath: configPath},
		&ConfigValidCheck{ConfigPath: configPath},
	}
	if cfg != nil {
		checks = append(checks, &SecretsCheck{Config: cfg, Mode: mode})
	}
	return checks
}
