package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/freqmon/internal/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".freqmon.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/freqmon"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"

	// EnvPrefix prefixes every environment override, e.g. FREQMON_SOURCE_MODE.
	EnvPrefix = "FREQMON"
)

// Secrets file keys, also accepted as FREQMON_<KEY> environment variables.
const (
	SecretAccessKey = "S3_KEY"
	SecretSecretKey = "S3_SECRET"
	SecretBucket    = "S3_BUCKET_NAME"
)

// Load reads config from the specified path. An empty path yields defaults
// with environment overrides applied.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.WrapWithCode(err, errors.ErrConfig,
					"Config file not found",
					"Run 'freqmon init' to create a config file, or specify one with --config")
			}
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file",
				"Check the file exists and is valid YAML")
		}
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .freqmon.yaml in current directory
// 3. .freqmon.yaml in parent directories (stops at git root or home)
// 4. ~/.config/freqmon/config.yaml
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	home, _ := os.UserHomeDir()
	dir := cwd
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		if isGitRoot(dir) {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir || (home != "" && parent == home) {
			break
		}
		dir = parent
	}

	if home != "" {
		global := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(global); err == nil {
			return global, nil
		}
	}

	return "", nil
}

// LoadOrDefault finds and loads the config, falling back to defaults
// (plus environment overrides) when no file exists. Returns the path used.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())
	return v
}

// setDefaults registers every key so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("source.mode", string(d.Source.Mode))
	v.SetDefault("source.dir", d.Source.Dir)
	v.SetDefault("source.remote.bucket", d.Source.Remote.Bucket)
	v.SetDefault("source.remote.prefix", d.Source.Remote.Prefix)
	v.SetDefault("source.remote.endpoint", d.Source.Remote.Endpoint)
	v.SetDefault("source.remote.region", d.Source.Remote.Region)
	v.SetDefault("source.remote.use_ssl", d.Source.Remote.UseSSL)
	v.SetDefault("source.remote.access_key", "")
	v.SetDefault("source.remote.secret_key", "")
	v.SetDefault("source.ssh.host", d.Source.SSH.Host)
	v.SetDefault("source.ssh.dir", d.Source.SSH.Dir)
	v.SetDefault("source.ssh.timeout", d.Source.SSH.Timeout.String())
	v.SetDefault("source.ssh.strict_host_key_checking", d.Source.SSH.StrictHostKeyChecking)
	v.SetDefault("refresh_interval", d.RefreshInterval)
	v.SetDefault("delay_threshold", d.DelayThreshold)
	v.SetDefault("alert.sound", d.Alert.Sound)
	v.SetDefault("alert.player", d.Alert.Player)
	v.SetDefault("alert.muted", d.Alert.Muted)
	v.SetDefault("secrets_file", d.SecretsFile)
}

// parseConfig converts viper config to our Config struct, resolves local
// paths against the config file's directory and merges in secrets.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		where := "your environment"
		if path != "" {
			where = path
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+where)
	}

	base := configDir(path)
	cfg.Source.Mode = SourceMode(strings.ToLower(strings.TrimSpace(string(cfg.Source.Mode))))
	cfg.Source.Dir = resolvePath(base, Expand(cfg.Source.Dir))
	cfg.Source.Remote.Prefix = NormalizePrefix(cfg.Source.Remote.Prefix)
	cfg.Source.SSH.Dir = ExpandRemote(cfg.Source.SSH.Dir)
	cfg.Alert.Sound = resolvePath(base, Expand(cfg.Alert.Sound))
	cfg.SecretsFile = resolvePath(base, Expand(cfg.SecretsFile))

	if err := applySecrets(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applySecrets fills object-store credentials from the secrets file, then
// lets FREQMON_S3_* environment variables override them.
func applySecrets(cfg *Config) error {
	secrets, err := LoadSecrets(cfg.SecretsFile)
	if err != nil {
		return err
	}

	r := &cfg.Source.Remote
	pick := func(cur *string, key string) {
		if env := os.Getenv(EnvPrefix + "_" + key); env != "" {
			*cur = env
			return
		}
		if *cur == "" {
			*cur = secrets[key]
		}
	}
	pick(&r.AccessKey, SecretAccessKey)
	pick(&r.SecretKey, SecretSecretKey)
	pick(&r.Bucket, SecretBucket)
	return nil
}

// LoadSecrets reads a flat YAML map of credentials. A missing file is not an error.
func LoadSecrets(path string) (map[string]string, error) {
	out := map[string]string{}
	if path == "" {
		return out, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Can't read secrets file "+path,
			"Check file permissions")
	}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Secrets file "+path+" isn't a valid YAML map",
			"Use plain 'KEY: value' lines, e.g. S3_KEY: AKIA...")
	}
	return out, nil
}

// NormalizePrefix makes a non-empty object key prefix end in exactly one slash.
func NormalizePrefix(p string) string {
	p = strings.TrimLeft(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return strings.TrimRight(p, "/") + "/"
}

// configDir returns the directory containing the config file.
func configDir(configPath string) string {
	if configPath == "" {
		cwd, _ := os.Getwd()
		return cwd
	}
	return filepath.Dir(configPath)
}

// resolvePath expands ~ and anchors relative paths at base.
func resolvePath(base, p string) string {
	if p == "" {
		return p
	}
	p = ExpandTilde(p)
	if filepath.IsAbs(p) || base == "" {
		return p
	}
	return filepath.Join(base, p)
}

// isGitRoot checks if a directory is a git repository root.
func isGitRoot(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}
