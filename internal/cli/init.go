package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/freqmon/internal/config"
	"github.com/rileyhilliard/freqmon/internal/errors"
	"github.com/rileyhilliard/freqmon/internal/ui"
	"github.com/rileyhilliard/freqmon/pkg/sshutil"
	"gopkg.in/yaml.v3"
)

// Environment variables read by init when the matching flag is empty.
const (
	envInitSource         = "FREQMON_INIT_SOURCE"
	envInitDir            = "FREQMON_INIT_DIR"
	envInitSSHHost        = "FREQMON_INIT_SSH_HOST"
	envInitNonInteractive = "FREQMON_NON_INTERACTIVE"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Mode           string // local, remote or ssh
	Dir            string // Local directory holding the device files
	Bucket         string // S3 bucket (remote mode)
	Endpoint       string // S3 endpoint host[:port] (remote mode)
	SSHHost        string // SSH host or alias (ssh mode)
	SSHDir         string // Directory on the SSH host (ssh mode)
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use flags and defaults
}

// getInitDefaults reads init defaults from the environment.
func getInitDefaults() InitOptions {
	return InitOptions{
		Mode:           os.Getenv(envInitSource),
		Dir:            os.Getenv(envInitDir),
		SSHHost:        os.Getenv(envInitSSHHost),
		NonInteractive: isTruthy(os.Getenv(envInitNonInteractive)) || isTruthy(os.Getenv("CI")),
	}
}

// mergeInitOptions fills empty flags from the environment. CI forces
// non-interactive mode.
func mergeInitOptions(opts InitOptions) InitOptions {
	defaults := getInitDefaults()
	if opts.Mode == "" {
		opts.Mode = defaults.Mode
	}
	if opts.Dir == "" {
		opts.Dir = defaults.Dir
	}
	if opts.SSHHost == "" {
		opts.SSHHost = defaults.SSHHost
	}
	if defaults.NonInteractive {
		opts.NonInteractive = true
	}
	return opts
}

func isTruthy(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}

// initValues are the answers that end up in the written config.
type initValues struct {
	mode      config.SourceMode
	dir       string
	bucket    string
	endpoint  string
	prefix    string
	sshHost   string
	sshDir    string
	interval  string
	threshold string
}

// Init creates a new .freqmon.yaml configuration file.
func Init(opts InitOptions) error {
	configPath := filepath.Join(".", config.ConfigFileName)

	proceed, err := checkExistingConfig(configPath, opts)
	if err != nil {
		return err
	}
	if !proceed {
		fmt.Println("Cancelled.")
		return nil
	}

	vals, err := initialValues(opts)
	if err != nil {
		return err
	}

	if !opts.NonInteractive {
		if err := promptValues(&vals); err != nil {
			return err
		}
	}

	cfg, err := buildInitConfig(vals)
	if err != nil {
		return err
	}

	if err := writeConfigFile(configPath, cfg); err != nil {
		return err
	}

	fmt.Printf("%s Created %s\n\n", ui.SymbolSuccess, configPath)
	if cfg.Source.Mode == config.ModeRemote {
		fmt.Printf("Put S3_KEY and S3_SECRET in %s (keep it out of git).\n\n", cfg.SecretsFile)
	}
	fmt.Println("Next steps:")
	fmt.Println("  freqmon doctor   - Check configuration and data source")
	fmt.Println("  freqmon check    - Run one cycle and print the result")
	fmt.Println("  freqmon          - Start the dashboard")

	return nil
}

// checkExistingConfig decides whether init may write configPath.
func checkExistingConfig(configPath string, opts InitOptions) (bool, error) {
	if _, err := os.Stat(configPath); err != nil || opts.Overwrite {
		return true, nil
	}

	if opts.NonInteractive {
		return false, errors.New(errors.ErrConfig,
			fmt.Sprintf("There's already a config file at %s", configPath),
			"Use --force to overwrite")
	}

	var overwrite bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
				Value(&overwrite),
		),
	)
	if err := form.Run(); err != nil {
		return false, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Try running with --force to overwrite")
	}
	return overwrite, nil
}

// initialValues seeds the answers from flags and defaults.
func initialValues(opts InitOptions) (initValues, error) {
	defaults := config.DefaultConfig()
	vals := initValues{
		mode:      defaults.Source.Mode,
		dir:       defaults.Source.Dir,
		endpoint:  defaults.Source.Remote.Endpoint,
		prefix:    defaults.Source.Remote.Prefix,
		interval:  strconv.Itoa(defaults.RefreshInterval),
		threshold: strconv.Itoa(defaults.DelayThreshold),
	}

	if opts.Mode != "" {
		mode := config.SourceMode(strings.ToLower(opts.Mode))
		if !mode.Valid() {
			return vals, errors.New(errors.ErrConfig,
				fmt.Sprintf("'%s' isn't a source mode", opts.Mode),
				"Use --source local, --source remote, or --source ssh.")
		}
		vals.mode = mode
	}
	if opts.Dir != "" {
		vals.dir = opts.Dir
	}
	if opts.Bucket != "" {
		vals.bucket = opts.Bucket
	}
	if opts.Endpoint != "" {
		vals.endpoint = opts.Endpoint
	}
	vals.sshHost = opts.SSHHost
	vals.sshDir = opts.SSHDir
	if vals.sshDir == "" {
		vals.sshDir = "~/" + defaults.Source.Dir
	}
	return vals, nil
}

// promptValues asks for everything the chosen mode needs.
func promptValues(vals *initValues) error {
	mode := string(vals.mode)
	modeForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Where are the device files?").
				Options(
					huh.NewOption("Local directory", string(config.ModeLocal)),
					huh.NewOption("S3-compatible bucket", string(config.ModeRemote)),
					huh.NewOption("Directory on an SSH host", string(config.ModeSSH)),
				).
				Value(&mode),
		),
	)
	if err := modeForm.Run(); err != nil {
		return inputError(err)
	}
	vals.mode = config.SourceMode(mode)

	if vals.mode == config.ModeSSH && vals.sshHost == "" {
		host, err := pickSSHHost()
		if err != nil {
			return err
		}
		vals.sshHost = host
	}

	form := huh.NewForm(append(sourceGroups(vals), timingGroup(vals))...)
	if err := form.Run(); err != nil {
		return inputError(err)
	}
	return nil
}

func sourceGroups(vals *initValues) []*huh.Group {
	switch vals.mode {
	case config.ModeRemote:
		return []*huh.Group{huh.NewGroup(
			huh.NewInput().
				Title("Bucket").
				Description("Leave empty to read S3_BUCKET_NAME from the secrets file").
				Value(&vals.bucket),
			huh.NewInput().
				Title("Endpoint").
				Description("host[:port] of the S3 API").
				Value(&vals.endpoint).
				Validate(validEndpoint),
			huh.NewInput().
				Title("Key prefix").
				Value(&vals.prefix),
		)}
	case config.ModeSSH:
		return []*huh.Group{huh.NewGroup(
			huh.NewInput().
				Title("SSH host or alias").
				Description("Enter hostname, user@host, or SSH config alias").
				Placeholder("lab-pi or pi@192.168.1.40").
				Value(&vals.sshHost).
				Validate(required("SSH host")),
			huh.NewInput().
				Title("Remote directory").
				Description("Directory holding recent_data_device_<N>.csv on the host").
				Value(&vals.sshDir).
				Validate(required("remote directory")),
		)}
	}
	return []*huh.Group{huh.NewGroup(
		huh.NewInput().
			Title("Data directory").
			Description("Directory holding recent_data_device_<N>.csv").
			Value(&vals.dir).
			Validate(required("data directory")),
	)}
}

func timingGroup(vals *initValues) *huh.Group {
	return huh.NewGroup(
		huh.NewInput().
			Title("Refresh interval (seconds)").
			Value(&vals.interval).
			Validate(secondsInRange(config.MinRefreshInterval, config.MaxRefreshInterval)),
		huh.NewInput().
			Title("Delay threshold (seconds)").
			Description("Alert when the newest sample is older than this").
			Value(&vals.threshold).
			Validate(secondsInRange(config.MinDelayThreshold, config.MaxDelayThreshold)),
	)
}

// pickSSHHost offers the hosts from ~/.ssh/config. An empty result means
// the user will type one in.
func pickSSHHost() (string, error) {
	hosts, err := sshutil.ListHosts()
	if err != nil || len(hosts) == 0 {
		return "", nil
	}

	choice, err := ui.PickSSHHost(hosts)
	if err != nil {
		return "", inputError(err)
	}
	switch {
	case choice.Cancelled():
		return "", errors.New(errors.ErrConfig, "Cancelled", "")
	case choice.Manual:
		return "", nil
	}
	return choice.Host.Alias, nil
}

// buildInitConfig turns the answers into a config, checking what the
// chosen mode needs.
func buildInitConfig(vals initValues) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Source.Mode = vals.mode

	switch vals.mode {
	case config.ModeLocal:
		if err := required("data directory")(vals.dir); err != nil {
			return nil, initValueError(err, "--dir")
		}
		cfg.Source.Dir = vals.dir
	case config.ModeRemote:
		if err := validEndpoint(vals.endpoint); err != nil {
			return nil, initValueError(err, "--endpoint")
		}
		cfg.Source.Remote.Bucket = vals.bucket
		cfg.Source.Remote.Endpoint = vals.endpoint
		cfg.Source.Remote.Prefix = config.NormalizePrefix(vals.prefix)
	case config.ModeSSH:
		if err := required("SSH host")(vals.sshHost); err != nil {
			return nil, initValueError(err, "--ssh-host")
		}
		cfg.Source.SSH.Host = vals.sshHost
		cfg.Source.SSH.Dir = vals.sshDir
	}

	interval, err := ParseSeconds(vals.interval)
	if err != nil {
		return nil, err
	}
	threshold, err := ParseSeconds(vals.threshold)
	if err != nil {
		return nil, err
	}
	cfg.RefreshInterval = interval
	cfg.DelayThreshold = threshold

	if vals.mode == config.ModeRemote && vals.bucket == "" {
		// The bucket may still come from the secrets file.
		return cfg, nil
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// writeConfigFile writes cfg as YAML with a short header.
func writeConfigFile(path string, cfg *config.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to generate config",
			"This shouldn't happen - please report this bug")
	}

	header := `# freqmon configuration
# Run 'freqmon' to start the dashboard, 'freqmon doctor' to check the setup.
# Secrets (S3_KEY, S3_SECRET) belong in secrets_file, never here.

`
	if err := os.WriteFile(path, []byte(header+string(data)), 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", path),
			"Check directory permissions")
	}
	return nil
}

func required(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}

func validEndpoint(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("endpoint is required")
	}
	if strings.Contains(s, "://") {
		return fmt.Errorf("use host[:port], not a URL")
	}
	return nil
}

func secondsInRange(lo, hi int) func(string) error {
	return func(s string) error {
		sec, err := ParseSeconds(s)
		if err != nil {
			return fmt.Errorf("enter whole seconds, e.g. 5")
		}
		if sec < lo || sec > hi {
			return fmt.Errorf("needs to be %d-%d", lo, hi)
		}
		return nil
	}
}

func initValueError(err error, flag string) error {
	return errors.WrapWithCode(err, errors.ErrConfig,
		capitalizeFirst(err.Error()),
		"Provide "+flag+" or run init interactively")
}

func inputError(err error) error {
	return errors.WrapWithCode(err, errors.ErrConfig,
		"Failed to get user input",
		"Check terminal compatibility or use --non-interactive")
}
