package cli

import (
	"os"

	"github.com/rileyhilliard/freqmon/internal/errors"
	"github.com/spf13/cobra"
)

// Command-specific flags
var (
	watchFlags   watchOptions
	checkFlags   checkOptions
	devicesFlags devicesOptions
	initFlags    InitOptions
	doctorFlags  doctorOptions
)

// watchCmd starts the interactive dashboard
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live dashboard of device frequency and staleness",
	Long: `Start the interactive dashboard. Every refresh interval freqmon lists the
devices in the data source, loads each device's recent samples and bounds,
and shows a card per device with its current frequency, delay and chart.

A device alerts when its newest filtered frequency leaves [min_freq, max_freq]
or its newest sample is older than the delay threshold. While any device
alerts, the alert sound loops.

Keyboard shortcuts:
  q / Ctrl+C  Quit
  r           Refresh now
  m           Switch between local and the configured remote source
  + / -       Refresh interval up/down
  ] / [       Delay threshold up/down
  a           Mute/unmute audio
  up/k down/j Select device
  Enter       Device detail view
  Esc         Back
  ?           Help

Examples:
  freqmon watch
  freqmon watch --source remote
  freqmon watch --dir ./artifacts/recent_data --interval 5 --threshold 2m`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchCommand(watchFlags)
	},
}

// checkCmd runs one cycle headless
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one refresh cycle and print the result",
	Long: `Run exactly one refresh cycle without the dashboard and print each device's
status. Exits 2 when any device alerts and 1 when the data source can't be
listed, so it can drive cron jobs and health checks.

Examples:
  freqmon check
  freqmon check --json
  freqmon check --source ssh --threshold 30s --chart`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkCommand(cmd.OutOrStdout(), checkFlags)
	},
}

// devicesCmd lists device ids
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List devices found in the data source",
	Long: `List the device ids that have a recent_data_device_<N>.csv file in the
active data source.

Examples:
  freqmon devices
  freqmon devices --source remote --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return devicesCommand(cmd.OutOrStdout(), devicesFlags)
	},
}

// initCmd creates a new .freqmon.yaml configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .freqmon.yaml configuration",
	Long: `Create a .freqmon.yaml file in the current directory.

Asks which data source to use (local directory, S3-compatible bucket or a
directory on an SSH host) and the refresh and alert settings. With
--non-interactive the flags and defaults are written without prompting.

Examples:
  freqmon init
  freqmon init --source ssh --ssh-host lab-pi
  freqmon init --non-interactive --source local --dir ./artifacts/recent_data`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Init(mergeInitOptions(initFlags))
	},
}

// doctorCmd diagnoses configuration and data source issues
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose config, data source and audio issues",
	Long: `Run diagnostic checks to find common problems.

Checks:
  - Config file location and validity
  - Object store credentials and bucket (remote mode)
  - SSH keys, agent and remote directory (ssh mode)
  - Device files and bounds in the data source
  - Alert sound file and audio player

Examples:
  freqmon doctor
  freqmon doctor --source remote
  freqmon doctor --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd.OutOrStdout(), doctorFlags)
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for freqmon.

Examples:
  # Bash
  freqmon completion bash > /etc/bash_completion.d/freqmon

  # Zsh
  freqmon completion zsh > "${fpath[1]}/_freqmon"

  # Fish
  freqmon completion fish > ~/.config/fish/completions/freqmon.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(os.Stdout)
		default:
			return errors.New(errors.ErrExec,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	// watch command flags
	AddSourceFlags(watchCmd, &watchFlags.Source)
	watchCmd.Flags().BoolVar(&watchFlags.NoSound, "no-sound", false, "never play the alert sound")

	// check command flags
	AddSourceFlags(checkCmd, &checkFlags.Source)
	checkCmd.Flags().BoolVar(&checkFlags.JSON, "json", false, "output in JSON format")
	checkCmd.Flags().BoolVar(&checkFlags.Chart, "chart", false, "draw each device's chart")

	// devices command flags
	AddSourceFlags(devicesCmd, &devicesFlags.Source)
	devicesCmd.Flags().BoolVar(&devicesFlags.JSON, "json", false, "output in JSON format")

	// init command flags
	initCmd.Flags().StringVar(&initFlags.Mode, "source", "", "data source: local, remote or ssh")
	initCmd.Flags().StringVar(&initFlags.Dir, "dir", "", "local directory holding the device files")
	initCmd.Flags().StringVar(&initFlags.Bucket, "bucket", "", "S3 bucket (remote mode)")
	initCmd.Flags().StringVar(&initFlags.Endpoint, "endpoint", "", "S3 endpoint host[:port] (remote mode)")
	initCmd.Flags().StringVar(&initFlags.SSHHost, "ssh-host", "", "SSH host or alias (ssh mode)")
	initCmd.Flags().StringVar(&initFlags.SSHDir, "ssh-dir", "", "directory on the SSH host (ssh mode)")
	initCmd.Flags().BoolVarP(&initFlags.Overwrite, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVar(&initFlags.NonInteractive, "non-interactive", false, "write the config without prompting")

	// doctor command flags
	doctorCmd.Flags().StringVar(&doctorFlags.Mode, "source", "", "check this source mode instead of the configured one")
	doctorCmd.Flags().BoolVar(&doctorFlags.JSON, "json", false, "output in JSON format")

	// Register all commands
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(completionCmd)
}
