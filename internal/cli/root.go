package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/rileyhilliard/freqmon/internal/config"
	"github.com/rileyhilliard/freqmon/internal/errors"
	"github.com/rileyhilliard/freqmon/internal/logger"
	"github.com/rileyhilliard/freqmon/internal/ui"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile string
	verbose bool
	noColor bool
)

// rootCmd runs the dashboard when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "freqmon",
	Short: "Live terminal dashboard for device frequency telemetry",
	Long: `freqmon polls per-device frequency telemetry, charts it in the terminal,
and raises visual and audio alerts when a device leaves its frequency band
or its data goes stale.

Run without a subcommand to start the dashboard (same as 'freqmon watch').`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.EnableDebug(true)
		}
		if noColor || os.Getenv("NO_COLOR") != "" {
			ui.DisableColors()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchCommand(watchFlags)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .freqmon.yaml, searched upward)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging (to freqmon-debug.log while the dashboard runs)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// The bare command is the dashboard, so it takes the watch flags too.
	AddSourceFlags(rootCmd, &watchFlags.Source)
	rootCmd.Flags().BoolVar(&watchFlags.NoSound, "no-sound", false, "never play the alert sound")
}

// Config returns the --config flag value.
func Config() string {
	return cfgFile
}

// ExitCodeError ends the process with Code after printing nothing further.
// Commands return it when the outcome, not a failure, sets the exit status.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Execute runs the root command and exits on error.
func Execute() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}

	var exitErr *ExitCodeError
	if stderrors.As(err, &exitErr) {
		return exitErr.Code
	}

	if isUnknownCommandError(err) {
		fmt.Fprintf(os.Stderr, "%s %s\n", ui.ErrorStyle().Render(ui.SymbolFail), err)
		if name := extractUnknownCommand(err); name != "" {
			fmt.Fprintf(os.Stderr, "\n  '%s' isn't a freqmon command. Run 'freqmon --help' to see what is.\n", name)
		}
		return 1
	}

	fmt.Fprint(os.Stderr, renderError(err))
	return 1
}

// renderError prints structured errors as their three-part block and
// anything else on one line.
func renderError(err error) string {
	var fmErr *errors.Error
	if stderrors.As(err, &fmErr) {
		return fmErr.Error()
	}
	return fmt.Sprintf("%s %s\n", ui.SymbolFail, err)
}

func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}

// extractUnknownCommand pulls the name out of cobra's
// `unknown command "foo" for "freqmon"` message.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start == -1 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end == -1 {
		return ""
	}
	return msg[start+1 : start+1+end]
}

// loadConfig finds and loads the config, applies source flag overrides and
// validates the result. path is empty when running on defaults.
func loadConfig(flags SourceFlags) (cfg *config.Config, path string, err error) {
	cfg, path, err = config.LoadOrDefault(Config())
	if err != nil {
		return nil, "", err
	}
	if err := flags.Apply(cfg); err != nil {
		return nil, "", err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}
