package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rileyhilliard/freqmon/internal/config"
	"github.com/rileyhilliard/freqmon/internal/errors"
	"github.com/spf13/cobra"
)

// SourceFlags holds the flags that override the config file's source and
// timing settings. Empty fields leave the config untouched.
type SourceFlags struct {
	Mode      string
	Dir       string
	Interval  string
	Threshold string
}

// AddSourceFlags registers --source, --dir, --interval and --threshold on a command.
func AddSourceFlags(cmd *cobra.Command, flags *SourceFlags) {
	cmd.Flags().StringVar(&flags.Mode, "source", "", "data source: local, remote or ssh")
	cmd.Flags().StringVar(&flags.Dir, "dir", "", "directory holding recent_data_device_<N>.csv (local mode, or remote dir in ssh mode)")
	cmd.Flags().StringVar(&flags.Interval, "interval", "", "refresh interval, 1-60 seconds (e.g. 5 or 5s)")
	cmd.Flags().StringVar(&flags.Threshold, "threshold", "", "delay threshold, 1-300 seconds (e.g. 60 or 1m)")
}

// Apply writes the set flags into cfg. Range checks are left to config.Validate.
func (f SourceFlags) Apply(cfg *config.Config) error {
	if f.Mode != "" {
		mode := config.SourceMode(strings.ToLower(f.Mode))
		if !mode.Valid() {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("'%s' isn't a source mode", f.Mode),
				"Use --source local, --source remote, or --source ssh.")
		}
		cfg.Source.Mode = mode
	}

	if f.Dir != "" {
		if cfg.Source.Mode == config.ModeSSH {
			cfg.Source.SSH.Dir = f.Dir
		} else {
			cfg.Source.Dir = config.ExpandTilde(config.Expand(f.Dir))
		}
	}

	if f.Interval != "" {
		sec, err := ParseSeconds(f.Interval)
		if err != nil {
			return err
		}
		cfg.RefreshInterval = sec
	}
	if f.Threshold != "" {
		sec, err := ParseSeconds(f.Threshold)
		if err != nil {
			return err
		}
		cfg.DelayThreshold = sec
	}
	return nil
}

// ParseSeconds parses a whole number of seconds given either bare ("5") or
// as a duration ("5s", "1m").
func ParseSeconds(flag string) (int, error) {
	flag = strings.TrimSpace(flag)
	if n, err := strconv.Atoi(flag); err == nil {
		return n, nil
	}

	d, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a number of seconds", flag),
			"Try something like 5, 30s, or 2m.")
	}
	if d%time.Second != 0 {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("'%s' isn't a whole number of seconds", flag),
			"Round it to whole seconds, e.g. 2s.")
	}
	return int(d / time.Second), nil
}
