package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

// Version information set via ldflags at build time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionFlags struct {
	Short bool
	JSON  bool
}

// VersionOutput is the --json form of the version command.
type VersionOutput struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
	OS      string `json:"os"`
	Arch    string `json:"arch"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of freqmon.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if versionFlags.JSON {
			return WriteJSONSuccess(cmd.OutOrStdout(), currentVersion())
		}
		printVersion(cmd.OutOrStdout(), versionFlags.Short)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionFlags.Short, "short", false, "print only the version number")
	versionCmd.Flags().BoolVar(&versionFlags.JSON, "json", false, "output in JSON format")
}

func currentVersion() VersionOutput {
	return VersionOutput{
		Version: version,
		Commit:  commit,
		Date:    date,
		Go:      runtime.Version(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}
}

func printVersion(w io.Writer, short bool) {
	if short {
		fmt.Fprintln(w, version)
		return
	}

	v := currentVersion()
	fmt.Fprintf(w, "freqmon %s\n", formatVersion(v.Version))
	fmt.Fprintf(w, "commit: %s\n", v.Commit)
	fmt.Fprintf(w, "built: %s\n", v.Date)
	fmt.Fprintf(w, "go: %s\n", v.Go)
	fmt.Fprintf(w, "os/arch: %s/%s\n", v.OS, v.Arch)
}

// formatVersion adds a 'v' prefix to release versions.
func formatVersion(v string) string {
	if v == "" || v == "dev" || v[0] == 'v' {
		return v
	}
	return "v" + v
}

// SetVersionInfo sets the version information (called from main).
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
