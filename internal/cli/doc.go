// Package cli implements the freqmon command-line interface.
//
// Each Cobra command is a thin shell: it parses flags into an options
// struct and hands off to a *Command function that does the work against
// the internal packages.
//
// # Command Structure
//
// The root command "freqmon" starts the dashboard when run bare:
//
//	freqmon [watch]     - Live dashboard (the default)
//	freqmon check       - One headless refresh cycle; exits 2 if any device alerts
//	freqmon devices     - List device ids in the data source
//	freqmon init        - Create .freqmon.yaml
//	freqmon doctor      - Diagnose config, data source and audio
//	freqmon version     - Print version info
//
// # Flag Handling
//
// Global flags (--config, --verbose, --no-color) are defined on the root
// command. SourceFlags (--source, --dir, --interval, --threshold) override
// the config file for a single run and are shared by watch, check and
// devices through AddSourceFlags.
//
// # Exit Codes
//
// Commands whose outcome sets the exit status return ExitCodeError, which
// run turns into the process exit code without printing anything more.
// --json output always goes through the JSONEnvelope.
package cli
