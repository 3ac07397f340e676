package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rileyhilliard/freqmon/internal/config"
	"github.com/rileyhilliard/freqmon/internal/doctor"
	"github.com/rileyhilliard/freqmon/internal/errors"
	"github.com/rileyhilliard/freqmon/internal/ui"
	"github.com/rileyhilliard/freqmon/pkg/sshutil"
)

type doctorOptions struct {
	Mode string
	JSON bool
}

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []doctor.Category `json:"categories"`
	Summary    SummaryOutput     `json:"summary"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	doctor.Counts
	AllClear bool `json:"all_clear"`
}

// doctorCommand implements the doctor command logic.
func doctorCommand(w io.Writer, opts doctorOptions) error {
	if err := validModeFlag(opts.Mode); err != nil {
		return err
	}

	checks, probe := collectChecks(Config(), opts.Mode)
	if probe != nil {
		defer probe.Close()
	}

	report := doctor.Run(checks)
	sshutil.CloseAgent()

	if opts.JSON {
		if err := outputDoctorJSON(w, report); err != nil {
			return err
		}
	} else {
		if !isTerminal(w) {
			ui.DisableColors()
		}
		outputDoctorText(w, report)
	}

	if report.Failed() {
		return &ExitCodeError{Code: 1}
	}
	return nil
}

// collectChecks gathers the checks for the config and the mode under test.
// The source and audio checks are skipped when the config doesn't load,
// since the config checks already report why.
func collectChecks(cfgPath, modeFlag string) ([]doctor.Check, *doctor.Probe) {
	cfg, _, loadErr := config.LoadOrDefault(cfgPath)

	mode := config.ModeLocal
	if cfg != nil {
		mode = cfg.Source.Mode
	}
	if modeFlag != "" {
		mode = config.SourceMode(strings.ToLower(modeFlag))
	}

	checks := doctor.NewConfigChecks(cfgPath, cfg, mode)
	if loadErr != nil {
		return checks, nil
	}

	probe := &doctor.Probe{Config: cfg, Mode: mode, Options: sourceOptions()}
	checks = append(checks, doctor.NewSourceChecks(probe)...)
	checks = append(checks, doctor.NewAudioChecks(cfg.Alert)...)
	return checks, probe
}

// outputDoctorJSON outputs results in JSON format.
func outputDoctorJSON(w io.Writer, report doctor.Report) error {
	counts := report.Counts()
	output := DoctorOutput{
		Categories: report.Categories(),
		Summary:    SummaryOutput{Counts: counts, AllClear: counts.Issues() == 0},
	}
	if output.Categories == nil {
		output.Categories = []doctor.Category{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// outputDoctorText outputs results in human-readable format.
func outputDoctorText(w io.Writer, report doctor.Report) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, ui.BoldStyle().Render("freqmon Diagnostic Report"))
	fmt.Fprintln(w)

	rows := make([]ui.DoctorCheckRow, len(report.Results))
	for i, result := range report.Results {
		rows[i] = ui.DoctorCheckRow{
			Status:     result.Status.String(),
			Category:   report.Checks[i].Category(),
			Message:    capitalizeFirst(result.Message),
			Suggestion: result.Suggestion,
		}
	}
	fmt.Fprint(w, ui.RenderDoctorTable(rows))

	fmt.Fprintln(w, strings.Repeat("━", 60))
	fmt.Fprintln(w)

	if report.Counts().Issues() > 0 {
		fmt.Fprintf(w, "%s %s\n", ui.ErrorStyle().Render(ui.SymbolFail), report.Summary())
	} else {
		fmt.Fprintf(w, "%s %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), report.Summary())
	}
	fmt.Fprintln(w)
}

// capitalizeFirst capitalizes the first letter of a string.
func capitalizeFirst(s string) string {
	if len(s) == 0 {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-32) + s[1:]
	}
	return s
}

// validModeFlag rejects an unknown --source before any check runs.
func validModeFlag(mode string) error {
	if mode == "" || config.SourceMode(strings.ToLower(mode)).Valid() {
		return nil
	}
	return errors.New(errors.ErrConfig,
		fmt.Sprintf("'%s' isn't a source mode", mode),
		"Use --source local, --source remote, or --source ssh.")
}
