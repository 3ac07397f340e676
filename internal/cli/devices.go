package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rileyhilliard/freqmon/internal/dashboard"
	"github.com/rileyhilliard/freqmon/internal/source"
	"github.com/rileyhilliard/freqmon/internal/telemetry"
	"github.com/rileyhilliard/freqmon/internal/ui"
)

// devicesTimeout bounds the listing round trip.
const devicesTimeout = 30 * time.Second

type devicesOptions struct {
	Source SourceFlags
	JSON   bool
}

// DevicesOutput is the --json form of the devices command.
type DevicesOutput struct {
	Mode     string               `json:"mode"`
	Location string               `json:"location"`
	Devices  []telemetry.DeviceID `json:"devices"`
	Warnings []string             `json:"warnings,omitempty"`
}

// devicesCommand lists the device ids in the active source.
func devicesCommand(w io.Writer, opts devicesOptions) error {
	cfg, _, err := loadConfig(opts.Source)
	if err != nil {
		return devicesFail(w, opts.JSON, err)
	}

	src, err := source.Open(cfg, cfg.Source.Mode, sourceOptions())
	if err != nil {
		return devicesFail(w, opts.JSON, err)
	}
	defer src.Close() //nolint:errcheck // Best-effort close, error not actionable

	ctx, cancel := context.WithTimeout(context.Background(), devicesTimeout)
	defer cancel()

	ids, err := src.Devices(ctx)
	var warnings []string
	if skipped, ok := telemetry.SkippedFiles(err); ok {
		warnings = append(warnings, skipped.Error())
		err = nil
	}
	if err != nil {
		return devicesFail(w, opts.JSON, err)
	}
	if ids == nil {
		ids = []telemetry.DeviceID{}
	}

	if opts.JSON {
		return WriteJSONSuccess(w, DevicesOutput{
			Mode:     string(src.Mode()),
			Location: src.Location(),
			Devices:  ids,
			Warnings: warnings,
		})
	}

	renderDevices(w, src, ids, warnings)
	return nil
}

func renderDevices(w io.Writer, src source.Source, ids []telemetry.DeviceID, warnings []string) {
	if !isTerminal(w) {
		ui.DisableColors()
	}
	for _, warning := range warnings {
		fmt.Fprintf(w, "%s %s\n", ui.WarningStyle().Render(ui.SymbolWarning), warning)
	}
	if len(ids) == 0 {
		fmt.Fprintf(w, "%s %s\n", ui.WarningStyle().Render(ui.SymbolWarning), dashboard.MsgNoDevices)
		fmt.Fprintf(w, "  %s\n", ui.MutedStyle().Render(src.Location()))
		return
	}

	rows := make([][]string, len(ids))
	for i, id := range ids {
		rows[i] = []string{fmt.Sprint(id), telemetry.DataFileName(id), telemetry.BoundsFileName(id)}
	}
	fmt.Fprintf(w, "%s %s\n\n", ui.BoldStyle().Render(string(src.Mode())), ui.MutedStyle().Render(src.Location()))
	fmt.Fprintln(w, ui.RenderSimpleTable([]ui.TableColumn{
		{Title: "Device", Width: 8},
		{Title: "Samples", Width: 28},
		{Title: "Bounds", Width: 28},
	}, rows))
}

func devicesFail(w io.Writer, asJSON bool, err error) error {
	if !asJSON {
		return err
	}
	WriteJSONFromError(w, err) //nolint:errcheck // Already failing
	return &ExitCodeError{Code: 1}
}
