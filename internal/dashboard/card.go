package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/freqmon/internal/chart"
	"github.com/rileyhilliard/freqmon/internal/errors"
	"github.com/rileyhilliard/freqmon/internal/evaluate"
)

// minChartHeight is the smallest chart drawn inside a card.
const minChartHeight = chart.MinHeight

// renderCard renders one device region.
func (m Model) renderCard(d DeviceReport, width, chartHeight int, selected bool) string {
	style := CardStyle
	switch {
	case selected:
		style = CardSelectedStyle
	case d.Alerting():
		style = CardAlertStyle
	}

	lines := []string{renderCardTitle(d, width)}

	// Load failures carry their message in a banner already; panics don't.
	if d.Err != nil && len(d.Banners) == 0 {
		lines = append(lines, truncateLine(renderBanner(Banner{SeverityError, errors.Short(d.Err)}), width))
	}
	if d.HasData() {
		lines = append(lines, renderMetrics(d))
	}
	for _, b := range d.Banners {
		lines = append(lines, truncateLine(renderBanner(b), width))
	}
	if d.Figure != nil {
		lines = append(lines, chart.Render(*d.Figure, width, chartHeight))
	}

	return style.Width(width + 2).Render(strings.Join(lines, "\n"))
}

// renderCardTitle renders "Device N" with the state on the right.
func renderCardTitle(d DeviceReport, width int) string {
	name := DeviceNameStyle.Render(fmt.Sprintf("Device %d", d.ID))
	right := renderState(d)

	gap := width - lipgloss.Width(name) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return name + strings.Repeat(" ", gap) + right
}

// renderState renders a glyph and one word for the device's state.
func renderState(d DeviceReport) string {
	var glyph, state string
	var color lipgloss.Color
	switch {
	case d.Err != nil:
		glyph, state, color = GlyphAlert, "error", ColorCritical
	case !d.HasData():
		glyph, state, color = GlyphNoData, "no data", ColorWarning
	case d.Alerting():
		glyph, state, color = GlyphAlert, "alert", ColorCritical
	case d.Status == nil:
		glyph, state, color = GlyphNoBound, "no bounds", ColorTextMuted
	default:
		glyph, state, color = GlyphOK, "ok", ColorHealthy
	}
	return lipgloss.NewStyle().Foreground(color).Render(glyph + " " + state)
}

// renderMetrics renders the current frequency and delay metrics.
func renderMetrics(d DeviceReport) string {
	cur, _ := d.Current()
	freq := LabelStyle.Render("Current Frequency ") + ValueStyle.Render(evaluate.FormatFrequency(cur))
	delay := LabelStyle.Render("Delay ") + ValueStyle.Render(evaluate.FormatDelay(d.Delay))
	return freq + "   " + delay
}

// truncateLine cuts a styled line to width cells.
func truncateLine(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
