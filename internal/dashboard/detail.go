package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/freqmon/internal/chart"
	"github.com/rileyhilliard/freqmon/internal/errors"
	"github.com/rileyhilliard/freqmon/internal/evaluate"
)

var (
	detailSectionStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorder).
				Padding(0, 1)

	detailTitleStyle = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Bold(true)
)

// detailChartHeight is the chart height in the detail view when the
// terminal size is not known yet.
const detailChartHeight = 20

// renderDetailView renders the selected device full screen, scrollable.
func (m Model) renderDetailView() string {
	d, ok := m.SelectedDevice()
	if !ok {
		return LabelStyle.Render("No device selected")
	}

	var b strings.Builder
	b.WriteString(m.renderDetailHeader(d))
	b.WriteString("\n\n")
	if m.viewportReady {
		b.WriteString(m.detailViewport.View())
	} else {
		b.WriteString(m.renderDetailContent(d))
	}
	b.WriteString("\n")
	b.WriteString(FooterStyle.Render("esc back | ↑↓ scroll | r refresh | q quit"))
	return b.String()
}

func (m Model) renderDetailHeader(d DeviceReport) string {
	title := detailTitleStyle.Render(fmt.Sprintf("Device %d", d.ID))
	return title + "  " + renderState(d) + MutedStyle.Render("  updated "+m.updatedText())
}

// updateDetailViewportContent re-renders the detail content into the viewport.
func (m *Model) updateDetailViewportContent() {
	if !m.viewportReady {
		return
	}
	d, ok := m.SelectedDevice()
	if !ok {
		m.detailViewport.SetContent("")
		return
	}
	m.detailViewport.SetContent(m.renderDetailContent(d))
}

// renderDetailContent renders metrics, bounds and a large chart.
func (m Model) renderDetailContent(d DeviceReport) string {
	width := m.width - 4
	if width < 40 {
		width = 40
	}
	chartHeight := detailChartHeight
	if m.height > 0 {
		chartHeight = max(m.height-16, minChartHeight)
	}

	var sections []string

	var lines []string
	if d.HasData() {
		lines = append(lines, renderMetrics(d))
		lines = append(lines, LabelStyle.Render(fmt.Sprintf("Samples %d", d.Window.Len())))
	}
	for _, b := range d.Banners {
		lines = append(lines, renderBanner(b))
	}
	if d.Err != nil {
		lines = append(lines, MutedStyle.Render(errors.Short(d.Err)))
	}
	sections = append(sections, detailSectionStyle.Width(width).Render(strings.Join(lines, "\n")))

	if d.Bounds != nil {
		b := d.Bounds
		bl := []string{
			detailTitleStyle.Render("Bounds"),
			LabelStyle.Render("Range    ") + ValueStyle.Render(fmt.Sprintf("%s to %s", evaluate.FormatFrequency(b.MinFreq), evaluate.FormatFrequency(b.MaxFreq))),
			LabelStyle.Render("Timezone ") + ValueStyle.Render(b.Timezone),
		}
		if lo, hi, ok := b.RenderRange(); ok {
			bl = append(bl, LabelStyle.Render("Y axis   ")+ValueStyle.Render(fmt.Sprintf("%g to %g", lo, hi)))
		}
		if d.Status != nil {
			bl = append(bl, LabelStyle.Render("Delay threshold ")+ValueStyle.Render(fmt.Sprintf("%ds", int(d.Status.Threshold.Seconds()))))
		}
		sections = append(sections, detailSectionStyle.Width(width).Render(strings.Join(bl, "\n")))
	}

	if d.Figure != nil {
		sections = append(sections, chart.Render(*d.Figure, width, chartHeight))
	}

	return strings.Join(sections, "\n")
}
