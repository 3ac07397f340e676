package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/freqmon/internal/errors"
)

// renderDashboard renders the list view: header, device cards, status, footer.
func (m Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderBody())
	b.WriteString("\n")
	if line := m.renderStatusLine(); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(m.renderFooter())

	return b.String()
}

// renderHeader renders the title with source and settings summary.
func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("freqmon")

	var parts []string
	if m.src != nil {
		parts = append(parts, fmt.Sprintf("%s %s", m.src.Mode(), m.src.Location()))
	}
	if m.report != nil {
		parts = append(parts, fmt.Sprintf("%d devices", len(m.report.Devices)))
		if n := len(m.report.Alerting()); n > 0 {
			parts = append(parts, StatusErrorStyle.Render(fmt.Sprintf("%d alerting", n)))
		}
	}
	parts = append(parts,
		fmt.Sprintf("every %ds", m.intervalSec),
		fmt.Sprintf("threshold %ds", m.thresholdSec),
	)
	if m.Muted() {
		parts = append(parts, "muted")
	}
	parts = append(parts, "updated "+m.updatedText())

	stats := lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Render(" | " + strings.Join(parts, " | "))

	return HeaderStyle.Render(title + stats)
}

func (m Model) updatedText() string {
	if m.report == nil {
		return "never"
	}
	switch s := m.SecondsSinceUpdate(); s {
	case 0:
		return "just now"
	case 1:
		return "1s ago"
	default:
		return fmt.Sprintf("%ds ago", s)
	}
}

// renderBody renders cycle-level messages followed by the card grid.
func (m Model) renderBody() string {
	if m.report == nil {
		return LabelStyle.Render("Reading devices...")
	}

	var lines []string
	if m.report.Err != nil {
		lines = append(lines, renderBanner(Banner{SeverityError, "Can't list devices: " + errors.Short(m.report.Err)}))
	}
	for _, w := range m.report.Warnings {
		lines = append(lines, renderBanner(Banner{SeverityWarning, w}))
	}
	if len(m.report.Devices) > 0 {
		lines = append(lines, m.renderDeviceCards())
	}
	return strings.Join(lines, "\n")
}

// renderDeviceCards lays the cards out in rows.
func (m Model) renderDeviceCards() string {
	devices := m.report.Devices
	perRow := m.cardsPerRow()
	cardWidth := m.calculateCardWidth(perRow)
	chartHeight := m.cardChartHeight(perRow)

	var rows []string
	for i := 0; i < len(devices); i += perRow {
		end := min(i+perRow, len(devices))
		var cards []string
		for j := i; j < end; j++ {
			cards = append(cards, m.renderCard(devices[j], cardWidth, chartHeight, j == m.selected))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) cardsPerRow() int {
	if m.width >= BreakpointWide && m.deviceCount() > 1 {
		return 2
	}
	return 1
}

// calculateCardWidth returns the inner width of one card.
func (m Model) calculateCardWidth(perRow int) int {
	if m.width == 0 {
		return 60
	}
	// border (2) + padding (2) + margin (1)
	w := m.width/perRow - 5
	if w < 30 {
		w = 30
	}
	return w
}

// cardChartHeight shares the vertical space left by the header and footer
// between rows of cards.
func (m Model) cardChartHeight(perRow int) int {
	const (
		chrome     = 6 // header, blank, status, footer
		cardChrome = 6 // border, title, metrics, one banner
		maxHeight  = 16
	)
	if m.height == 0 {
		return 10
	}
	rows := (m.deviceCount() + perRow - 1) / perRow
	h := (m.height-chrome)/max(rows, 1) - cardChrome
	return clamp(h, minChartHeight, maxHeight)
}

// renderStatusLine shows the latest action feedback.
func (m Model) renderStatusLine() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return FooterStyle.Render(StatusErrorStyle.Render(m.status))
	}
	return FooterStyle.Render(m.status)
}

// renderFooter renders the keyboard help footer.
func (m Model) renderFooter() string {
	hints := []string{
		"q quit",
		"r refresh",
		"m source",
		"+/- interval",
		"[/] threshold",
		"a mute",
		"↑↓ select",
		"enter detail",
		"? help",
	}
	return FooterStyle.Render(strings.Join(hints, " | "))
}
