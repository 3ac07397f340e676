package dashboard

import "github.com/charmbracelet/lipgloss"

// Dashboard color palette
const (
	ColorSurfaceBg = lipgloss.Color("#12121A")
	ColorBorder    = lipgloss.Color("#2A2A4A")

	ColorHealthy  = lipgloss.Color("#39FF14")
	ColorWarning  = lipgloss.Color("#FFAA00")
	ColorCritical = lipgloss.Color("#FF0055")

	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")

	ColorAccent = lipgloss.Color("#FF2E97")
)

// Base styles for the dashboard
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			MarginRight(1)

	CardSelectedStyle = CardStyle.
				BorderForeground(ColorAccent)

	CardAlertStyle = CardStyle.
			BorderForeground(ColorCritical)

	DeviceNameStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(ColorCritical)
)

// Device state glyphs shown next to the card title.
const (
	GlyphOK      = "◉"
	GlyphAlert   = "◉"
	GlyphNoData  = "◌"
	GlyphNoBound = "◔"
)

// Banner prefixes by severity.
var bannerPrefix = map[Severity]string{
	SeverityOK:      "✓ ",
	SeverityWarning: "⚠ ",
	SeverityError:   "⚠ ",
}

// SeverityColor maps a banner severity to its color.
func SeverityColor(s Severity) lipgloss.Color {
	switch s {
	case SeverityOK:
		return ColorHealthy
	case SeverityWarning:
		return ColorWarning
	default:
		return ColorCritical
	}
}

// renderBanner renders one banner line.
func renderBanner(b Banner) string {
	return lipgloss.NewStyle().Foreground(SeverityColor(b.Severity)).Render(bannerPrefix[b.Severity] + b.Text)
}
