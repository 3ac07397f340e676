package chart

import "github.com/charmbracelet/lipgloss"

// Terminal colors for the named chart colors.
var foreground = map[Color]lipgloss.Color{
	ColorBlue:       lipgloss.Color("#4A9EFF"),
	ColorRed:        lipgloss.Color("#FF4D4D"),
	ColorLightGreen: lipgloss.Color("#90EE90"),
}

// Band fills, pre-blended at 20% over the dark surface.
var background = map[Color]lipgloss.Color{
	ColorLightGreen: lipgloss.Color("#1F2F22"),
	ColorRed:        lipgloss.Color("#361519"),
	ColorBlue:       lipgloss.Color("#16233A"),
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	axisStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B6B8D"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B4B4D0"))
)

func cellStyle(fg, bg Color) lipgloss.Style {
	s := lipgloss.NewStyle()
	if c, ok := foreground[fg]; ok {
		s = s.Foreground(c)
	}
	if c, ok := background[bg]; ok {
		s = s.Background(c)
	}
	return s
}
