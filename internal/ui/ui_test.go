package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rileyhilliard/freqmon/pkg/sshutil"
	"github.com/stretchr/testify/assert"
)

func TestColorsAreANSI(t *testing.T) {
	for _, c := range []lipgloss.Color{ColorSuccess, ColorError, ColorWarning, ColorInfo, ColorPrimary, ColorSecondary, ColorMuted} {
		assert.Len(t, string(c), 1, "expected a single-digit ANSI code, got %q", c)
	}
}

func TestDisableColors(t *testing.T) {
	prev := lipgloss.ColorProfile()
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })

	lipgloss.SetColorProfile(termenv.ANSI)
	assert.NotEqual(t, "fail", ErrorStyle().Render("fail"))

	DisableColors()
	assert.Equal(t, "fail", ErrorStyle().Render("fail"))
}

func TestNewTable(t *testing.T) {
	tbl := NewTable(
		[]TableColumn{{Title: "Device", Width: 8}, {Title: "Status", Width: 10}},
		[]table.Row{{"1", "ok"}, {"2", "alert"}},
	)
	view := tbl.View()
	assert.Contains(t, view, "Device")
	assert.Contains(t, view, "Status")
	assert.Contains(t, view, "alert")
}

func TestRenderSimpleTable(t *testing.T) {
	assert.Empty(t, RenderSimpleTable([]TableColumn{{Title: "Device", Width: 8}}, nil))

	out := RenderSimpleTable(
		[]TableColumn{{Title: "Device", Width: 8}, {Title: "Current", Width: 14}},
		[][]string{{"3", "1500.0 RPM"}},
	)
	assert.Contains(t, out, "Device")
	assert.Contains(t, out, "1500.0 RPM")
}

func TestRenderDoctorTable(t *testing.T) {
	assert.Equal(t, "No checks to display", RenderDoctorTable(nil))

	out := RenderDoctorTable([]DoctorCheckRow{
		{Status: StatusPass, Category: "Config", Message: "Loaded .freqmon.yaml", Suggestion: "hidden"},
		{Status: StatusFail, Category: "Source", Message: "Bucket unreachable", Suggestion: "Check S3_KEY"},
		{Status: StatusWarn, Category: "Config", Message: "No secrets file"},
	})

	assert.Contains(t, out, "Loaded .freqmon.yaml")
	assert.Contains(t, out, "Check S3_KEY")
	assert.NotContains(t, out, "hidden", "passing checks hide their suggestion")
	assert.Less(t, strings.Index(out, "No secrets file"), strings.Index(out, "Source"), "rows are grouped by category")
}

func TestStatusIcon(t *testing.T) {
	assert.Contains(t, StatusIcon(StatusPass), SymbolSuccess)
	assert.Contains(t, StatusIcon(StatusFail), SymbolFail)
	assert.Contains(t, StatusIcon(StatusWarn), SymbolWarning)
	assert.Contains(t, StatusIcon("other"), SymbolPending)
}

func TestSSHHostItem(t *testing.T) {
	item := sshHostItem{host: sshutil.HostEntry{Alias: "pi", Hostname: "10.0.0.5", User: "ops"}}

	assert.Equal(t, "pi", item.Title())
	assert.Equal(t, "10.0.0.5, user: ops", item.Description())
	assert.Equal(t, "pi 10.0.0.5 ops", item.FilterValue())
}

func TestPickSSHHost_NoHosts(t *testing.T) {
	choice, err := PickSSHHostWithIO(nil, nil, nil)
	assert.NoError(t, err)
	assert.Nil(t, choice.Host)
	assert.True(t, choice.Manual, "no hosts falls through to manual entry")
	assert.False(t, choice.Cancelled())
}

func TestSSHHostPicker_Keys(t *testing.T) {
	hosts := []sshutil.HostEntry{{Alias: "lab-pi"}, {Alias: "bench"}}

	t.Run("enter picks the highlighted host", func(t *testing.T) {
		m, cmd := NewSSHHostPickerModel(hosts).Update(tea.KeyMsg{Type: tea.KeyEnter})
		assert.NotNil(t, cmd)
		choice := m.(SSHHostPickerModel).Choice()
		if assert.NotNil(t, choice.Host) {
			assert.Equal(t, "lab-pi", choice.Host.Alias)
		}
		assert.Empty(t, m.View())
	})

	t.Run("m asks for manual entry", func(t *testing.T) {
		m, _ := NewSSHHostPickerModel(hosts).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
		choice := m.(SSHHostPickerModel).Choice()
		assert.True(t, choice.Manual)
		assert.Nil(t, choice.Host)
	})

	t.Run("esc cancels", func(t *testing.T) {
		m, _ := NewSSHHostPickerModel(hosts).Update(tea.KeyMsg{Type: tea.KeyEsc})
		assert.True(t, m.(SSHHostPickerModel).Choice().Cancelled())
	})
}
