package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/freqmon/pkg/sshutil"
)

// sshHostItem adapts a config entry to the Bubbles list.
type sshHostItem struct {
	host sshutil.HostEntry
}

func (i sshHostItem) Title() string {
	return i.host.Alias
}

func (i sshHostItem) Description() string {
	return i.host.Description()
}

func (i sshHostItem) FilterValue() string {
	values := []string{i.host.Alias}
	if i.host.Hostname != "" {
		values = append(values, i.host.Hostname)
	}
	if i.host.User != "" {
		values = append(values, i.host.User)
	}
	return strings.Join(values, " ")
}

// HostChoice is how the picker ended.
type HostChoice struct {
	// Host is set when the user picked an entry.
	Host *sshutil.HostEntry

	// Manual is set when the user asked to type a host instead, or there
	// was nothing to pick from.
	Manual bool
}

// Cancelled reports whether the user backed out without choosing.
func (c HostChoice) Cancelled() bool {
	return c.Host == nil && !c.Manual
}

// SSHHostPickerModel lets the user pick the host that holds the telemetry directory.
type SSHHostPickerModel struct {
	list   list.Model
	choice HostChoice
	done   bool
}

type sshHostPickerKeyMap struct {
	Enter  key.Binding
	Manual key.Binding
	Quit   key.Binding
}

var sshHostPickerKeys = sshHostPickerKeyMap{
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Manual: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "manual entry"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q/esc", "cancel"),
	),
}

// NewSSHHostPickerModel creates a picker over hosts.
func NewSSHHostPickerModel(hosts []sshutil.HostEntry) SSHHostPickerModel {
	items := make([]list.Item, len(hosts))
	for i, h := range hosts {
		items[i] = sshHostItem{host: h}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(ColorPrimary).
		BorderForeground(ColorSecondary)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(ColorMuted)

	l := list.New(items, delegate, 80, 15)
	l.Title = "Which host has the recent data directory?"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		Padding(0, 0, 1, 0)
	l.Styles.HelpStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{sshHostPickerKeys.Manual}
	}

	return SSHHostPickerModel{list: l}
}

// Init implements tea.Model.
func (m SSHHostPickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m SSHHostPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, sshHostPickerKeys.Enter):
			if item, ok := m.list.SelectedItem().(sshHostItem); ok {
				host := item.host
				m.choice.Host = &host
			}
			m.done = true
			return m, tea.Quit

		case key.Matches(msg, sshHostPickerKeys.Manual):
			m.choice.Manual = true
			m.done = true
			return m, tea.Quit

		case key.Matches(msg, sshHostPickerKeys.Quit):
			m.done = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-2)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m SSHHostPickerModel) View() string {
	if m.done {
		return ""
	}

	hint := lipgloss.NewStyle().
		Foreground(ColorMuted).
		Render("\n  Press 'm' to enter SSH host manually")

	return m.list.View() + hint
}

// Choice returns how the picker ended. Valid once the program exits.
func (m SSHHostPickerModel) Choice() HostChoice {
	return m.choice
}

// PickSSHHost runs the picker on the terminal.
func PickSSHHost(hosts []sshutil.HostEntry) (HostChoice, error) {
	return PickSSHHostWithIO(hosts, os.Stdout, os.Stdin)
}

// PickSSHHostWithIO runs the picker on the given streams. With no hosts it
// returns a manual choice without drawing anything.
func PickSSHHostWithIO(hosts []sshutil.HostEntry, output io.Writer, input io.Reader) (HostChoice, error) {
	if len(hosts) == 0 {
		return HostChoice{Manual: true}, nil
	}

	p := tea.NewProgram(NewSSHHostPickerModel(hosts), tea.WithOutput(output), tea.WithInput(input))
	final, err := p.Run()
	if err != nil {
		return HostChoice{}, fmt.Errorf("ssh host picker: %w", err)
	}
	if m, ok := final.(SSHHostPickerModel); ok {
		return m.Choice(), nil
	}
	return HostChoice{}, nil
}
