package dashboard

import tea "github.com/charmbracelet/bubbletea"

// ViewMode defines the current display mode of the dashboard.
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
)

// Key bindings as constants for consistency.
const (
	KeyQuit          = "q"
	KeyQuitAlt       = "ctrl+c"
	KeyRefresh       = "r"
	KeyToggleMode    = "m"
	KeyIntervalUp    = "+"
	KeyIntervalUpAlt = "="
	KeyIntervalDown  = "-"
	KeyThresholdUp   = "]"
	KeyThresholdDown = "["
	KeyMute          = "a"
	KeySelectPrev    = "up"
	KeySelectPrevK   = "k"
	KeySelectNext    = "down"
	KeySelectNextJ   = "j"
	KeySelectFirst   = "home"
	KeySelectLast    = "end"
	KeyExpand        = "enter"
	KeyCollapse      = "esc"
	KeyToggleHelp    = "?"
)

// Per-keypress adjustments, in seconds.
const (
	intervalStep  = 1
	thresholdStep = 5
)

// HandleKeyMsg processes keyboard input. It returns false for keys the
// model does not handle, which the detail viewport then gets to scroll.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	if key == KeyToggleHelp {
		m.showHelp = !m.showHelp
		return true, nil
	}
	if m.showHelp && key == KeyCollapse {
		m.showHelp = false
		return true, nil
	}
	if m.viewMode == ViewDetail {
		switch key {
		case KeyCollapse:
			m.viewMode = ViewList
			return true, nil
		case KeySelectPrev, KeySelectPrevK, KeySelectNext, KeySelectNextJ, "pgup", "pgdown":
			return false, nil
		}
	}

	switch key {
	case KeyQuit, KeyQuitAlt:
		return true, m.quit()

	case KeyRefresh:
		return true, m.refresh()

	case KeyToggleMode:
		return true, m.toggleMode()

	case KeyIntervalUp, KeyIntervalUpAlt:
		return true, m.setInterval(m.intervalSec + intervalStep)

	case KeyIntervalDown:
		return true, m.setInterval(m.intervalSec - intervalStep)

	case KeyThresholdUp:
		m.setThreshold(m.thresholdSec + thresholdStep)
		return true, nil

	case KeyThresholdDown:
		m.setThreshold(m.thresholdSec - thresholdStep)
		return true, nil

	case KeyMute:
		m.toggleMute()
		return true, nil

	case KeySelectPrev, KeySelectPrevK:
		if m.selected > 0 {
			m.selected--
		}
		return true, nil

	case KeySelectNext, KeySelectNextJ:
		if m.selected < m.deviceCount()-1 {
			m.selected++
		}
		return true, nil

	case KeySelectFirst:
		m.selected = 0
		return true, nil

	case KeySelectLast:
		if n := m.deviceCount(); n > 0 {
			m.selected = n - 1
		}
		return true, nil

	case KeyExpand:
		if m.viewMode == ViewList && m.deviceCount() > 0 {
			m.viewMode = ViewDetail
			m.updateDetailViewportContent()
			m.detailViewport.GotoTop()
		}
		return true, nil

	case KeyCollapse:
		m.viewMode = ViewList
		return true, nil
	}

	return false, nil
}
