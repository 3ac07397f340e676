// Package dashboard implements the live frequency dashboard.
//
// A refresh cycle (RunCycle) discovers devices, loads each device's window
// and bounds, evaluates them and builds a chart figure. The cycle produces a
// Report; nothing carries over from one cycle to the next except the
// display settings.
//
// # Architecture
//
// The interactive side uses Bubble Tea (Model-Update-View):
//
//   - Model: display settings, the latest Report, selection and view mode
//   - Update: keystrokes, refresh ticks and finished cycles
//   - View: header, one card per device, status line and footer
//
// # Message Flow
//
//  1. A cycle runs inside a tea.Cmd and returns a reportMsg
//  2. The model stores the report, syncs the alert cue and schedules a
//     tickMsg one refresh interval later
//  3. tickMsg starts the next cycle
//
// Only one cycle is in flight at a time, so a slow source stretches the
// period rather than piling up cycles.
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Quit
//	r           - Refresh now
//	m           - Toggle local / alternate source
//	+ / -       - Refresh interval
//	] / [       - Delay threshold
//	a           - Mute / unmute the alert sound
//	j/k, ↑/↓    - Select device
//	Enter       - Device detail view
//	Esc         - Back
//	?           - Toggle help overlay
package dashboard
