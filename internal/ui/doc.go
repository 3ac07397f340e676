// Package ui provides the shared terminal palette and the non-dashboard
// widgets used by freqmon's CLI output.
//
// # Components Overview
//
//	Colors / styles - ANSI palette shared by check, devices and doctor output
//	Tables          - RenderSimpleTable and RenderDoctorTable for plain output
//	SSH host picker - Interactive selection from ~/.ssh/config for init
//
// # Color Scheme
//
// Colors are ANSI codes for broad terminal compatibility:
//
//	ColorSuccess   (green)  - Passing checks, devices within bounds
//	ColorError     (red)    - Failures and alerting devices
//	ColorWarning   (yellow) - Warnings, missing data
//	ColorInfo      (cyan)   - Informational messages
//	ColorMuted     (gray)   - Secondary text
//
// Use DisableColors() when stdout is not a terminal.
package ui
