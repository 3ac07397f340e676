package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess = "✓" // check passed, device within bounds
	SymbolFail    = "✗" // check failed, device alerting
	SymbolWarning = "⚠"
	SymbolPending = "○" // no data
	SymbolDot     = "●"
)
