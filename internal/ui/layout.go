package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which side panels are hidden.
	LayoutCompactWidth = 100

	// LayoutWideWidth is the minimum width for the supplier column.
	LayoutWideWidth = 140
)

// Timing constants.
const (
	// DefaultUIInterval is how often the UI copies the store snapshot.
	DefaultUIInterval = time.Second

	// NoticeTTL is how long a header notice stays visible.
	NoticeTTL = 4 * time.Second
)

// Display limits.
const (
	// ServiceLogLines is the number of log lines shown per service.
	ServiceLogLines = 30

	// DiagnosticsLines is how much of the log file the diagnostics view tails.
	DiagnosticsLines = 500

	// AuditFeedLimit caps the live console feed.
	AuditFeedLimit = 50
)
