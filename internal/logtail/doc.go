// Package logtail reads the tail of the console's own JSON log file for the
// diagnostics screen. Read keeps only the last N lines in a ring buffer, so
// large files are never held in memory; Tail additionally decodes each line
// and filters by level.
package logtail
