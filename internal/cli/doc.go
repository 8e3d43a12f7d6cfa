// Package cli defines the dahell command tree.
//
// The root command starts the console. The goldmine and orphans commands run
// the same list and action controllers headlessly against the configured
// backend, which makes them handy for scripting and for checking a backend
// without a terminal UI. mock-api serves an in-memory backend.
package cli
