// Package state shares polled data between the background pollers and the
// UI.
//
// # Overview
//
// Each poller owns one feed (Cluster Lab, system logs, container stats) and
// writes it with an Update method. The UI reads a Snapshot on its own tick.
// Snapshots are deep copies, so the UI can hold one while pollers keep
// writing.
//
//	poller goroutines            UI goroutine
//	UpdateCluster()    ─┐
//	UpdateSystemLogs() ─┼─ mutex ─→ Snapshot() → render
//	UpdateContainers() ─┘
//
// # Failure Semantics
//
// The gateway turns failures into empty values, and the store applies them
// as-is: a dead backend shows empty panels rather than stale ones. Each feed
// keeps its own FeedStatus so the header can tell which feed is failing. Two
// consecutive failures mark a feed offline.
//
// # Visibility
//
// The store also records the active screen and terminal focus. Pollers pass
// VisibleFunc to poll.WithVisibility and skip ticks while their screen is not
// on display. The zero Store treats the terminal as focused until a blur is
// reported.
package state
