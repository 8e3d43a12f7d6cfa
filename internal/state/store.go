package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/ssebasarias/Dahell/internal/dahell"
)

// Screen names a top-level view. Pollers only run while their screen is
// active and the terminal has focus.
type Screen string

const (
	ScreenGoldMine    Screen = "goldmine"
	ScreenCluster     Screen = "cluster"
	ScreenSystem      Screen = "system"
	ScreenDiagnostics Screen = "diagnostics"
)

// ParseScreen maps a preference value to a screen, defaulting to Gold Mine.
func ParseScreen(s string) Screen {
	switch Screen(s) {
	case ScreenCluster, ScreenSystem, ScreenDiagnostics:
		return Screen(s)
	default:
		return ScreenGoldMine
	}
}

// FeedStatus tracks one polled feed.
type FeedStatus struct {
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the feed has failed on multiple polls.
func (f FeedStatus) IsOffline() bool {
	return f.ConsecutiveFailures >= 2
}

// ClusterData is one Cluster Lab refresh.
type ClusterData struct {
	AuditLogs []dahell.AuditLog
	Orphans   []dahell.Orphan
	Stats     dahell.ClusterStats
}

// Snapshot represents the latest polled data available to the UI.
type Snapshot struct {
	AuditLogs    []dahell.AuditLog
	Orphans      []dahell.Orphan
	ClusterStats dahell.ClusterStats
	ServiceLogs  []dahell.ServiceLog
	Containers   dahell.ContainerStats

	Cluster         FeedStatus
	SystemLogs      FeedStatus
	ContainerHealth FeedStatus

	// Version increases on every update so views can skip unchanged data.
	Version uint64
}

// Store coordinates poller writes with UI reads and carries the visibility
// flags the pollers consult on each tick.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	screen   Screen
	blurred  bool
}

// UpdateCluster replaces the Cluster Lab data. Failed parts arrive as empty
// values from the gateway and replace what was shown.
func (s *Store) UpdateCluster(data ClusterData, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.AuditLogs = cloneSlice(data.AuditLogs)
	s.snapshot.Orphans = cloneSlice(data.Orphans)
	s.snapshot.ClusterStats = data.Stats
	record(&s.snapshot.Cluster, err)
	s.snapshot.Version++
}

// UpdateSystemLogs replaces the container log lines.
func (s *Store) UpdateSystemLogs(logs []dahell.ServiceLog, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.ServiceLogs = cloneSlice(logs)
	record(&s.snapshot.SystemLogs, err)
	s.snapshot.Version++
}

// UpdateContainers replaces the container stats.
func (s *Store) UpdateContainers(stats dahell.ContainerStats, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Containers = cloneStats(stats)
	record(&s.snapshot.ContainerHealth, err)
	s.snapshot.Version++
}

func record(f *FeedStatus, err error) {
	f.LastUpdated = time.Now()
	if err != nil {
		f.LastError = err
		f.ConsecutiveFailures++
		return
	}
	f.LastError = nil
	f.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.AuditLogs = cloneSlice(s.snapshot.AuditLogs)
	snap.Orphans = cloneSlice(s.snapshot.Orphans)
	snap.ServiceLogs = cloneSlice(s.snapshot.ServiceLogs)
	snap.Containers = cloneStats(s.snapshot.Containers)
	snap.Cluster.LastError = cloneErr(s.snapshot.Cluster.LastError)
	snap.SystemLogs.LastError = cloneErr(s.snapshot.SystemLogs.LastError)
	snap.ContainerHealth.LastError = cloneErr(s.snapshot.ContainerHealth.LastError)
	return snap
}

// SetScreen records the active screen.
func (s *Store) SetScreen(screen Screen) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen = screen
}

// ActiveScreen returns the screen last passed to SetScreen.
func (s *Store) ActiveScreen() Screen {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.screen
}

// SetFocused records terminal focus.
func (s *Store) SetFocused(focused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blurred = !focused
}

// Visible reports whether screen is on display in a focused terminal.
func (s *Store) Visible(screen Screen) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.blurred && s.screen == screen
}

// VisibleFunc adapts Visible for poll.WithVisibility.
func (s *Store) VisibleFunc(screen Screen) func() bool {
	return func() bool { return s.Visible(screen) }
}

func cloneSlice[T any](items []T) []T {
	if len(items) == 0 {
		return nil
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}

func cloneStats(stats dahell.ContainerStats) dahell.ContainerStats {
	if len(stats) == 0 {
		return nil
	}
	dup := make(dahell.ContainerStats, len(stats))
	for k, v := range stats {
		dup[k] = v
	}
	return dup
}

func cloneErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w", err)
}
