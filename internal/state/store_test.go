package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/ssebasarias/Dahell/internal/dahell"
)

func TestStore_UpdateAndSnapshotClone(t *testing.T) {
	var s Store

	before := time.Now()
	s.UpdateCluster(ClusterData{
		AuditLogs: []dahell.AuditLog{{ProductID: 1}, {ProductID: 2}},
		Orphans:   []dahell.Orphan{{ProductID: 9}},
		Stats:     dahell.ClusterStats{PendingOrphans: 1},
	}, nil)

	snap := s.Snapshot()
	if len(snap.AuditLogs) != 2 || snap.AuditLogs[0].ProductID != 1 {
		t.Fatalf("snapshot audits = %#v, want 2 items", snap.AuditLogs)
	}
	if snap.ClusterStats.PendingOrphans != 1 {
		t.Fatalf("snapshot stats = %#v", snap.ClusterStats)
	}
	if snap.Cluster.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.Cluster.LastUpdated, before)
	}
	if snap.Version != 1 {
		t.Fatalf("Version = %d, want 1", snap.Version)
	}

	snap.AuditLogs[0].ProductID = 999
	snap.Orphans[0].ProductID = 999
	snap2 := s.Snapshot()
	if snap2.AuditLogs[0].ProductID != 1 || snap2.Orphans[0].ProductID != 9 {
		t.Fatalf("Snapshot should clone slices; got %d/%d", snap2.AuditLogs[0].ProductID, snap2.Orphans[0].ProductID)
	}
}

func TestStore_ContainersCloned(t *testing.T) {
	var s Store
	s.UpdateContainers(dahell.ContainerStats{"loader": {Status: "running"}}, nil)

	snap := s.Snapshot()
	snap.Containers["loader"] = dahell.ContainerStat{Status: "exited"}
	if got := s.Snapshot().Containers["loader"].Status; got != "running" {
		t.Fatalf("container status = %q, want running", got)
	}
}

func TestStore_FailureReplacesWithEmptyAndRecordsError(t *testing.T) {
	var s Store
	s.UpdateSystemLogs([]dahell.ServiceLog{{Service: "loader", Message: "hi"}}, nil)

	origErr := errors.New("boom")
	s.UpdateSystemLogs([]dahell.ServiceLog{}, origErr)

	snap := s.Snapshot()
	if len(snap.ServiceLogs) != 0 {
		t.Fatalf("ServiceLogs = %#v, want empty", snap.ServiceLogs)
	}
	if snap.SystemLogs.LastError == nil || snap.SystemLogs.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.SystemLogs.LastError)
	}
	if reflect.ValueOf(snap.SystemLogs.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
}

func TestFeedStatus_ConsecutiveFailures(t *testing.T) {
	var s Store

	if s.Snapshot().ContainerHealth.IsOffline() {
		t.Fatal("IsOffline() = true, want false with 0 failures")
	}

	s.UpdateContainers(nil, errors.New("fail 1"))
	if snap := s.Snapshot(); snap.ContainerHealth.ConsecutiveFailures != 1 || snap.ContainerHealth.IsOffline() {
		t.Fatalf("after one failure: %#v", snap.ContainerHealth)
	}

	s.UpdateContainers(nil, errors.New("fail 2"))
	if !s.Snapshot().ContainerHealth.IsOffline() {
		t.Fatal("IsOffline() = false, want true with 2 failures")
	}

	s.UpdateContainers(dahell.ContainerStats{}, nil)
	if snap := s.Snapshot(); snap.ContainerHealth.ConsecutiveFailures != 0 || snap.ContainerHealth.IsOffline() {
		t.Fatalf("after success: %#v", snap.ContainerHealth)
	}
}

func TestStore_Visibility(t *testing.T) {
	var s Store
	s.SetScreen(ScreenCluster)

	visible := s.VisibleFunc(ScreenCluster)
	if !visible() {
		t.Fatal("cluster should be visible")
	}
	if s.Visible(ScreenSystem) {
		t.Fatal("system should be hidden")
	}

	s.SetFocused(false)
	if visible() {
		t.Fatal("blurred terminal should hide every screen")
	}
	s.SetFocused(true)
	if !visible() {
		t.Fatal("focus should restore visibility")
	}
	if s.ActiveScreen() != ScreenCluster {
		t.Fatalf("ActiveScreen = %q", s.ActiveScreen())
	}
}

func TestParseScreen(t *testing.T) {
	if ParseScreen("system") != ScreenSystem {
		t.Fatal("system not parsed")
	}
	if ParseScreen("bogus") != ScreenGoldMine {
		t.Fatal("unknown screens should default to goldmine")
	}
}
