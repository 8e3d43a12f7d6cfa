package dahell

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFlexFloat_AcceptsStringsAndNumbers(t *testing.T) {
	var payload struct {
		A FlexFloat `json:"a"`
		B FlexFloat `json:"b"`
		C FlexFloat `json:"c"`
		D FlexFloat `json:"d"`
	}
	if err := json.Unmarshal([]byte(`{"a":12.5,"b":"30000.00","c":null,"d":""}`), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.A != 12.5 || payload.B != 30000 || payload.C != 0 || payload.D != 0 {
		t.Fatalf("payload = %#v", payload)
	}
	if err := json.Unmarshal([]byte(`{"a":"abc"}`), &payload); err == nil {
		t.Fatalf("expected error for non-numeric string")
	}
}

func TestFlexString_AcceptsNumbers(t *testing.T) {
	var c Category
	if err := json.Unmarshal([]byte(`{"id":14,"name":"Hogar"}`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.ID != "14" || c.Name != "Hogar" {
		t.Fatalf("category = %#v", c)
	}
}

func TestAuditLog_TimeAndMatch(t *testing.T) {
	log := AuditLog{Timestamp: 1700000000.5, Decision: "visual_match"}
	got := log.Time()
	if got.Unix() != 1700000000 || got.Nanosecond() != int(500*time.Millisecond) {
		t.Fatalf("Time = %v", got)
	}
	if !log.IsMatch() {
		t.Fatalf("visual_match should count as a match")
	}
	if (AuditLog{Decision: "REJECTED"}).IsMatch() {
		t.Fatalf("REJECTED should not be a match")
	}
	if !(AuditLog{}).Time().IsZero() {
		t.Fatalf("zero timestamp should give zero time")
	}
}

func TestClusterStats_Accuracy(t *testing.T) {
	if got := (ClusterStats{XPAudits: 4, FeedbackCorrect: 3}).Accuracy(); got != 0.75 {
		t.Fatalf("Accuracy = %v, want 0.75", got)
	}
	if got := (ClusterStats{}).Accuracy(); got != 0 {
		t.Fatalf("Accuracy with no audits = %v, want 0", got)
	}
}

func TestContainerStat_RunningAndStarted(t *testing.T) {
	c := ContainerStat{Status: " Running ", StartedAt: "2024-05-01T10:00:00Z"}
	if !c.Running() {
		t.Fatalf("Running = false, want true")
	}
	if c.Started().Year() != 2024 {
		t.Fatalf("Started = %v", c.Started())
	}
	if !(ContainerStat{StartedAt: "garbage"}).Started().IsZero() {
		t.Fatalf("bad StartedAt should give zero time")
	}
}
