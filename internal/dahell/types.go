package dahell

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Opportunity is a Gold Mine row. Visual searches fill Similarity instead of
// ProfitMargin.
type Opportunity struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Image        string     `json:"image"`
	Price        FlexFloat  `json:"price"`
	ProfitMargin FlexString `json:"profit_margin"`
	Supplier     string     `json:"supplier"`
	Competitors  int        `json:"competitors"`
	Saturation   string     `json:"saturation"`
	Similarity   FlexString `json:"similarity"`
}

// ProductURL returns the supplier catalog page for the opportunity.
func (o Opportunity) ProductURL() string {
	return fmt.Sprintf("%s/%d", supplierProductBase, o.ID)
}

const supplierProductBase = "https://app.dropi.co/products"

// GoldMineQuery carries the list-query parameters. Zero price bounds are not sent.
type GoldMineQuery struct {
	Search         string
	Category       string
	MinCompetitors int
	MaxCompetitors int
	MinPrice       float64
	MaxPrice       float64
	Limit          int
	Offset         int
}

// Category is a taxonomy entry offered as a Gold Mine filter.
type Category struct {
	ID   FlexString `json:"id"`
	Name string     `json:"name"`
}

// AuditLog is one decision emitted by the clustering engine.
type AuditLog struct {
	Timestamp     float64         `json:"timestamp"`
	ProductID     int64           `json:"product_id"`
	CandidateID   int64           `json:"candidate_id"`
	Decision      string          `json:"decision"`
	Concept       string          `json:"concept"`
	MatchMethod   string          `json:"match_method"`
	VisualScore   float64         `json:"visual_score"`
	TextScore     float64         `json:"text_score"`
	FinalScore    float64         `json:"final_score"`
	TitleA        string          `json:"title_a"`
	TitleB        string          `json:"title_b"`
	ImageA        string          `json:"image_a"`
	ImageB        string          `json:"image_b"`
	ActiveWeights json.RawMessage `json:"active_weights,omitempty"`
}

// Time converts the unix-seconds timestamp.
func (l AuditLog) Time() time.Time {
	if l.Timestamp <= 0 {
		return time.Time{}
	}
	sec := int64(l.Timestamp)
	nsec := int64((l.Timestamp - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}

// IsMatch reports whether the engine joined the pair.
func (l AuditLog) IsMatch() bool {
	return IsMatchDecision(l.Decision)
}

// Orphan is a product the engine could not cluster.
type Orphan struct {
	ProductID int64     `json:"product_id"`
	Title     string    `json:"title"`
	Image     string    `json:"image"`
	Price     FlexFloat `json:"price"`
	ClusterID int64     `json:"cluster_id"`
}

// ClusterStats mirrors the trainer metrics shown next to the live console.
type ClusterStats struct {
	XPAudits        int `json:"xp_audits"`
	XPToday         int `json:"xp_today"`
	FeedbackCorrect int `json:"feedback_correct"`
	PendingOrphans  int `json:"pending_orphans"`
	TotalProducts   int `json:"total_products"`
}

// Accuracy is the share of audits the operator agreed with.
func (s ClusterStats) Accuracy() float64 {
	audits := s.XPAudits
	if audits <= 0 {
		audits = 1
	}
	return float64(s.FeedbackCorrect) / float64(audits)
}

// Product is the investigated orphan as returned by the investigate endpoint.
type Product struct {
	ID    int64     `json:"id"`
	Title string    `json:"title"`
	Image string    `json:"image"`
	Price FlexFloat `json:"price"`
}

// CandidateScores holds similarity components for a candidate twin.
type CandidateScores struct {
	Final  float64 `json:"final"`
	Visual float64 `json:"visual"`
	Text   float64 `json:"text"`
}

// Candidate is a possible twin of an orphan.
type Candidate struct {
	ID     int64           `json:"id"`
	Title  string          `json:"title"`
	Image  string          `json:"image"`
	Price  FlexFloat       `json:"price"`
	Scores CandidateScores `json:"scores"`
}

// Investigation is the response of the orphan-investigate endpoint.
type Investigation struct {
	Target     Product     `json:"target"`
	Candidates []Candidate `json:"candidates"`
}

// OrphanActionRequest resolves an orphan.
type OrphanActionRequest struct {
	ProductID  int64   `json:"product_id"`
	Action     string  `json:"action"`
	Candidates []int64 `json:"candidates"`
}

// FeedbackRequest is the operator verdict on one audit decision.
type FeedbackRequest struct {
	ProductID     int64           `json:"product_id"`
	CandidateID   int64           `json:"candidate_id"`
	Decision      string          `json:"decision"`
	Feedback      string          `json:"feedback"`
	VisualScore   float64         `json:"visual_score"`
	TextScore     float64         `json:"text_score"`
	FinalScore    float64         `json:"final_score"`
	Method        string          `json:"method"`
	ActiveWeights json.RawMessage `json:"active_weights,omitempty"`
}

// ServiceLog is one line of container output.
type ServiceLog struct {
	Service   string `json:"service"`
	Message   string `json:"message"`
	Level     string `json:"level,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ContainerStat describes one backend service container.
type ContainerStat struct {
	Status      string  `json:"status"`
	CPUPercent  float64 `json:"cpu_percent"`
	MemoryUsage uint64  `json:"memory_usage"`
	MemoryLimit uint64  `json:"memory_limit"`
	StartedAt   string  `json:"started_at,omitempty"`
}

// Running reports whether the container is up.
func (c ContainerStat) Running() bool {
	return strings.EqualFold(strings.TrimSpace(c.Status), "running")
}

// Started parses StartedAt when the backend provides it.
func (c ContainerStat) Started() time.Time {
	if c.StartedAt == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, c.StartedAt); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ContainerStats is keyed by service id.
type ContainerStats map[string]ContainerStat

// ControlResponse is returned by the container-control endpoint.
type ControlResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// FlexString accepts JSON strings, numbers and null.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(string(data))
	return nil
}

// String returns the raw text.
func (f FlexString) String() string { return string(f) }

// FlexFloat accepts JSON numbers and numeric strings, as emitted for decimals.
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	text := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			*f = 0
			return nil
		}
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("parse number %q: %w", text, err)
	}
	*f = FlexFloat(v)
	return nil
}

// Float64 returns the value.
func (f FlexFloat) Float64() float64 { return float64(f) }
