package dahell

import "strings"

// Level is a coarse severity used for color coding.
type Level int

const (
	LevelLow Level = iota
	LevelMedium
	LevelHigh
)

func (l Level) String() string {
	switch l {
	case LevelHigh:
		return "high"
	case LevelMedium:
		return "medium"
	default:
		return "low"
	}
}

// CompetitorLevel buckets a competitor count: more than 5 is high, more
// than 2 is medium.
func CompetitorLevel(competitors int) Level {
	switch {
	case competitors > 5:
		return LevelHigh
	case competitors > 2:
		return LevelMedium
	default:
		return LevelLow
	}
}

// SaturationLevel maps the backend saturation label.
func SaturationLevel(label string) Level {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "ALTA":
		return LevelHigh
	case "MEDIA":
		return LevelMedium
	default:
		return LevelLow
	}
}

// ScoreLevel grades a similarity score: 0.8 and above is strong, 0.5 and
// above is fair.
func ScoreLevel(score float64) Level {
	switch {
	case score >= 0.8:
		return LevelHigh
	case score >= 0.5:
		return LevelMedium
	default:
		return LevelLow
	}
}

var matchDecisions = map[string]struct{}{
	"JOINED_CLUSTER": {},
	"MATCH":          {},
	"VISUAL_MATCH":   {},
	"HYBRID_MATCH":   {},
}

// IsMatchDecision reports whether an audit decision joined two products.
func IsMatchDecision(decision string) bool {
	_, ok := matchDecisions[strings.ToUpper(strings.TrimSpace(decision))]
	return ok
}

// Orphan action names accepted by the backend.
const (
	ActionMergeSelected    = "MERGE_SELECTED"
	ActionConfirmSingleton = "CONFIRM_SINGLETON"
	ActionTrash            = "TRASH"
)

// Feedback verdicts.
const (
	FeedbackCorrect   = "CORRECT"
	FeedbackIncorrect = "INCORRECT"
)

// Service describes a backend container the control screen can manage.
type Service struct {
	ID   string
	Name string
}

// Services lists the pipeline containers in display order.
var Services = []Service{
	{ID: "scraper", Name: "Scraper"},
	{ID: "loader", Name: "Loader"},
	{ID: "vectorizer", Name: "Vectorizer"},
	{ID: "classifier", Name: "Classifier"},
	{ID: "clusterizer", Name: "Clusterizer"},
	{ID: "market_agent", Name: "Market Agent"},
	{ID: "amazon_explorer", Name: "Amazon Explorer"},
	{ID: "ai_trainer", Name: "AI Trainer"},
}

// LogsForService returns the trailing limit lines for service, oldest first.
func LogsForService(logs []ServiceLog, service string, limit int) []ServiceLog {
	var out []ServiceLog
	for _, l := range logs {
		if l.Service == service {
			out = append(out, l)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}
