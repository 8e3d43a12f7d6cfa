package actions

import (
	"time"

	"github.com/ssebasarias/Dahell/internal/dahell"
)

// DefaultFeedbackCloseDelay is how long the audit view lingers after a
// verdict is saved.
const DefaultFeedbackCloseDelay = time.Second

// FeedbackState is the lifecycle of one audit verdict.
type FeedbackState int

const (
	FeedbackIdle FeedbackState = iota
	FeedbackSaving
	FeedbackSuccess
	FeedbackError
)

func (s FeedbackState) String() string {
	switch s {
	case FeedbackSaving:
		return "saving"
	case FeedbackSuccess:
		return "success"
	case FeedbackError:
		return "error"
	default:
		return "idle"
	}
}

// FeedbackForm drives the verdict on a single audit log entry.
type FeedbackForm struct {
	log        dahell.AuditLog
	state      FeedbackState
	err        error
	closeDelay time.Duration
}

// NewFeedbackForm opens a form for log.
func NewFeedbackForm(log dahell.AuditLog, closeDelay time.Duration) *FeedbackForm {
	if closeDelay <= 0 {
		closeDelay = DefaultFeedbackCloseDelay
	}
	return &FeedbackForm{log: log, closeDelay: closeDelay}
}

// Log returns the audited decision.
func (f *FeedbackForm) Log() dahell.AuditLog { return f.log }

// State returns the current state.
func (f *FeedbackForm) State() FeedbackState { return f.state }

// Err returns the last save error.
func (f *FeedbackForm) Err() error { return f.err }

// CanSubmit is false while saving and after success. A failed save may be
// retried.
func (f *FeedbackForm) CanSubmit() bool {
	return f.state == FeedbackIdle || f.state == FeedbackError
}

// Submit moves to Saving and returns the payload to send.
func (f *FeedbackForm) Submit(correct bool) (dahell.FeedbackRequest, error) {
	if !f.CanSubmit() {
		return dahell.FeedbackRequest{}, ErrActionInFlight
	}
	verdict := dahell.FeedbackIncorrect
	if correct {
		verdict = dahell.FeedbackCorrect
	}
	f.state = FeedbackSaving
	f.err = nil
	return dahell.FeedbackRequest{
		ProductID:     f.log.ProductID,
		CandidateID:   f.log.CandidateID,
		Decision:      f.log.Decision,
		Feedback:      verdict,
		VisualScore:   f.log.VisualScore,
		TextScore:     f.log.TextScore,
		FinalScore:    f.log.FinalScore,
		Method:        f.log.MatchMethod,
		ActiveWeights: f.log.ActiveWeights,
	}, nil
}

// Finish records the save result and returns the close delay on success.
func (f *FeedbackForm) Finish(err error) (closeAfter time.Duration, ok bool) {
	if err != nil {
		f.state = FeedbackError
		f.err = err
		return 0, false
	}
	f.state = FeedbackSuccess
	return f.closeDelay, true
}
