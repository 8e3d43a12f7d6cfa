package actions

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssebasarias/Dahell/internal/dahell"
)

func TestFeedbackForm_SubmitAndSucceed(t *testing.T) {
	log := dahell.AuditLog{
		ProductID:     1,
		CandidateID:   2,
		Decision:      "MATCH",
		MatchMethod:   "hybrid",
		VisualScore:   0.9,
		TextScore:     0.7,
		FinalScore:    0.82,
		ActiveWeights: json.RawMessage(`{"visual":0.6}`),
	}
	f := NewFeedbackForm(log, 0)

	req, err := f.Submit(true)
	require.NoError(t, err)
	assert.Equal(t, FeedbackSaving, f.State())
	assert.Equal(t, dahell.FeedbackCorrect, req.Feedback)
	assert.Equal(t, "hybrid", req.Method)
	assert.Equal(t, 0.82, req.FinalScore)
	assert.JSONEq(t, `{"visual":0.6}`, string(req.ActiveWeights))

	_, err = f.Submit(false)
	assert.ErrorIs(t, err, ErrActionInFlight)

	delay, ok := f.Finish(nil)
	assert.True(t, ok)
	assert.Equal(t, time.Second, delay)
	assert.Equal(t, FeedbackSuccess, f.State())
	assert.False(t, f.CanSubmit())
}

func TestFeedbackForm_ErrorAllowsRetry(t *testing.T) {
	f := NewFeedbackForm(dahell.AuditLog{ProductID: 1}, 2*time.Second)

	_, err := f.Submit(false)
	require.NoError(t, err)
	_, ok := f.Finish(errors.New("offline"))
	assert.False(t, ok)
	assert.Equal(t, FeedbackError, f.State())
	assert.EqualError(t, f.Err(), "offline")

	req, err := f.Submit(false)
	require.NoError(t, err)
	assert.Equal(t, dahell.FeedbackIncorrect, req.Feedback)
	assert.Nil(t, f.Err())
}
