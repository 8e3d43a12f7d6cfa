package mockapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssebasarias/Dahell/internal/dahell"
)

func doJSON(t *testing.T, h http.Handler, method, path string, body any, dest any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if dest != nil && rec.Code < 400 {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(dest))
	}
	return rec.Code
}

func TestGoldMine_FiltersAndPaginates(t *testing.T) {
	h := New(nil, WithProducts(57)).Handler()

	var page []dahell.Opportunity
	code := doJSON(t, h, http.MethodGet, "/api/gold-mine/?min_comp=0&max_comp=20&limit=20&offset=40", nil, &page)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, page, 17)

	var low []dahell.Opportunity
	doJSON(t, h, http.MethodGet, "/api/gold-mine/?min_comp=0&max_comp=1&limit=100&offset=0", nil, &low)
	require.NotEmpty(t, low)
	for _, item := range low {
		assert.LessOrEqual(t, item.Competitors, 1)
	}
}

func TestOrphanAction_RemovesOrphan(t *testing.T) {
	srv := New(nil)
	h := srv.Handler()

	var orphans []dahell.Orphan
	doJSON(t, h, http.MethodGet, "/api/cluster-lab/orphans/", nil, &orphans)
	require.NotEmpty(t, orphans)
	target := orphans[0].ProductID

	code := doJSON(t, h, http.MethodPost, "/api/cluster-lab/orphans/action/",
		dahell.OrphanActionRequest{ProductID: target, Action: dahell.ActionTrash, Candidates: []int64{}}, nil)
	require.Equal(t, http.StatusOK, code)

	var after []dahell.Orphan
	doJSON(t, h, http.MethodGet, "/api/cluster-lab/orphans/", nil, &after)
	assert.Len(t, after, len(orphans)-1)
	assert.Len(t, srv.Actions(), 1)

	code = doJSON(t, h, http.MethodPost, "/api/cluster-lab/orphans/action/",
		dahell.OrphanActionRequest{ProductID: orphans[1].ProductID, Action: dahell.ActionMergeSelected}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestFeedback_UpdatesStats(t *testing.T) {
	srv := New(nil)
	h := srv.Handler()

	var before dahell.ClusterStats
	doJSON(t, h, http.MethodGet, "/api/cluster-lab/stats/", nil, &before)

	code := doJSON(t, h, http.MethodPost, "/api/cluster-lab/feedback/",
		dahell.FeedbackRequest{ProductID: 1, CandidateID: 2, Feedback: dahell.FeedbackCorrect}, nil)
	require.Equal(t, http.StatusOK, code)

	var after dahell.ClusterStats
	doJSON(t, h, http.MethodGet, "/api/cluster-lab/stats/", nil, &after)
	assert.Equal(t, before.XPAudits+1, after.XPAudits)
	assert.Equal(t, before.FeedbackCorrect+1, after.FeedbackCorrect)
	assert.Len(t, srv.Feedback(), 1)
}

func TestControl_RestartAndUnknownService(t *testing.T) {
	h := New(nil).Handler()

	var resp dahell.ControlResponse
	code := doJSON(t, h, http.MethodPost, "/api/control/container/ai_trainer/restart/", nil, &resp)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "running", resp.Status)

	code = doJSON(t, h, http.MethodPost, "/api/control/container/nope/restart/", nil, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestFailNext_InjectsServerErrors(t *testing.T) {
	srv := New(nil)
	srv.FailNext("categories", 1)
	h := srv.Handler()

	assert.Equal(t, http.StatusInternalServerError, doJSON(t, h, http.MethodGet, "/api/categories/", nil, nil))
	assert.Equal(t, http.StatusOK, doJSON(t, h, http.MethodGet, "/api/categories/", nil, nil))
}
