package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ssebasarias/Dahell/internal/dahell"
	"github.com/ssebasarias/Dahell/internal/mockapi"
)

func newGateway(t *testing.T, h http.Handler) (*Gateway, *observer.ObservedLogs) {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	client, err := dahell.NewClient(server.URL+"/api", time.Second)
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	return New(client, zap.New(core), 2*time.Second), logs
}

func TestGateway_ReadsFromBackend(t *testing.T) {
	gw, _ := newGateway(t, mockapi.New(nil).Handler())
	ctx := context.Background()

	page := gw.GoldMine(ctx, dahell.GoldMineQuery{MaxCompetitors: 20, Limit: 20})
	require.True(t, page.OK())
	assert.Len(t, page.Value, 20)

	cats := gw.Categories(ctx)
	require.NoError(t, cats.Err)
	assert.NotEmpty(t, cats.Value)

	stats := gw.ClusterStats(ctx)
	require.NoError(t, stats.Err)
	assert.Positive(t, stats.Value.PendingOrphans)

	containers := gw.ContainerStats(ctx)
	require.NoError(t, containers.Err)
	assert.Len(t, containers.Value, len(dahell.Services))

	assert.Equal(t, HealthOnline, gw.Health().State())
}

func TestGateway_FailureReturnsEmptyValuesAndLogs(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	gw, logs := newGateway(t, h)
	ctx := context.Background()

	orphans := gw.Orphans(ctx)
	require.Error(t, orphans.Err)
	assert.NotNil(t, orphans.Value)
	assert.Empty(t, orphans.Value)
	assert.Equal(t, ClassServer, Classify(orphans.Err))

	containers := gw.ContainerStats(ctx)
	assert.NotNil(t, containers.Value)
	assert.Empty(t, containers.Value)

	failures := logs.FilterMessage("api call failed").All()
	require.Len(t, failures, 2)
	fields := failures[0].ContextMap()
	assert.Equal(t, "cluster-lab/orphans", fields["endpoint"])
	assert.Equal(t, "server", fields["class"])
	assert.NotEmpty(t, fields["request_id"])

	assert.Equal(t, HealthOffline, gw.Health().State())
	assert.Equal(t, 2, gw.Health().ConsecutiveFailures)
}

func TestGateway_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := dahell.NewClient(url, 200*time.Millisecond)
	require.NoError(t, err)
	gw := New(client, nil, 0)

	logs := gw.SystemLogs(context.Background())
	assert.Equal(t, ClassTransport, Classify(logs.Err))
	assert.Empty(t, logs.Value)
	assert.Equal(t, HealthDegraded, gw.Health().State())
}

func TestGateway_MutationsReturnErrors(t *testing.T) {
	srv := mockapi.New(nil)
	gw, _ := newGateway(t, srv.Handler())
	ctx := context.Background()

	orphans := gw.Orphans(ctx).Value
	require.NotEmpty(t, orphans)

	err := gw.ExecuteOrphanAction(ctx, dahell.OrphanActionRequest{ProductID: orphans[0].ProductID, Action: dahell.ActionTrash})
	require.NoError(t, err)

	err = gw.ExecuteOrphanAction(ctx, dahell.OrphanActionRequest{ProductID: orphans[0].ProductID, Action: dahell.ActionTrash})
	require.Error(t, err)
	var se *dahell.ServerError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)

	require.NoError(t, gw.SaveFeedback(ctx, dahell.FeedbackRequest{Feedback: dahell.FeedbackIncorrect}))
	assert.Len(t, srv.Feedback(), 1)
}

func TestGateway_VisualSearch(t *testing.T) {
	gw, _ := newGateway(t, mockapi.New(nil).Handler())

	path := filepath.Join(t.TempDir(), "query.png")
	require.NoError(t, os.WriteFile(path, []byte("fake image"), 0o644))

	res := gw.VisualSearch(context.Background(), path)
	require.NoError(t, res.Err)
	require.NotEmpty(t, res.Value)
	assert.NotEmpty(t, res.Value[0].Similarity)

	missing := gw.VisualSearch(context.Background(), filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, missing.Err)
	assert.Equal(t, ClassUnknown, Classify(missing.Err))
	assert.Empty(t, missing.Value)
}

func TestGateway_MissingImageLeavesHealthAlone(t *testing.T) {
	gw, logs := newGateway(t, mockapi.New(nil).Handler())
	ctx := context.Background()

	require.True(t, gw.Categories(ctx).OK())
	require.Equal(t, HealthOnline, gw.Health().State())

	res := gw.VisualSearch(ctx, filepath.Join(t.TempDir(), "nope.png"))
	require.ErrorIs(t, res.Err, os.ErrNotExist)
	assert.NotNil(t, res.Value)

	health := gw.Health()
	assert.Equal(t, HealthOnline, health.State())
	assert.Zero(t, health.ConsecutiveFailures)
	assert.NoError(t, health.LastError)
	assert.Equal(t, 1, logs.FilterMessage("visual search skipped").Len())
	assert.Zero(t, logs.FilterMessage("api call failed").Len())
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ClassNone, Classify(nil))
	assert.Equal(t, ClassDecode, Classify(&dahell.DecodeError{Err: errors.New("eof")}))
	assert.Equal(t, ClassCanceled, Classify(&dahell.TransportError{Err: context.Canceled}))
	assert.Equal(t, ClassTransport, Classify(&dahell.TransportError{Err: errors.New("refused")}))
	assert.Equal(t, "server", ClassServer.String())
}

func TestHealthState(t *testing.T) {
	assert.Equal(t, HealthUnknown, Health{}.State())
	assert.Equal(t, "CONNECTING", HealthUnknown.String())
	assert.Equal(t, HealthOnline, Health{LastSuccess: time.Now()}.State())
}
