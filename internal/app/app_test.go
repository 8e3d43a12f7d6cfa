package app

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/ssebasarias/Dahell/internal/config"
	"github.com/ssebasarias/Dahell/internal/dahell"
	"github.com/ssebasarias/Dahell/internal/gateway"
	"github.com/ssebasarias/Dahell/internal/mockapi"
	"github.com/ssebasarias/Dahell/internal/state"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

func newEnv(t *testing.T, backend *mockapi.Server) *Env {
	t.Helper()
	server := httptest.NewServer(backend.Handler())
	t.Cleanup(server.Close)

	client, err := dahell.NewClient(server.URL+"/api", time.Second)
	require.NoError(t, err)
	t.Cleanup(client.CloseIdleConnections)

	cfg := config.Default()
	cfg.Poll = config.PollIntervals{
		Cluster:        20 * time.Millisecond,
		SystemLogs:     20 * time.Millisecond,
		ContainerStats: 20 * time.Millisecond,
	}
	return &Env{
		Config:  cfg,
		Logger:  zap.NewNop(),
		Client:  client,
		Gateway: gateway.New(client, zap.NewNop(), time.Second),
		Store:   &state.Store{},
	}
}

func TestRefreshCluster_StoresAllFeeds(t *testing.T) {
	env := newEnv(t, mockapi.New(nil))

	refreshCluster(context.Background(), env.Gateway, env.Store)

	snap := env.Store.Snapshot()
	assert.NotEmpty(t, snap.AuditLogs)
	assert.NotEmpty(t, snap.Orphans)
	assert.Positive(t, snap.ClusterStats.TotalProducts)
	assert.NoError(t, snap.Cluster.LastError)
	assert.Equal(t, 0, snap.Cluster.ConsecutiveFailures)
}

func TestRefreshCluster_PartialFailureRecordsError(t *testing.T) {
	backend := mockapi.New(nil)
	backend.FailNext("/cluster-lab/orphans", 1)
	env := newEnv(t, backend)

	refreshCluster(context.Background(), env.Gateway, env.Store)

	snap := env.Store.Snapshot()
	assert.Empty(t, snap.Orphans)
	assert.NotEmpty(t, snap.AuditLogs)
	assert.Error(t, snap.Cluster.LastError)
	assert.Equal(t, 1, snap.Cluster.ConsecutiveFailures)
}

func TestRefreshCluster_CanceledContextLeavesStoreUntouched(t *testing.T) {
	env := newEnv(t, mockapi.New(nil))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	refreshCluster(ctx, env.Gateway, env.Store)

	assert.Zero(t, env.Store.Snapshot().Version)
}

func TestPollers_OnlyVisibleFeedsRun(t *testing.T) {
	env := newEnv(t, mockapi.New(nil))
	env.Store.SetScreen(state.ScreenSystem)

	pollers := StartPollers(context.Background(), env)
	require.Eventually(t, func() bool {
		snap := env.Store.Snapshot()
		return len(snap.Containers) > 0 && len(snap.ServiceLogs) > 0
	}, 2*time.Second, 10*time.Millisecond)
	pollers.Stop()

	snap := env.Store.Snapshot()
	assert.Empty(t, snap.AuditLogs)
	assert.True(t, snap.Cluster.LastUpdated.IsZero())

	for _, sub := range pollers.subs {
		assert.False(t, sub.Active())
	}
}

func TestPollers_RefreshRunsScreenFeeds(t *testing.T) {
	env := newEnv(t, mockapi.New(nil))
	env.Store.SetFocused(false)

	pollers := StartPollers(context.Background(), env)
	defer pollers.Stop()

	pollers.Refresh(state.ScreenCluster)

	snap := env.Store.Snapshot()
	assert.NotEmpty(t, snap.Orphans)
	assert.Empty(t, snap.Containers)
}

func TestSetup_AppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	logPath := filepath.Join(dir, "logs", "dahell.log")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log_file = \""+logPath+"\"\n"), 0o644))

	prefsPath := filepath.Join(dir, "prefs.toml")
	require.NoError(t, os.WriteFile(prefsPath, []byte("start_screen = \"cluster\"\n"), 0o644))

	env, err := Setup(Options{ConfigPath: cfgPath, PrefsPath: prefsPath, APIURL: "http://backend:9000/api/"})
	require.NoError(t, err)
	defer env.Close()

	assert.Equal(t, "http://backend:9000/api", env.Client.BaseURL())
	assert.Equal(t, state.ScreenCluster, env.Store.ActiveScreen())
	assert.FileExists(t, logPath)
}

func TestSetup_InvalidConfigFails(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("api_url = [broken"), 0o644))

	_, err := Setup(Options{ConfigPath: cfgPath})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}
