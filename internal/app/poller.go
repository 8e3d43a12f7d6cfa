package app

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ssebasarias/Dahell/internal/dahell"
	"github.com/ssebasarias/Dahell/internal/gateway"
	"github.com/ssebasarias/Dahell/internal/poll"
	"github.com/ssebasarias/Dahell/internal/state"
)

// Pollers owns the background feeds that write into the store.
type Pollers struct {
	ctx     context.Context
	gateway *gateway.Gateway
	store   *state.Store
	subs    []*poll.Subscription
}

// StartPollers launches one subscription per feed. Each feed only runs while
// its screen is active and the terminal has focus. It returns immediately.
func StartPollers(ctx context.Context, env *Env) *Pollers {
	p := &Pollers{ctx: ctx, gateway: env.Gateway, store: env.Store}
	logger := env.Logger.With(zap.String("component", "poller"))
	intervals := env.Config.Poll

	feed := func(name string, screen state.Screen, every time.Duration, refresh func(context.Context, *gateway.Gateway, *state.Store)) *poll.Subscription {
		return poll.Start(ctx, every, func(ctx context.Context) {
			refresh(ctx, p.gateway, p.store)
		},
			poll.WithName(name),
			poll.WithImmediate(),
			poll.WithVisibility(env.Store.VisibleFunc(screen)),
			poll.WithLogger(logger),
		)
	}

	p.subs = []*poll.Subscription{
		feed("cluster", state.ScreenCluster, intervals.Cluster, refreshCluster),
		feed("system-logs", state.ScreenSystem, intervals.SystemLogs, refreshSystemLogs),
		feed("container-stats", state.ScreenSystem, intervals.ContainerStats, refreshContainers),
	}
	return p
}

// Refresh runs the feeds behind screen once, outside the tick schedule. The UI
// calls it when a screen becomes active so data shows without waiting a tick.
func (p *Pollers) Refresh(screen state.Screen) {
	if p == nil || p.ctx.Err() != nil {
		return
	}
	switch screen {
	case state.ScreenCluster:
		refreshCluster(p.ctx, p.gateway, p.store)
	case state.ScreenSystem:
		refreshSystemLogs(p.ctx, p.gateway, p.store)
		refreshContainers(p.ctx, p.gateway, p.store)
	}
}

// Stop cancels every subscription and waits for their goroutines to exit.
func (p *Pollers) Stop() {
	if p == nil {
		return
	}
	for _, sub := range p.subs {
		sub.Cancel()
	}
	for _, sub := range p.subs {
		sub.Wait()
	}
}

// refreshCluster fetches the three Cluster Lab feeds in parallel and stores
// them together. The first failure is recorded against the feed.
func refreshCluster(ctx context.Context, gw *gateway.Gateway, store *state.Store) {
	var (
		g      errgroup.Group
		audits gateway.Result[[]dahell.AuditLog]
		orphan gateway.Result[[]dahell.Orphan]
		stats  gateway.Result[dahell.ClusterStats]
	)
	g.Go(func() error {
		audits = gw.AuditLogs(ctx)
		return audits.Err
	})
	g.Go(func() error {
		orphan = gw.Orphans(ctx)
		return orphan.Err
	})
	g.Go(func() error {
		stats = gw.ClusterStats(ctx)
		return stats.Err
	})
	err := g.Wait()
	if ctx.Err() != nil {
		return
	}
	store.UpdateCluster(state.ClusterData{
		AuditLogs: audits.Value,
		Orphans:   orphan.Value,
		Stats:     stats.Value,
	}, err)
}

func refreshSystemLogs(ctx context.Context, gw *gateway.Gateway, store *state.Store) {
	res := gw.SystemLogs(ctx)
	if ctx.Err() != nil {
		return
	}
	store.UpdateSystemLogs(res.Value, res.Err)
}

func refreshContainers(ctx context.Context, gw *gateway.Gateway, store *state.Store) {
	res := gw.ContainerStats(ctx)
	if ctx.Err() != nil {
		return
	}
	store.UpdateContainers(res.Value, res.Err)
}
