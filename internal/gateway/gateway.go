package gateway

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ssebasarias/Dahell/internal/dahell"
)

// Result carries a value that is always safe to render. On failure Value is
// the empty value for its type and Err records why.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the call succeeded.
func (r Result[T]) OK() bool { return r.Err == nil }

// Gateway wraps the API client so that failures are logged and converted to
// empty results instead of being returned to the views.
type Gateway struct {
	api     dahell.API
	logger  *zap.Logger
	timeout time.Duration

	mu     sync.Mutex
	health Health
}

// New builds a Gateway. A nil logger discards logs; a non-positive timeout
// leaves deadlines to the client.
func New(api dahell.API, logger *zap.Logger, timeout time.Duration) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		api:     api,
		logger:  logger.With(zap.String("component", "gateway")),
		timeout: timeout,
	}
}

func call[T any](g *Gateway, ctx context.Context, endpoint string, empty T, fn func(context.Context) (T, error)) Result[T] {
	reqID := uuid.NewString()
	ctx = dahell.WithRequestID(ctx, reqID)
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	value, err := fn(ctx)
	if err != nil {
		g.recordFailure(err)
		g.logger.Warn("api call failed",
			zap.String("endpoint", endpoint),
			zap.String("request_id", reqID),
			zap.Stringer("class", Classify(err)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return Result[T]{Value: empty, Err: err}
	}
	g.recordSuccess()
	g.logger.Debug("api call",
		zap.String("endpoint", endpoint),
		zap.String("request_id", reqID),
		zap.Duration("elapsed", time.Since(start)),
	)
	return Result[T]{Value: value}
}

// GoldMine runs one list query.
func (g *Gateway) GoldMine(ctx context.Context, q dahell.GoldMineQuery) Result[[]dahell.Opportunity] {
	r := call(g, ctx, "gold-mine", []dahell.Opportunity{}, func(ctx context.Context) ([]dahell.Opportunity, error) {
		return g.api.FetchGoldMine(ctx, q)
	})
	if r.Value == nil {
		r.Value = []dahell.Opportunity{}
	}
	return r
}

// VisualSearch uploads the image at path. A file that cannot be opened is a
// local problem and does not count against backend health.
func (g *Gateway) VisualSearch(ctx context.Context, path string) Result[[]dahell.Opportunity] {
	f, err := os.Open(path)
	if err != nil {
		err = fmt.Errorf("open image: %w", err)
		g.logger.Warn("visual search skipped", zap.String("path", path), zap.Error(err))
		return Result[[]dahell.Opportunity]{Value: []dahell.Opportunity{}, Err: err}
	}
	defer func() { _ = f.Close() }()

	r := call(g, ctx, "gold-mine/visual-search", []dahell.Opportunity{}, func(ctx context.Context) ([]dahell.Opportunity, error) {
		return g.api.VisualSearch(ctx, path, f)
	})
	if r.Value == nil {
		r.Value = []dahell.Opportunity{}
	}
	return r
}

// Categories lists the category filter options.
func (g *Gateway) Categories(ctx context.Context) Result[[]dahell.Category] {
	r := call(g, ctx, "categories", []dahell.Category{}, g.api.FetchCategories)
	if r.Value == nil {
		r.Value = []dahell.Category{}
	}
	return r
}

// AuditLogs returns the latest clustering decisions.
func (g *Gateway) AuditLogs(ctx context.Context) Result[[]dahell.AuditLog] {
	r := call(g, ctx, "cluster-lab/audit-logs", []dahell.AuditLog{}, g.api.FetchAuditLogs)
	if r.Value == nil {
		r.Value = []dahell.AuditLog{}
	}
	return r
}

// Orphans returns products pending manual clustering.
func (g *Gateway) Orphans(ctx context.Context) Result[[]dahell.Orphan] {
	r := call(g, ctx, "cluster-lab/orphans", []dahell.Orphan{}, g.api.FetchOrphans)
	if r.Value == nil {
		r.Value = []dahell.Orphan{}
	}
	return r
}

// ClusterStats returns the trainer metrics.
func (g *Gateway) ClusterStats(ctx context.Context) Result[dahell.ClusterStats] {
	return call(g, ctx, "cluster-lab/stats", dahell.ClusterStats{}, func(ctx context.Context) (dahell.ClusterStats, error) {
		stats, err := g.api.FetchClusterStats(ctx)
		if err != nil || stats == nil {
			return dahell.ClusterStats{}, err
		}
		return *stats, nil
	})
}

// Investigate fetches candidate twins for an orphan.
func (g *Gateway) Investigate(ctx context.Context, productID int64) Result[dahell.Investigation] {
	return call(g, ctx, "cluster-lab/orphans/investigate", dahell.Investigation{}, func(ctx context.Context) (dahell.Investigation, error) {
		inv, err := g.api.InvestigateOrphan(ctx, productID)
		if err != nil || inv == nil {
			return dahell.Investigation{}, err
		}
		return *inv, nil
	})
}

// ExecuteOrphanAction resolves an orphan. The error is returned so the action
// controller can keep the item on failure.
func (g *Gateway) ExecuteOrphanAction(ctx context.Context, req dahell.OrphanActionRequest) error {
	r := call(g, ctx, "cluster-lab/orphans/action", struct{}{}, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, g.api.ExecuteOrphanAction(ctx, req)
	})
	return r.Err
}

// SaveFeedback records an audit verdict.
func (g *Gateway) SaveFeedback(ctx context.Context, req dahell.FeedbackRequest) error {
	r := call(g, ctx, "cluster-lab/feedback", struct{}{}, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, g.api.SaveFeedback(ctx, req)
	})
	return r.Err
}

// SystemLogs returns recent container output.
func (g *Gateway) SystemLogs(ctx context.Context) Result[[]dahell.ServiceLog] {
	r := call(g, ctx, "system-logs", []dahell.ServiceLog{}, g.api.FetchSystemLogs)
	if r.Value == nil {
		r.Value = []dahell.ServiceLog{}
	}
	return r
}

// ContainerStats returns per-service container metrics.
func (g *Gateway) ContainerStats(ctx context.Context) Result[dahell.ContainerStats] {
	r := call(g, ctx, "control/stats", dahell.ContainerStats{}, g.api.FetchContainerStats)
	if r.Value == nil {
		r.Value = dahell.ContainerStats{}
	}
	return r
}

// ControlContainer starts, stops or restarts a service.
func (g *Gateway) ControlContainer(ctx context.Context, service, action string) Result[dahell.ControlResponse] {
	return call(g, ctx, "control/container", dahell.ControlResponse{}, func(ctx context.Context) (dahell.ControlResponse, error) {
		resp, err := g.api.ControlContainer(ctx, service, action)
		if err != nil || resp == nil {
			return dahell.ControlResponse{}, err
		}
		return *resp, nil
	})
}

// Class groups failures for logging.
type Class int

const (
	ClassNone Class = iota
	ClassTransport
	ClassServer
	ClassDecode
	ClassCanceled
	ClassUnknown
)

func (c Class) String() string {
	switch c {
	case ClassNone:
		return "none"
	case ClassTransport:
		return "transport"
	case ClassServer:
		return "server"
	case ClassDecode:
		return "decode"
	case ClassCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Classify maps an error returned through the gateway to its failure class.
func Classify(err error) Class {
	if err == nil {
		return ClassNone
	}
	var se *dahell.ServerError
	if errors.As(err, &se) {
		return ClassServer
	}
	var de *dahell.DecodeError
	if errors.As(err, &de) {
		return ClassDecode
	}
	if errors.Is(err, context.Canceled) {
		return ClassCanceled
	}
	var te *dahell.TransportError
	if errors.As(err, &te) {
		return ClassTransport
	}
	return ClassUnknown
}
