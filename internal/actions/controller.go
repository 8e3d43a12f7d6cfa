package actions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ssebasarias/Dahell/internal/dahell"
)

// DefaultCloseDelay keeps the investigator open briefly after a successful
// action so the removal is visible.
const DefaultCloseDelay = 800 * time.Millisecond

// Kind is an orphan resolution.
type Kind string

const (
	MergeSelected    Kind = dahell.ActionMergeSelected
	ConfirmSingleton Kind = dahell.ActionConfirmSingleton
	Trash            Kind = dahell.ActionTrash
)

// ParseKind accepts the backend action names.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case MergeSelected, ConfirmSingleton, Trash:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Pending is an action dispatched but not yet completed.
type Pending struct {
	TargetID   int64
	Kind       Kind
	RelatedIDs []int64
	StartedAt  time.Time
}

// Request converts p into the backend payload.
func (p Pending) Request() dahell.OrphanActionRequest {
	related := make([]int64, len(p.RelatedIDs))
	copy(related, p.RelatedIDs)
	return dahell.OrphanActionRequest{
		ProductID:  p.TargetID,
		Action:     string(p.Kind),
		Candidates: related,
	}
}

// Outcome reports what Complete did. CloseAfter is the delay before the
// detail view should close; it is zero on failure.
type Outcome struct {
	TargetID   int64
	Kind       Kind
	Removed    bool
	CloseAfter time.Duration
	Err        error
}

// Executor performs the remote side of an action.
type Executor interface {
	ExecuteOrphanAction(ctx context.Context, req dahell.OrphanActionRequest) error
}

// Options configure a Controller.
type Options struct {
	CloseDelay time.Duration
	Logger     *zap.Logger
}

// Controller tracks pending orphan actions and the locally unresolved list.
type Controller struct {
	closeDelay time.Duration
	logger     *zap.Logger
	now        func() time.Time

	mu         sync.Mutex
	pending    map[int64]Pending
	unresolved []dahell.Orphan
	tombstones map[int64]struct{}
}

// New builds a Controller with an empty unresolved list.
func New(opts Options) *Controller {
	if opts.CloseDelay <= 0 {
		opts.CloseDelay = DefaultCloseDelay
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Controller{
		closeDelay: opts.CloseDelay,
		logger:     opts.Logger.With(zap.String("component", "actions")),
		now:        time.Now,
		pending:    map[int64]Pending{},
		tombstones: map[int64]struct{}{},
	}
}

// Begin validates and registers an action. A rejected call leaves no trace
// and must not be followed by a remote call.
func (c *Controller) Begin(kind Kind, targetID int64, relatedIDs []int64) (Pending, error) {
	if targetID <= 0 {
		return Pending{}, ErrInvalidTarget
	}
	switch kind {
	case MergeSelected:
		if len(relatedIDs) == 0 {
			return Pending{}, ErrEmptySelection
		}
	case ConfirmSingleton:
		if len(relatedIDs) != 0 {
			return Pending{}, ErrSelectionNotEmpty
		}
	case Trash:
	default:
		return Pending{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.pending[targetID]; busy {
		return Pending{}, ErrActionInFlight
	}
	related := make([]int64, len(relatedIDs))
	copy(related, relatedIDs)
	p := Pending{TargetID: targetID, Kind: kind, RelatedIDs: related, StartedAt: c.now()}
	c.pending[targetID] = p
	return p, nil
}

// Complete finishes the pending action for targetID. On success the target
// is removed from the unresolved list before Complete returns. On failure the
// item stays and the error is logged; there is no retry.
func (c *Controller) Complete(targetID int64, err error) Outcome {
	c.mu.Lock()
	p, ok := c.pending[targetID]
	delete(c.pending, targetID)
	if !ok {
		c.mu.Unlock()
		return Outcome{TargetID: targetID, Err: err}
	}
	if err != nil {
		c.mu.Unlock()
		c.logger.Warn("orphan action failed",
			zap.Int64("product_id", targetID),
			zap.String("action", string(p.Kind)),
			zap.Int("candidates", len(p.RelatedIDs)),
			zap.Error(err),
		)
		return Outcome{TargetID: targetID, Kind: p.Kind, Err: err}
	}
	c.removeLocked(targetID)
	c.tombstones[targetID] = struct{}{}
	c.mu.Unlock()

	c.logger.Info("orphan action applied",
		zap.Int64("product_id", targetID),
		zap.String("action", string(p.Kind)),
		zap.Duration("elapsed", c.now().Sub(p.StartedAt)),
	)
	return Outcome{TargetID: targetID, Kind: p.Kind, Removed: true, CloseAfter: c.closeDelay}
}

// Execute runs Begin, the remote call and Complete in sequence. Validation
// failures return before exec is called.
func (c *Controller) Execute(ctx context.Context, exec Executor, kind Kind, targetID int64, relatedIDs []int64) (Outcome, error) {
	p, err := c.Begin(kind, targetID, relatedIDs)
	if err != nil {
		return Outcome{TargetID: targetID, Kind: kind, Err: err}, err
	}
	out := c.Complete(targetID, exec.ExecuteOrphanAction(ctx, p.Request()))
	return out, out.Err
}

// InFlight reports whether targetID has a pending action.
func (c *Controller) InFlight(targetID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[targetID]
	return ok
}

// Sync replaces the unresolved list with a poll result. Items removed
// optimistically stay hidden until a poll no longer reports them, at which
// point their tombstone is dropped.
func (c *Controller) Sync(orphans []dahell.Orphan) {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[int64]struct{}, len(orphans))
	out := make([]dahell.Orphan, 0, len(orphans))
	for _, o := range orphans {
		seen[o.ProductID] = struct{}{}
		if _, dead := c.tombstones[o.ProductID]; dead {
			continue
		}
		out = append(out, o)
	}
	for id := range c.tombstones {
		if _, still := seen[id]; !still {
			delete(c.tombstones, id)
		}
	}
	c.unresolved = out
}

// Unresolved returns a copy of the local orphan list.
func (c *Controller) Unresolved() []dahell.Orphan {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]dahell.Orphan(nil), c.unresolved...)
}

func (c *Controller) removeLocked(id int64) {
	kept := c.unresolved[:0]
	for _, o := range c.unresolved {
		if o.ProductID != id {
			kept = append(kept, o)
		}
	}
	c.unresolved = kept
}
