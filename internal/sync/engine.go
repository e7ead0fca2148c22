// Package sync drains the pending-order queue against the backend with
// partial-failure semantics: one batch call per drain, per-record results,
// and no local deletion without an explicit positive confirmation.
package sync

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/tapresto/possync/internal/errors"
	"github.com/tapresto/possync/internal/logging"
	"github.com/tapresto/possync/internal/models"
	"github.com/tapresto/possync/internal/sync/queue"
)

// Backend is the remote reconciliation call the engine depends on. The
// server must accept duplicate submission of an already-confirmed localId
// and confirm it idempotently.
type Backend interface {
	SyncOrders(ctx context.Context, storeID string, orders []models.PendingOrder) ([]models.SyncResult, error)
}

// Engine state. A concurrent Drain while one is active is a cheap no-op.
const (
	stateIdle int32 = iota
	stateDraining
)

// DefaultDrainTimeout bounds the single network call of a drain cycle.
const DefaultDrainTimeout = 30 * time.Second

// Engine owns the Idle/Draining single-flight state explicitly instead of a
// process-wide mutable flag.
type Engine struct {
	queue   *queue.PendingQueue
	backend Backend
	timeout time.Duration
	state   atomic.Int32
}

// DrainResult is the advisory aggregate summary of one drain cycle. It never
// affects the correctness of the next drain.
type DrainResult struct {
	Skipped      bool
	Confirmed    int
	Pending      int
	DeadLettered int
	Duration     time.Duration
}

// NewEngine creates a sync engine on the shared pending queue.
func NewEngine(q *queue.PendingQueue, backend Backend, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = DefaultDrainTimeout
	}
	return &Engine{queue: q, backend: backend, timeout: timeout}
}

// Draining reports whether a drain cycle is currently active.
func (e *Engine) Draining() bool {
	return e.state.Load() == stateDraining
}

// Drain submits the whole pending snapshot in one batch and reconciles the
// per-record results. Records are deleted only on an explicit ok result;
// explicit rejections bump the dead-letter counter; everything else stays
// queued untouched for the next cycle. On total transport failure the entire
// batch stays queued and a single aggregate failure is returned.
//
// Orders enqueued while the batch is in flight are not part of the snapshot
// and will be picked up by the next drain.
func (e *Engine) Drain(ctx context.Context) (*DrainResult, error) {
	if !e.state.CompareAndSwap(stateIdle, stateDraining) {
		return &DrainResult{Skipped: true}, nil
	}
	defer e.state.Store(stateIdle)

	start := time.Now()
	result := &DrainResult{}
	defer func() { result.Duration = time.Since(start) }()

	pending, err := e.queue.ListAll(ctx)
	if err != nil {
		return result, err
	}
	if len(pending) == 0 {
		return result, nil
	}

	// All records in one batch must belong to the same store session. A
	// mixed batch means mis-tagged captures; fail loudly instead of
	// mis-routing orders.
	storeID := pending[0].StoreID
	for _, rec := range pending {
		if rec.StoreID != storeID {
			result.Pending = len(pending)
			return result, errors.New(errors.ErrMixedBatch,
				"pending queue holds orders for more than one store")
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	results, err := e.backend.SyncOrders(callCtx, storeID, pending)
	if err != nil {
		result.Pending = len(pending)
		logging.Warn("Drain failed, batch stays queued", map[string]interface{}{
			"pending": result.Pending,
			"error":   err.Error(),
		})
		return result, errors.Wrap(errors.ErrNetwork, "order sync failed", err)
	}

	// Index results by correlation id. At most one result per id is
	// trusted; results for ids outside the batch are ignored.
	submitted := make(map[string]bool, len(pending))
	for _, rec := range pending {
		submitted[rec.LocalID] = true
	}
	outcome := make(map[string]bool, len(results))
	for _, r := range results {
		if !submitted[r.LocalID] {
			continue
		}
		if _, dup := outcome[r.LocalID]; dup {
			continue
		}
		outcome[r.LocalID] = r.OK
	}

	for _, rec := range pending {
		ok, answered := outcome[rec.LocalID]
		switch {
		case answered && ok:
			if err := e.queue.Remove(ctx, rec.LocalID); err != nil {
				// Confirmed but not removed: the next drain resubmits
				// it and the server confirms idempotently.
				logging.Error("Failed to remove confirmed order", err,
					map[string]interface{}{"local_id": rec.LocalID})
				result.Pending++
				continue
			}
			result.Confirmed++
		case answered:
			dead, err := e.queue.MarkRejected(ctx, rec.LocalID)
			if err != nil {
				logging.Error("Failed to record order rejection", err,
					map[string]interface{}{"local_id": rec.LocalID})
			}
			if dead {
				result.DeadLettered++
			} else {
				result.Pending++
			}
		default:
			// No result for a submitted record: treated as failed,
			// stays queued verbatim.
			result.Pending++
		}
	}

	logging.Info("Drain completed", map[string]interface{}{
		"store_id":      storeID,
		"confirmed":     result.Confirmed,
		"pending":       result.Pending,
		"dead_lettered": result.DeadLettered,
	})

	return result, nil
}
