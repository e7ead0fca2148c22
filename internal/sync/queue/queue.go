// Package queue provides the durable FIFO queue of orders captured locally
// and not yet confirmed by the backend. A record exists in the queue if and
// only if the backend has not confirmed it.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tapresto/possync/internal/db"
	"github.com/tapresto/possync/internal/errors"
	"github.com/tapresto/possync/internal/localid"
	"github.com/tapresto/possync/internal/logging"
	"github.com/tapresto/possync/internal/models"
)

// DefaultMaxAttempts is how many explicit server rejections a record
// survives before it is moved to the dead-letter partition. Transport
// failures never count as attempts.
const DefaultMaxAttempts = 5

// PendingQueue persists pending orders in their own partition, keyed by
// localId. Listing order is ascending localId, which embeds creation time,
// so it doubles as FIFO order.
type PendingQueue struct {
	store       *db.Store
	maxAttempts int
}

// New creates a PendingQueue on the shared store handle.
func New(store *db.Store) *PendingQueue {
	return &PendingQueue{store: store, maxAttempts: DefaultMaxAttempts}
}

// WithMaxAttempts overrides the dead-letter threshold.
func (q *PendingQueue) WithMaxAttempts(n int) *PendingQueue {
	q.maxAttempts = n
	return q
}

// Enqueue persists a new pending order and returns its localId. The call
// never touches the network; a storage failure is surfaced to the caller
// rather than silently dropping the order.
func (q *PendingQueue) Enqueue(ctx context.Context, payload models.OrderPayload) (string, error) {
	if payload.StoreID == "" {
		return "", errors.New(errors.ErrInvalid, "order payload has no store id")
	}

	payload.Normalize(time.Now().UTC())

	rec := models.PendingOrder{
		LocalID: localid.New(),
		StoreID: payload.StoreID,
		Payload: payload,
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return "", errors.Wrap(errors.ErrInternal, "failed to encode pending order", err)
	}

	if err := q.store.Put(ctx, db.PartPendingOrders, rec.LocalID, data); err != nil {
		return "", errors.Wrap(errors.ErrStorage, "order not saved", err)
	}

	logging.Debug("Pending order enqueued", map[string]interface{}{
		"local_id": rec.LocalID,
		"store_id": rec.StoreID,
	})

	return rec.LocalID, nil
}

// ListAll returns every pending order sorted ascending by localId. It never
// mutates queue state.
func (q *PendingQueue) ListAll(ctx context.Context) ([]models.PendingOrder, error) {
	records, err := q.store.List(ctx, db.PartPendingOrders)
	if err != nil {
		return nil, err
	}

	orders := make([]models.PendingOrder, 0, len(records))
	for _, r := range records {
		var rec models.PendingOrder
		if err := json.Unmarshal(r.Value, &rec); err != nil {
			return nil, errors.Wrap(errors.ErrInternal,
				fmt.Sprintf("failed to decode pending order %s", r.Key), err)
		}
		orders = append(orders, rec)
	}

	return orders, nil
}

// Remove deletes a pending order once the backend has confirmed it.
// Removing an absent id is a no-op.
func (q *PendingQueue) Remove(ctx context.Context, localID string) error {
	return q.store.Delete(ctx, db.PartPendingOrders, localID)
}

// MarkRejected records an explicit server rejection for a pending order.
// Below the attempt threshold the record stays queued with its counter
// bumped; at the threshold it moves to the dead-letter partition and leaves
// the queue. Returns true when the record was dead-lettered.
func (q *PendingQueue) MarkRejected(ctx context.Context, localID string) (bool, error) {
	data, err := q.store.Get(ctx, db.PartPendingOrders, localID)
	if err == db.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var rec models.PendingOrder
	if err := json.Unmarshal(data, &rec); err != nil {
		return false, errors.Wrap(errors.ErrInternal,
			fmt.Sprintf("failed to decode pending order %s", localID), err)
	}

	rec.Attempts++

	updated, err := json.Marshal(rec)
	if err != nil {
		return false, errors.Wrap(errors.ErrInternal, "failed to encode pending order", err)
	}

	if rec.Attempts < q.maxAttempts {
		if err := q.store.Put(ctx, db.PartPendingOrders, localID, updated); err != nil {
			return false, err
		}
		return false, nil
	}

	// Threshold reached: park the record so a permanently invalid order
	// cannot loop forever, but keep it inspectable.
	if err := q.store.Put(ctx, db.PartDeadOrders, localID, updated); err != nil {
		return false, err
	}
	if err := q.store.Delete(ctx, db.PartPendingOrders, localID); err != nil {
		return false, err
	}

	logging.Warn("Pending order dead-lettered after repeated rejection", map[string]interface{}{
		"local_id": localID,
		"attempts": rec.Attempts,
	})

	return true, nil
}

// Size returns the number of pending orders.
func (q *PendingQueue) Size(ctx context.Context) (int, error) {
	return q.store.Count(ctx, db.PartPendingOrders)
}

// DeadLetters returns the orders parked after repeated rejection, ascending
// by localId.
func (q *PendingQueue) DeadLetters(ctx context.Context) ([]models.PendingOrder, error) {
	records, err := q.store.List(ctx, db.PartDeadOrders)
	if err != nil {
		return nil, err
	}

	orders := make([]models.PendingOrder, 0, len(records))
	for _, r := range records {
		var rec models.PendingOrder
		if err := json.Unmarshal(r.Value, &rec); err != nil {
			return nil, errors.Wrap(errors.ErrInternal,
				fmt.Sprintf("failed to decode dead-lettered order %s", r.Key), err)
		}
		orders = append(orders, rec)
	}

	return orders, nil
}
