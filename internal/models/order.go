// Package models provides data model definitions for the sync core.
package models

import (
	"encoding/json"
	"time"
)

// OrderItem is a single line in an order.
type OrderItem struct {
	ItemID   string  `json:"itemId"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// BillingSummary holds the computed totals for an order.
type BillingSummary struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Discount float64 `json:"discount,omitempty"`
	Total    float64 `json:"total"`
}

// OrderPayload is the order body as the backend expects it: items, table
// reference, customer reference and computed totals.
type OrderPayload struct {
	StoreID   string         `json:"storeId"`
	TableID   string         `json:"tableId,omitempty"`
	Username  string         `json:"username,omitempty"`
	Items     []OrderItem    `json:"items"`
	Billing   BillingSummary `json:"billingSummary"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Normalize fills CreatedAt/UpdatedAt if absent. Timestamps already set by
// the caller are kept as-is.
func (p *OrderPayload) Normalize(now time.Time) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
}

// PendingOrder is an order captured locally that the backend has not yet
// confirmed. LocalID is both the storage key and the correlation token the
// server echoes back. StoreID is recorded at capture time so a drain can
// refuse to mix orders from different store sessions.
type PendingOrder struct {
	LocalID  string       `json:"localId"`
	StoreID  string       `json:"storeId"`
	Attempts int          `json:"attempts"`
	Payload  OrderPayload `json:"payload"`
}

// SyncResult is the per-record outcome the server returns for one submitted
// pending order. The correlation field is named orderRef on the wire.
type SyncResult struct {
	LocalID string `json:"orderRef"`
	OK      bool   `json:"ok"`
}

// Snapshot wraps an opaque server-produced value cached locally. The core
// imposes no shape on it beyond being a container the server produced.
type Snapshot = json.RawMessage
