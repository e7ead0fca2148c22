package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNormalizeFillsAbsentTimestamps(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	p := OrderPayload{StoreID: "store-1"}
	p.Normalize(now)

	if !p.CreatedAt.Equal(now) {
		t.Errorf("Expected CreatedAt %v, got %v", now, p.CreatedAt)
	}
	if !p.UpdatedAt.Equal(now) {
		t.Errorf("Expected UpdatedAt %v, got %v", now, p.UpdatedAt)
	}
}

func TestNormalizeKeepsExistingTimestamps(t *testing.T) {
	created := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	p := OrderPayload{CreatedAt: created}
	p.Normalize(now)

	if !p.CreatedAt.Equal(created) {
		t.Errorf("Expected CreatedAt to stay %v, got %v", created, p.CreatedAt)
	}
	if !p.UpdatedAt.Equal(now) {
		t.Errorf("Expected absent UpdatedAt to be filled with %v, got %v", now, p.UpdatedAt)
	}
}

func TestSyncResultWireFormat(t *testing.T) {
	var r SyncResult
	if err := json.Unmarshal([]byte(`{"orderRef":"001-ab","ok":true}`), &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if r.LocalID != "001-ab" {
		t.Errorf("Expected orderRef to map to LocalID, got %q", r.LocalID)
	}
	if !r.OK {
		t.Error("Expected ok:true")
	}
}
