// Package cache provides singleton snapshot repositories for server-produced
// reference data (store profile, catalog items, tables). Each repository
// wraps exactly one partition and one fixed key; snapshots are replaced
// wholesale, never merged.
package cache

import (
	"context"

	"github.com/tapresto/possync/internal/db"
	"github.com/tapresto/possync/internal/models"
)

// SnapshotRepo stores one logical value under a fixed key in its partition.
type SnapshotRepo struct {
	store     *db.Store
	partition string
	key       string
}

// NewProfileRepo returns the repository for the store profile snapshot.
func NewProfileRepo(store *db.Store) *SnapshotRepo {
	return &SnapshotRepo{store: store, partition: db.PartStoreProfile, key: "store"}
}

// NewItemsRepo returns the repository for the catalog item-list snapshot.
func NewItemsRepo(store *db.Store) *SnapshotRepo {
	return &SnapshotRepo{store: store, partition: db.PartStoreItems, key: "items"}
}

// NewTablesRepo returns the repository for the table-list snapshot.
func NewTablesRepo(store *db.Store) *SnapshotRepo {
	return &SnapshotRepo{store: store, partition: db.PartStoreTables, key: "tables"}
}

// Save overwrites the singleton snapshot.
func (r *SnapshotRepo) Save(ctx context.Context, snapshot models.Snapshot) error {
	return r.store.Put(ctx, r.partition, r.key, snapshot)
}

// Load returns the singleton snapshot, or db.ErrNotFound if never saved.
func (r *SnapshotRepo) Load(ctx context.Context) (models.Snapshot, error) {
	return r.store.Get(ctx, r.partition, r.key)
}

// Clear deletes the singleton snapshot. A no-op if already absent.
func (r *SnapshotRepo) Clear(ctx context.Context) error {
	return r.store.Delete(ctx, r.partition, r.key)
}
