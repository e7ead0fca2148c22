// Package session owns the locally held credential, the invalidation
// cascade that purges cached snapshots when the backend says the session is
// gone, and the stale-while-revalidate bootstrap of the profile cache.
package session

import (
	"context"
	"encoding/json"

	"github.com/tapresto/possync/internal/cache"
	"github.com/tapresto/possync/internal/db"
	"github.com/tapresto/possync/internal/errors"
	"github.com/tapresto/possync/internal/logging"
	"github.com/tapresto/possync/internal/models"
)

// Credentials is the locally persisted authentication state.
type Credentials struct {
	Token    string `json:"token"`
	StoreID  string `json:"storeId"`
	FCMToken string `json:"fcm,omitempty"`
}

// CredentialStore persists the credential in its own partition.
type CredentialStore struct {
	store *db.Store
}

const credentialKey = "credentials"

// NewCredentialStore creates a credential store on the shared handle.
func NewCredentialStore(store *db.Store) *CredentialStore {
	return &CredentialStore{store: store}
}

// Save persists the credential, replacing any previous one.
func (c *CredentialStore) Save(ctx context.Context, creds Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return errors.Wrap(errors.ErrInternal, "failed to encode credentials", err)
	}
	return c.store.Put(ctx, db.PartSession, credentialKey, data)
}

// Load returns the stored credential, or a NO_CREDENTIAL error if absent.
func (c *CredentialStore) Load(ctx context.Context) (Credentials, error) {
	data, err := c.store.Get(ctx, db.PartSession, credentialKey)
	if err == db.ErrNotFound {
		return Credentials{}, errors.New(errors.ErrNoCredential, "no stored credential")
	}
	if err != nil {
		return Credentials{}, err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, errors.Wrap(errors.ErrInternal, "failed to decode credentials", err)
	}
	return creds, nil
}

// Clear discards the stored credential. A no-op if absent.
func (c *CredentialStore) Clear(ctx context.Context) error {
	return c.store.Delete(ctx, db.PartSession, credentialKey)
}

// Token adapts the store to the api client's token source.
func (c *CredentialStore) Token(ctx context.Context) (string, error) {
	creds, err := c.Load(ctx)
	if err != nil {
		return "", err
	}
	return creds.Token, nil
}

// Guard reacts to an authoritative unauthorized signal by clearing every
// cached snapshot and the credential. The pending-order queue is deliberately
// left alone: captured orders must survive a forced logout.
type Guard struct {
	profile *cache.SnapshotRepo
	items   *cache.SnapshotRepo
	tables  *cache.SnapshotRepo
	creds   *CredentialStore
}

// NewGuard creates the session guard over the three snapshot repositories
// and the credential store.
func NewGuard(profile, items, tables *cache.SnapshotRepo, creds *CredentialStore) *Guard {
	return &Guard{profile: profile, items: items, tables: tables, creds: creds}
}

// Invalidate purges the profile, items and tables snapshots and the
// credential before returning. On error the caller must assume nothing was
// cleared and retry; every clear is individually idempotent, so a retry
// converges.
func (g *Guard) Invalidate(ctx context.Context) error {
	if err := g.profile.Clear(ctx); err != nil {
		return errors.Wrap(errors.ErrStorage, "profile purge failed", err)
	}
	if err := g.items.Clear(ctx); err != nil {
		return errors.Wrap(errors.ErrStorage, "items purge failed", err)
	}
	if err := g.tables.Clear(ctx); err != nil {
		return errors.Wrap(errors.ErrStorage, "tables purge failed", err)
	}
	if err := g.creds.Clear(ctx); err != nil {
		return errors.Wrap(errors.ErrStorage, "credential purge failed", err)
	}

	logging.Info("Session invalidated, cached snapshots purged")
	return nil
}

// ProfileFetcher is the authoritative profile read the bootstrap depends on.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context) (models.Snapshot, error)
}

// Bootstrap implements stale-while-revalidate for the profile cache: the
// cached snapshot is surfaced first for instant availability, then the
// authoritative fetch replaces it. A 401 during that fetch triggers the
// guard cascade.
type Bootstrap struct {
	profile *cache.SnapshotRepo
	fetcher ProfileFetcher
	guard   *Guard
}

// NewBootstrap wires the bootstrap sequence.
func NewBootstrap(profile *cache.SnapshotRepo, fetcher ProfileFetcher, guard *Guard) *Bootstrap {
	return &Bootstrap{profile: profile, fetcher: fetcher, guard: guard}
}

// Run loads the cached profile, hands it to onStale if present, then fetches
// the authoritative profile and saves it. On unauthorized it runs the
// invalidation cascade and returns the unauthorized error. On a plain
// network failure the stale snapshot, if any, is returned so the caller can
// keep operating offline.
func (b *Bootstrap) Run(ctx context.Context, onStale func(models.Snapshot)) (models.Snapshot, error) {
	cached, err := b.profile.Load(ctx)
	haveCached := err == nil
	if haveCached && onStale != nil {
		onStale(cached)
	}

	fresh, err := b.fetcher.FetchProfile(ctx)
	if err != nil {
		if errors.Is(err, errors.ErrUnauthorized) {
			if purgeErr := b.guard.Invalidate(ctx); purgeErr != nil {
				return nil, purgeErr
			}
			return nil, err
		}
		if haveCached {
			logging.Warn("Profile revalidation failed, serving cached snapshot",
				map[string]interface{}{"error": err.Error()})
			return cached, nil
		}
		return nil, err
	}

	if err := b.profile.Save(ctx, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}
