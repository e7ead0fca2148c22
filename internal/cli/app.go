package cli

import (
	"github.com/tapresto/possync/internal/api"
	"github.com/tapresto/possync/internal/cache"
	"github.com/tapresto/possync/internal/config"
	"github.com/tapresto/possync/internal/db"
	"github.com/tapresto/possync/internal/session"
	syncpkg "github.com/tapresto/possync/internal/sync"
	"github.com/tapresto/possync/internal/sync/queue"
)

// app bundles the wired components every command works with. The store
// handle is opened once and shared by every repository and the queue.
type app struct {
	cfg     *config.Config
	store   *db.Store
	profile *cache.SnapshotRepo
	items   *cache.SnapshotRepo
	tables  *cache.SnapshotRepo
	creds   *session.CredentialStore
	guard   *session.Guard
	client  *api.Client
	queue   *queue.PendingQueue
	engine  *syncpkg.Engine
}

func newApp(cfg *config.Config) (*app, error) {
	store, err := db.Open(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		store:   store,
		profile: cache.NewProfileRepo(store),
		items:   cache.NewItemsRepo(store),
		tables:  cache.NewTablesRepo(store),
		creds:   session.NewCredentialStore(store),
		queue:   queue.New(store).WithMaxAttempts(cfg.MaxAttempts),
	}
	a.guard = session.NewGuard(a.profile, a.items, a.tables, a.creds)
	a.client = api.NewClient(cfg.BaseURL, a.creds.Token, cfg.RequestTimeout.Std())
	a.engine = syncpkg.NewEngine(a.queue, a.client, cfg.RequestTimeout.Std())

	return a, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
