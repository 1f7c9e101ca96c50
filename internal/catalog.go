package internal

import (
	"fmt"
	"log/slog"

	"github.com/starford/starsys/internal/archive"
	"github.com/starford/starsys/internal/catalog"
	"github.com/starford/starsys/internal/repository"
	"github.com/starford/starsys/internal/store"
)

// Catalog bundles an opened database with the service built on it.
type Catalog struct {
	Store   *store.Store
	Service *catalog.Service
}

// Close waits for background work and closes the database.
func (c *Catalog) Close() error {
	c.Service.Wait()
	return c.Store.Close()
}

// OpenCatalog opens the configured database and builds a catalog service
// that syncs from the configured archive. Extra options are applied last.
func OpenCatalog(cfg *Config, logger *slog.Logger, opts ...catalog.Option) (*Catalog, error) {
	st, err := store.Open(cfg.SQLite.Path, store.WithDriver(cfg.SQLite.Driver))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	repo := repository.New(st,
		repository.WithLogger(logger),
		repository.WithCommitEvery(cfg.Sync.CommitEvery))

	client := archive.NewClient(
		archive.WithURL(cfg.Archive.URL),
		archive.WithTimeout(cfg.Archive.Timeout),
		archive.WithLogger(logger))

	base := []catalog.Option{
		catalog.WithFetcher(client),
		catalog.WithLogger(logger),
	}
	svc := catalog.NewService(repo, append(base, opts...)...)
	return &Catalog{Store: st, Service: svc}, nil
}
