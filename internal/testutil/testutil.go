// Package testutil provides shared test helpers for setting up databases,
// repositories and sample catalogs.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/starford/starsys/internal/catalog"
	"github.com/starford/starsys/internal/models"
	"github.com/starford/starsys/internal/repository"
	"github.com/starford/starsys/internal/store"
)

// QuietLogger discards all output.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestStore creates a temporary SQLite database that is automatically cleaned up.
func TestStore(t *testing.T) *store.Store {
	t.Helper()
	dbFile, err := os.CreateTemp("", "starsys-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() {
		os.Remove(dbFile.Name())
		os.Remove(dbFile.Name() + "-wal")
		os.Remove(dbFile.Name() + "-shm")
	})

	s, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestRepository returns a repository on a fresh temporary database.
func TestRepository(t *testing.T) *repository.Repository {
	t.Helper()
	return repository.New(TestStore(t), repository.WithLogger(QuietLogger()))
}

// TestService returns a catalog service seeded with systems.
func TestService(t *testing.T, systems []models.StarSystem, opts ...catalog.Option) *catalog.Service {
	t.Helper()
	repo := TestRepository(t)
	if len(systems) > 0 {
		if _, err := repo.SaveBatch(context.Background(), systems); err != nil {
			t.Fatal(err)
		}
	}
	opts = append([]catalog.Option{catalog.WithLogger(QuietLogger())}, opts...)
	svc := catalog.NewService(repo, opts...)
	t.Cleanup(svc.Wait)
	return svc
}

// SampleSystems returns three small systems covering G, K and M stars,
// one of them without planets.
func SampleSystems() []models.StarSystem {
	return []models.StarSystem{
		{
			Name: "Kepler-22", SpectralType: "G5V", DistanceLY: 620,
			Planets: []models.Planet{
				{Name: "Kepler-22 b", Mass: 36, Radius: 2.4, OrbitDistance: 289.9},
			},
		},
		{
			Name: "HD 40307", SpectralType: "K2.5V", DistanceLY: 42,
			Planets: []models.Planet{
				{Name: "HD 40307 b", Mass: 4.2, Radius: 1.7, OrbitDistance: 4.3},
				{Name: "HD 40307 g", Mass: 7.1, Radius: 2.1, OrbitDistance: 197.8},
			},
		},
		{Name: "Proxima Centauri", SpectralType: "M5V", DistanceLY: 4.24},
	}
}

// StubFetcher returns fixed systems or a fixed error. Block, when set,
// holds FetchSystems until it is closed.
type StubFetcher struct {
	Systems []models.StarSystem
	Err     error
	Block   chan struct{}

	mu    sync.Mutex
	calls int
}

// FetchSystems implements catalog.Fetcher.
func (f *StubFetcher) FetchSystems(ctx context.Context) ([]models.StarSystem, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.Block != nil {
		select {
		case <-f.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.Systems, f.Err
}

// Calls returns how many times FetchSystems ran.
func (f *StubFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
