// Package repository is the catalog's persistence API: upserting star
// systems with their planets and loading them back.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/starsys/internal/apperr"
	"github.com/starford/starsys/internal/models"
	"github.com/starford/starsys/internal/store"
)

// DefaultCommitEvery is how many successfully saved systems SaveBatch
// accumulates before committing.
const DefaultCommitEvery = 50

// Catalog defines the repository operations consumers depend on.
type Catalog interface {
	Save(ctx context.Context, sys models.StarSystem) error
	SaveBatch(ctx context.Context, systems []models.StarSystem) (BatchResult, error)
	FindAll(ctx context.Context) ([]models.StarSystem, error)
	FindByName(ctx context.Context, name string) (*models.StarSystem, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

// Verify *Repository satisfies Catalog at compile time.
var _ Catalog = (*Repository)(nil)

// BatchResult counts the outcome of SaveBatch.
type BatchResult struct {
	Saved  int `json:"saved"`
	Failed int `json:"failed"`
}

// Repository persists star systems through a store.Store.
type Repository struct {
	store       *store.Store
	logger      *slog.Logger
	commitEvery int
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the logger used for per-item batch failures.
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithCommitEvery overrides DefaultCommitEvery. Values below 1 are ignored.
func WithCommitEvery(n int) Option {
	return func(r *Repository) {
		if n > 0 {
			r.commitEvery = n
		}
	}
}

// New creates a repository on top of s.
func New(s *store.Store, opts ...Option) *Repository {
	r := &Repository{
		store:       s,
		logger:      slog.Default(),
		commitEvery: DefaultCommitEvery,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

const (
	upsertSystemSQL = `
		INSERT INTO star_systems (name, spectral_type, distance_ly)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			spectral_type = excluded.spectral_type,
			distance_ly   = excluded.distance_ly
	`
	upsertPlanetSQL = `
		INSERT INTO planets (name, mass, radius, orbit_distance, system_name)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name, system_name) DO UPDATE SET
			mass           = excluded.mass,
			radius         = excluded.radius,
			orbit_distance = excluded.orbit_distance
	`
)

// upsertSystem writes the system row and every planet. Planets stored earlier
// but missing from sys.Planets are left untouched.
func upsertSystem(ctx context.Context, ex store.Executor, sys models.StarSystem) error {
	if _, err := ex.ExecContext(ctx, upsertSystemSQL, sys.Name, sys.SpectralType, sys.DistanceLY); err != nil {
		return fmt.Errorf("upsert system %q: %w", sys.Name, err)
	}
	for _, p := range sys.Planets {
		if _, err := ex.ExecContext(ctx, upsertPlanetSQL, p.Name, p.Mass, p.Radius, p.OrbitDistance, sys.Name); err != nil {
			return fmt.Errorf("upsert planet %q of %q: %w", p.Name, sys.Name, err)
		}
	}
	return nil
}

// Save upserts a system and its planets in one transaction.
func (r *Repository) Save(ctx context.Context, sys models.StarSystem) error {
	_, err := store.WithTx(ctx, r.store, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, upsertSystem(ctx, tx, sys)
	})
	return apperr.Storage("save", err)
}

// SaveBatch saves every system independently within one session. A failing
// system is rolled back to its savepoint, logged and counted; the batch goes
// on. Progress is committed every commitEvery saved systems so later
// failures cannot undo confirmed saves.
//
// The returned error only reports session-level failures (acquiring the
// connection, beginning or committing a transaction). Saved counts only
// systems whose transaction was committed.
func (r *Repository) SaveBatch(ctx context.Context, systems []models.StarSystem) (BatchResult, error) {
	res, err := store.WithConn(ctx, r.store, func(conn *sql.Conn) (BatchResult, error) {
		var res BatchResult

		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return res, fmt.Errorf("begin batch: %w", err)
		}
		defer func() { _ = tx.Rollback() }()
		pending := 0

		for _, sys := range systems {
			if err := saveWithSavepoint(ctx, tx, sys); err != nil {
				res.Failed++
				r.logger.Warn("save batch: system failed",
					slog.String("system", sys.Name),
					slog.String("error", err.Error()))
				continue
			}
			pending++

			if pending == r.commitEvery {
				if err := tx.Commit(); err != nil {
					res.Failed += pending
					return res, fmt.Errorf("commit batch: %w", err)
				}
				res.Saved += pending
				pending = 0
				r.logger.Debug("save batch: committed", slog.Int("saved", res.Saved))

				next, err := conn.BeginTx(ctx, nil)
				if err != nil {
					return res, fmt.Errorf("begin batch: %w", err)
				}
				tx = next
			}
		}

		if err := tx.Commit(); err != nil {
			res.Failed += pending
			return res, fmt.Errorf("commit batch: %w", err)
		}
		res.Saved += pending
		return res, nil
	})
	if err != nil {
		return res, apperr.Storage("save batch", err)
	}
	return res, nil
}

func saveWithSavepoint(ctx context.Context, tx *sql.Tx, sys models.StarSystem) error {
	if _, err := tx.ExecContext(ctx, `SAVEPOINT batch_item`); err != nil {
		return err
	}
	if err := upsertSystem(ctx, tx, sys); err != nil {
		if _, rbErr := tx.ExecContext(ctx, `ROLLBACK TO batch_item`); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		_, _ = tx.ExecContext(ctx, `RELEASE batch_item`)
		return err
	}
	_, err := tx.ExecContext(ctx, `RELEASE batch_item`)
	return err
}

// FindAll loads every system with its planets. Planets whose system row is
// missing are dropped. Order follows storage order.
func (r *Repository) FindAll(ctx context.Context) ([]models.StarSystem, error) {
	systems, err := store.WithConn(ctx, r.store, func(conn *sql.Conn) ([]models.StarSystem, error) {
		rows, err := conn.QueryContext(ctx, `SELECT name, spectral_type, distance_ly FROM star_systems`)
		if err != nil {
			return nil, fmt.Errorf("query systems: %w", err)
		}
		defer rows.Close()

		var out []models.StarSystem
		byName := make(map[string]int)
		for rows.Next() {
			sys, err := scanSystem(rows)
			if err != nil {
				return nil, err
			}
			byName[sys.Name] = len(out)
			out = append(out, sys)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		rows.Close()

		prows, err := conn.QueryContext(ctx, `SELECT name, mass, radius, orbit_distance, system_name FROM planets ORDER BY id`)
		if err != nil {
			return nil, fmt.Errorf("query planets: %w", err)
		}
		defer prows.Close()

		for prows.Next() {
			var systemName string
			p, err := scanPlanet(prows, &systemName)
			if err != nil {
				return nil, err
			}
			if i, ok := byName[systemName]; ok {
				out[i].AddPlanet(p)
			}
		}
		return out, prows.Err()
	})
	if err != nil {
		return nil, apperr.Storage("find all", err)
	}
	return systems, nil
}

// FindByName returns the system with exactly this name, or nil when absent.
func (r *Repository) FindByName(ctx context.Context, name string) (*models.StarSystem, error) {
	sys, err := store.WithConn(ctx, r.store, func(conn *sql.Conn) (*models.StarSystem, error) {
		row := conn.QueryRowContext(ctx, `SELECT name, spectral_type, distance_ly FROM star_systems WHERE name = ?`, name)
		sys, err := scanSystem(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		rows, err := conn.QueryContext(ctx, `SELECT name, mass, radius, orbit_distance, system_name FROM planets WHERE system_name = ? ORDER BY id`, name)
		if err != nil {
			return nil, fmt.Errorf("query planets: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var systemName string
			p, err := scanPlanet(rows, &systemName)
			if err != nil {
				return nil, err
			}
			sys.AddPlanet(p)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return &sys, nil
	})
	if err != nil {
		return nil, apperr.Storage("find by name", err)
	}
	return sys, nil
}

// Count returns the number of stored systems.
func (r *Repository) Count(ctx context.Context) (int, error) {
	n, err := store.WithConn(ctx, r.store, func(conn *sql.Conn) (int, error) {
		var n int
		err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM star_systems`).Scan(&n)
		return n, err
	})
	return n, apperr.Storage("count", err)
}

// DeleteAll removes every planet and system. It is irreversible.
func (r *Repository) DeleteAll(ctx context.Context) error {
	_, err := store.WithTx(ctx, r.store, func(tx *sql.Tx) (struct{}, error) {
		if _, err := tx.ExecContext(ctx, `DELETE FROM planets`); err != nil {
			return struct{}{}, fmt.Errorf("delete planets: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM star_systems`); err != nil {
			return struct{}{}, fmt.Errorf("delete systems: %w", err)
		}
		return struct{}{}, nil
	})
	return apperr.Storage("delete all", err)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSystem(s scanner) (models.StarSystem, error) {
	var (
		name     string
		spectral sql.NullString
		distance sql.NullFloat64
	)
	if err := s.Scan(&name, &spectral, &distance); err != nil {
		return models.StarSystem{}, err
	}
	sys := models.NewStarSystem(name)
	if spectral.Valid && spectral.String != "" {
		sys.SpectralType = spectral.String
	}
	sys.DistanceLY = distance.Float64
	return sys, nil
}

func scanPlanet(s scanner, systemName *string) (models.Planet, error) {
	var (
		p                   models.Planet
		mass, radius, orbit sql.NullFloat64
	)
	if err := s.Scan(&p.Name, &mass, &radius, &orbit, systemName); err != nil {
		return p, err
	}
	p.Mass = mass.Float64
	p.Radius = radius.Float64
	p.OrbitDistance = orbit.Float64
	return p, nil
}
