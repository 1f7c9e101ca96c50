package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func testStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	f, err := os.CreateTemp("", "starsys-store-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	s, err := Open(f.Name(), opts...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func tableExists(t *testing.T, s *Store, name string) bool {
	t.Helper()
	var n int
	err := s.db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	if err != nil {
		t.Fatalf("sqlite_master: %v", err)
	}
	return n == 1
}

func TestSchemaCreation(t *testing.T) {
	s := testStore(t)
	for _, table := range []string{"star_systems", "planets"} {
		if !tableExists(t, s, table) {
			t.Errorf("table %s missing", table)
		}
	}
	var n int
	if err := s.db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'index' AND name IN ('idx_star_systems_distance', 'idx_star_systems_spectral_type')`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 secondary indexes, got %d", n)
	}
}

func TestInitializeSchemaIdempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	if _, err := s.db.Exec(`INSERT INTO star_systems (name, spectral_type, distance_ly) VALUES ('Sol', 'G2V', 0)`); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := s.InitializeSchema(ctx); err != nil {
			t.Fatalf("InitializeSchema #%d: %v", i, err)
		}
	}
	var n int
	_ = s.db.QueryRow(`SELECT count(*) FROM star_systems`).Scan(&n)
	if n != 1 {
		t.Errorf("data lost on re-initialize: %d rows", n)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = s.db.Exec(`INSERT INTO star_systems (name) VALUES ('Sol')`)
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	var n int
	_ = s.db.QueryRow(`SELECT count(*) FROM star_systems`).Scan(&n)
	if n != 1 {
		t.Errorf("rows after reopen = %d", n)
	}
}

func TestForeignKeyEnforced(t *testing.T) {
	s := testStore(t)
	_, err := s.db.Exec(`INSERT INTO planets (name, mass, radius, orbit_distance, system_name) VALUES ('p', 1, 1, 1, 'missing')`)
	if err == nil {
		t.Fatal("expected foreign key violation for orphan planet")
	}
}

func TestCascadeDelete(t *testing.T) {
	s := testStore(t)
	mustExec(t, s, `INSERT INTO star_systems (name) VALUES ('Sol')`)
	mustExec(t, s, `INSERT INTO planets (name, system_name) VALUES ('Earth', 'Sol')`)
	mustExec(t, s, `DELETE FROM star_systems WHERE name = 'Sol'`)

	var n int
	_ = s.db.QueryRow(`SELECT count(*) FROM planets`).Scan(&n)
	if n != 0 {
		t.Errorf("planets after cascade = %d, want 0", n)
	}
}

func TestPlanetUniquePerSystem(t *testing.T) {
	s := testStore(t)
	mustExec(t, s, `INSERT INTO star_systems (name) VALUES ('A'), ('B')`)
	mustExec(t, s, `INSERT INTO planets (name, system_name) VALUES ('b', 'A')`)
	mustExec(t, s, `INSERT INTO planets (name, system_name) VALUES ('b', 'B')`)
	if _, err := s.db.Exec(`INSERT INTO planets (name, system_name) VALUES ('b', 'A')`); err == nil {
		t.Error("expected unique violation on (name, system_name)")
	}
}

func TestEmptyNamesRejected(t *testing.T) {
	s := testStore(t)
	if _, err := s.db.Exec(`INSERT INTO star_systems (name) VALUES ('')`); err == nil {
		t.Error("empty system name should violate check constraint")
	}
	mustExec(t, s, `INSERT INTO star_systems (name) VALUES ('Sol')`)
	if _, err := s.db.Exec(`INSERT INTO planets (name, system_name) VALUES ('', 'Sol')`); err == nil {
		t.Error("empty planet name should violate check constraint")
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := WithTx(ctx, s, func(tx *sql.Tx) (struct{}, error) {
		if _, err := tx.ExecContext(ctx, `INSERT INTO star_systems (name) VALUES ('Sol')`); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	var n int
	_ = s.db.QueryRow(`SELECT count(*) FROM star_systems`).Scan(&n)
	if n != 0 {
		t.Errorf("rolled back insert still visible: %d rows", n)
	}
}

func TestWithTxCommits(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	got, err := WithTx(ctx, s, func(tx *sql.Tx) (int64, error) {
		res, err := tx.ExecContext(ctx, `INSERT INTO star_systems (name) VALUES ('Sol'), ('Alpha Centauri')`)
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
	if got != 2 {
		t.Errorf("rows affected = %d", got)
	}
}

func TestWithConnReleasesConnection(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	boom := errors.New("boom")
	for i := 0; i < 20; i++ {
		_, _ = WithConn(ctx, s, func(conn *sql.Conn) (int, error) {
			return 0, boom
		})
	}
	if inUse := s.db.Stats().InUse; inUse != 0 {
		t.Errorf("connections still in use: %d", inUse)
	}
}

func TestWithConnCancelledContext(t *testing.T) {
	s := testStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := WithConn(ctx, s, func(conn *sql.Conn) (int, error) { return 1, nil })
	if err == nil {
		t.Error("expected error acquiring a connection with a cancelled context")
	}
}

func TestPureGoDriver(t *testing.T) {
	s := testStore(t, WithDriver(DriverPureGo))
	if s.Driver() != DriverPureGo {
		t.Fatalf("driver = %q", s.Driver())
	}
	if !tableExists(t, s, "planets") {
		t.Error("schema not applied with pure-Go driver")
	}
	if _, err := s.db.Exec(`INSERT INTO planets (name, system_name) VALUES ('p', 'missing')`); err == nil {
		t.Error("foreign keys should be enforced with pure-Go driver")
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "x.db"), WithDriver("postgres")); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestMemoryStore(t *testing.T) {
	s, err := Open(memoryPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	mustExec(t, s, `INSERT INTO star_systems (name) VALUES ('Sol')`)
	var n int
	_ = s.db.QueryRow(`SELECT count(*) FROM star_systems`).Scan(&n)
	if n != 1 {
		t.Errorf("in-memory rows = %d", n)
	}
}

func mustExec(t *testing.T, s *Store, q string) {
	t.Helper()
	if _, err := s.db.Exec(q); err != nil {
		t.Fatalf("exec %q: %v", q, err)
	}
}
