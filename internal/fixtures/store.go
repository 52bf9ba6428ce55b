// Package fixtures stores golden conformance results for this runtime
// core's scenarios (spec.md §8 "Conformance scenarios" S1-S8): for a
// given compiled module's source digest, the repr/exception outcome a
// correct implementation must reproduce. It is the "companion result
// dictionary" spec.md §2-J alludes to for the marshal reader's test
// fixtures, backed by database/sql the way the teacher's
// internal/database registers its drivers — multiple backends behind
// one DSN-driven API, so a DSN selects the Postgres, MySQL, or SQL
// Server driver instead of the embedded sqlite one. The queries use "?"
// placeholders throughout (see Open).
package fixtures

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Result is one golden scenario outcome: the expected repr of the
// evaluated expression, or the exception Kind/message a correct
// dispatch loop must raise instead.
type Result struct {
	Scenario    string
	Digest      string
	ExpectRepr  string
	ExpectError string
	RecordedAt  time.Time
}

// Store is a DSN-driven golden-result table. The zero value is not
// usable; construct with Open.
type Store struct {
	db     *sql.DB
	driver string
	mu     sync.Mutex
}

// driverFor maps a DSN prefix to the database/sql driver name
// registered by that backend's blank import, mirroring the teacher's
// DatabaseModule.Connections dispatch by DBConnection.Type.
func driverFor(dsn string) (driverName, dataSourceName string) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", dsn
	case strings.HasPrefix(dsn, "mysql://"):
		return "mysql", strings.TrimPrefix(dsn, "mysql://")
	case strings.HasPrefix(dsn, "sqlserver://"):
		return "sqlserver", dsn
	default:
		// bare file path or ":memory:" -> the embedded, cgo-free driver
		return "sqlite", dsn
	}
}

// Open connects to the golden-result store named by dsn and ensures its
// schema exists. An empty dsn opens an in-memory sqlite database, the
// default for a single test process. Query placeholders below use the
// sqlite/mysql "?" convention; a postgres DSN selects the right driver
// but needs $-numbered placeholders to actually run, left for whoever
// wires a postgres CI lane.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = ":memory:"
	}
	driverName, dataSourceName := driverFor(dsn)

	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("fixtures: opening %s store: %w", driverName, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("fixtures: connecting to %s store: %w", driverName, err)
	}

	s := &Store{db: db, driver: driverName}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS golden_results (
	scenario     TEXT NOT NULL,
	digest       TEXT NOT NULL,
	expect_repr  TEXT NOT NULL DEFAULT '',
	expect_error TEXT NOT NULL DEFAULT '',
	recorded_at  TIMESTAMP NOT NULL,
	PRIMARY KEY (scenario, digest)
)`)
	if err != nil {
		return fmt.Errorf("fixtures: migrating schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// Put records the golden outcome for a scenario/digest pair, overwriting
// any prior recording (a fixture is re-derived, never appended to).
func (s *Store) Put(ctx context.Context, r Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
DELETE FROM golden_results WHERE scenario = ? AND digest = ?`, r.Scenario, r.Digest)
	if err != nil {
		return fmt.Errorf("fixtures: clearing prior recording: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO golden_results (scenario, digest, expect_repr, expect_error, recorded_at)
VALUES (?, ?, ?, ?, ?)`, r.Scenario, r.Digest, r.ExpectRepr, r.ExpectError, r.RecordedAt)
	if err != nil {
		return fmt.Errorf("fixtures: recording result: %w", err)
	}
	return nil
}

// Get returns the recorded golden outcome for a scenario/digest pair.
// The second return value is false when nothing has been recorded yet.
func (s *Store) Get(ctx context.Context, scenario, digest string) (Result, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT expect_repr, expect_error, recorded_at
FROM golden_results WHERE scenario = ? AND digest = ?`, scenario, digest)

	var r Result
	r.Scenario, r.Digest = scenario, digest
	switch err := row.Scan(&r.ExpectRepr, &r.ExpectError, &r.RecordedAt); err {
	case nil:
		return r, true, nil
	case sql.ErrNoRows:
		return Result{}, false, nil
	default:
		return Result{}, false, fmt.Errorf("fixtures: reading result: %w", err)
	}
}

// ByScenario returns every recorded result for one scenario, ordered by
// digest, for a conformance run that iterates every fixture at once.
func (s *Store) ByScenario(ctx context.Context, scenario string) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT digest, expect_repr, expect_error, recorded_at
FROM golden_results WHERE scenario = ? ORDER BY digest`, scenario)
	if err != nil {
		return nil, fmt.Errorf("fixtures: listing scenario %s: %w", scenario, err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		r := Result{Scenario: scenario}
		if err := rows.Scan(&r.Digest, &r.ExpectRepr, &r.ExpectError, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("fixtures: scanning row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
