// Package tdb is a local copy of the telemetry database tables needed to
// decode discrete MSIDs: the MSID list and their state codes.
package tdb

import (
	"context"
	"database/sql"
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/acisops/acispy/internal/monitoring"
	"github.com/acisops/acispy/internal/statecodes"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps a sqlite telemetry database.
type DB struct {
	*sql.DB
	logf monitoring.Logger
}

// Open opens (creating if needed) the database at path. Call MigrateUp
// before first use of a new file.
func Open(path string, logf monitoring.Logger) (*DB, error) {
	// modernc.org/sqlite applies _pragma parameters to every new connection.
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("tdb: open %s: %w", path, err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("tdb: open %s: %w", path, err)
	}
	return &DB{DB: sqlDB, logf: monitoring.OrDefault(logf)}, nil
}

func (db *DB) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("tdb: migrations source: %w", err)
	}
	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("tdb: sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("tdb: migrate instance: %w", err)
	}
	m.Log = migrateLogger{logf: db.logf}
	return m, nil
}

// MigrateUp applies all pending migrations.
func (db *DB) MigrateUp() error {
	m, err := db.newMigrate()
	if err != nil {
		return err
	}
	// Closing m would close the shared connection.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("tdb: migration up failed: %w", err)
	}
	return nil
}

// MigrateVersion returns the applied schema version; 0 when none.
func (db *DB) MigrateVersion() (version uint, dirty bool, err error) {
	m, err := db.newMigrate()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

type migrateLogger struct {
	logf monitoring.Logger
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.logf("[migrate] "+format, v...)
}

func (migrateLogger) Verbose() bool { return false }

// MSID is a row of the msids table.
type MSID struct {
	Name          string
	Description   string
	TechnicalName string
}

// AddMSID inserts or updates an MSID.
func (db *DB) AddMSID(ctx context.Context, m MSID) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO msids (msid, description, technical_name) VALUES (?, ?, ?)
		ON CONFLICT(msid) DO UPDATE SET description = excluded.description,
			technical_name = excluded.technical_name`,
		strings.ToUpper(m.Name), m.Description, m.TechnicalName)
	if err != nil {
		return fmt.Errorf("tdb: add msid %s: %w", m.Name, err)
	}
	return nil
}

// MSIDs lists every known MSID in name order.
func (db *DB) MSIDs(ctx context.Context) ([]MSID, error) {
	rows, err := db.QueryContext(ctx, `SELECT msid, description, technical_name FROM msids ORDER BY msid`)
	if err != nil {
		return nil, fmt.Errorf("tdb: list msids: %w", err)
	}
	defer rows.Close()
	var out []MSID
	for rows.Next() {
		var m MSID
		if err := rows.Scan(&m.Name, &m.Description, &m.TechnicalName); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// StateCode is a row of the state_codes table.
type StateCode struct {
	MSID         string
	StateCode    string
	LowRawCount  int
	HighRawCount int
}

// ImportStateCodesCSV loads state codes from CSV with a header row naming
// msid, state_code, low_raw_count and high_raw_count (high_raw_count may
// be omitted and defaults to the low count). Unknown MSIDs are added. The
// import runs in one transaction and returns the number of rows written.
func (db *DB) ImportStateCodesCSV(ctx context.Context, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("tdb: csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, need := range []string{"msid", "state_code", "low_raw_count"} {
		if _, ok := col[need]; !ok {
			return 0, fmt.Errorf("tdb: csv header lacks %s", need)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	n := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("tdb: csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		sc := StateCode{
			MSID:      strings.ToUpper(strings.TrimSpace(rec[col["msid"]])),
			StateCode: strings.TrimSpace(rec[col["state_code"]]),
		}
		if sc.LowRawCount, err = strconv.Atoi(strings.TrimSpace(rec[col["low_raw_count"]])); err != nil {
			return 0, fmt.Errorf("tdb: csv line %d: low_raw_count: %w", line, err)
		}
		sc.HighRawCount = sc.LowRawCount
		if i, ok := col["high_raw_count"]; ok && strings.TrimSpace(rec[i]) != "" {
			if sc.HighRawCount, err = strconv.Atoi(strings.TrimSpace(rec[i])); err != nil {
				return 0, fmt.Errorf("tdb: csv line %d: high_raw_count: %w", line, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO msids (msid) VALUES (?)`, sc.MSID); err != nil {
			return 0, fmt.Errorf("tdb: csv line %d: %w", line, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO state_codes (msid, state_code, low_raw_count, high_raw_count)
			VALUES (?, ?, ?, ?)`, sc.MSID, sc.StateCode, sc.LowRawCount, sc.HighRawCount); err != nil {
			return 0, fmt.Errorf("tdb: csv line %d: %w", line, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("tdb: commit: %w", err)
	}
	db.logf("tdb: imported %d state codes", n)
	return n, nil
}

// StateCodes returns the state codes of msid ordered by raw count. It
// returns statecodes.ErrUnknownMSID for an MSID that is not in the
// database and statecodes.ErrNoStateCodes for an analog MSID.
func (db *DB) StateCodes(ctx context.Context, msid string) ([]statecodes.Entry, error) {
	msid = strings.ToUpper(msid)
	var exists int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM msids WHERE msid = ?`, msid).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("tdb: lookup %s: %w", msid, err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", statecodes.ErrUnknownMSID, msid)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT state_code, low_raw_count FROM state_codes
		WHERE msid = ? ORDER BY low_raw_count, state_code`, msid)
	if err != nil {
		return nil, fmt.Errorf("tdb: state codes %s: %w", msid, err)
	}
	defer rows.Close()
	var out []statecodes.Entry
	for rows.Next() {
		var e statecodes.Entry
		if err := rows.Scan(&e.StateCode, &e.LowRawCount); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", statecodes.ErrNoStateCodes, msid)
	}
	return out, nil
}

var _ statecodes.Lookup = (*DB)(nil)
