package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/producer-intervals/internal/model"
)

// SQLiteStore implements Repository on modernc.org/sqlite. With the default
// ":memory:" DSN the table lives only as long as the process.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database for the given DSN.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS nominations (
	seq      INTEGER PRIMARY KEY,
	year     INTEGER NOT NULL,
	producer TEXT NOT NULL,
	winner   INTEGER NOT NULL,
	line     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_nominations_winner_year ON nominations(winner, year);
`

// Migrate creates the nominations table if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Load replaces the table contents inside a single transaction. The seq
// column preserves load order so ties on year stay stable.
func (s *SQLiteStore) Load(ctx context.Context, records []model.Record) error {
	if err := s.Migrate(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin load")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM nominations`); err != nil {
		return eris.Wrap(err, "sqlite: clear nominations")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO nominations (seq, year, producer, winner, line) VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close() //nolint:errcheck

	for i, r := range records {
		winner := 0
		if r.Winner {
			winner = 1
		}
		if _, err := stmt.ExecContext(ctx, i+1, r.Year, r.Producer, winner, r.Line); err != nil {
			return eris.Wrapf(err, "sqlite: insert producer %q year %d (line %d)", r.Producer, r.Year, r.Line)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit load")
}

// Winners returns winning rows ordered by year, then load order.
func (s *SQLiteStore) Winners(ctx context.Context) ([]model.WinEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT producer, year FROM nominations WHERE winner = 1 ORDER BY year, seq`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: select winners")
	}
	defer rows.Close() //nolint:errcheck

	events := []model.WinEvent{}
	for rows.Next() {
		var ev model.WinEvent
		if err := rows.Scan(&ev.Producer, &ev.Year); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan winner")
		}
		events = append(events, ev)
	}
	return events, eris.Wrap(rows.Err(), "sqlite: select winners iterate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
