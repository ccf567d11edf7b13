package sqlite

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"chandana/internal/domain"
)

// DefaultPath keeps the load history in memory for the life of the process.
const DefaultPath = "file:chandana?mode=memory&cache=shared"

type LoadEvent = domain.LoadEvent

func InitDB(path string) (*sql.DB, error) {
	if path == "" {
		path = DefaultPath
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// A shared in-memory database lives only while a connection is open.
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	schema := `
	CREATE TABLE IF NOT EXISTS load_events (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		snapshot_id TEXT NOT NULL,
		dataset     TEXT NOT NULL,
		origin      TEXT NOT NULL,
		row_count   INTEGER NOT NULL DEFAULT 0,
		warnings    TEXT DEFAULT '',
		loaded_at   DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_load_events_loaded_at ON load_events(loaded_at);
	CREATE INDEX IF NOT EXISTS idx_load_events_snapshot ON load_events(snapshot_id);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// InsertLoadEvents stores loaded_at in UTC so that the text comparisons in
// the queries below order rows by instant whatever zone the caller used.
func InsertLoadEvents(db *sql.DB, events []LoadEvent) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO load_events (snapshot_id, dataset, origin, row_count, warnings, loaded_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, e := range events {
		if _, err := stmt.Exec(e.SnapshotID, e.Dataset, string(e.Origin), e.Rows, e.Warnings, e.LoadedAt.UTC()); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, tx.Commit()
}

func GetRecentLoadEvents(db *sql.DB, limit int) ([]LoadEvent, error) {
	rows, err := db.Query(
		`SELECT id, snapshot_id, dataset, origin, row_count, warnings, loaded_at
		 FROM load_events
		 ORDER BY loaded_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LoadEvent
	for rows.Next() {
		var e LoadEvent
		var origin string
		if err := rows.Scan(&e.ID, &e.SnapshotID, &e.Dataset, &origin, &e.Rows, &e.Warnings, &e.LoadedAt); err != nil {
			return nil, err
		}
		e.Origin = domain.Origin(origin)
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountFallbacksSince counts synthetic substitutions since the given time.
func CountFallbacksSince(db *sql.DB, since time.Time) (int, error) {
	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM load_events WHERE origin = ? AND loaded_at >= ?`,
		string(domain.OriginSynthetic), since.UTC(),
	).Scan(&count)
	return count, err
}
