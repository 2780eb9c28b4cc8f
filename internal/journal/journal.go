// Package journal persists a diagnostic trail of completed navigations
// and force-unlocks in SQLite. The coordinator never reads the journal
// back; it exists for operators and tests inspecting what a session did.
package journal

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/rs/xid"

	"github.com/jpelkonen/roam/pkg/api"
)

// Journal is an api.Observer backed by SQLite.
//
// It expects an *sql.DB that uses a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing the
// driver, e.g.:
//
//	import _ "modernc.org/sqlite"
type Journal struct {
	api.NoopObserver

	db  *sql.DB
	log *slog.Logger
}

// Ensure Journal implements Observer.
var _ api.Observer = (*Journal)(nil)

// Record is one journal row.
type Record struct {
	ID         string
	FromRoute  string
	ToRoute    string
	Duration   time.Duration
	Source     string
	Forced     bool
	RecordedAt time.Time
}

// New initializes the required schema in the given database and returns
// a new Journal. Write failures are logged through logger (nil means
// slog.Default()) and never propagate to the coordinator.
func New(db *sql.DB, logger *slog.Logger) (*Journal, error) {
	if logger == nil {
		logger = slog.Default()
	}
	j := &Journal{db: db, log: logger}
	if err := j.initSchema(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Journal) initSchema() error {
	_, err := j.db.Exec(`
		CREATE TABLE IF NOT EXISTS navigations (
			id TEXT PRIMARY KEY,
			from_route TEXT NOT NULL,
			to_route TEXT NOT NULL,
			duration_ns INTEGER NOT NULL,
			source TEXT NOT NULL,
			forced INTEGER NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
	)
	return err
}

// OnNavigationComplete records a finished transition.
func (j *Journal) OnNavigationComplete(from, to string, d time.Duration, source string) {
	j.insert(Record{
		ID:         xid.New().String(),
		FromRoute:  from,
		ToRoute:    to,
		Duration:   d,
		Source:     source,
		RecordedAt: time.Now().UTC(),
	})
}

// OnForceUnlock records a reset outside the normal completion path.
// The route pair is unknown by the time the reset lands, so only the
// source survives.
func (j *Journal) OnForceUnlock(source string) {
	j.insert(Record{
		ID:         xid.New().String(),
		Source:     source,
		Forced:     true,
		RecordedAt: time.Now().UTC(),
	})
}

func (j *Journal) insert(rec Record) {
	forced := 0
	if rec.Forced {
		forced = 1
	}
	_, err := j.db.Exec(`
		INSERT INTO navigations (id, from_route, to_route, duration_ns, source, forced, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.FromRoute,
		rec.ToRoute,
		rec.Duration.Nanoseconds(),
		rec.Source,
		forced,
		rec.RecordedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		j.log.Error("journal_insert_failed", slog.Any("error", err))
	}
}

// Recent returns up to n records, newest first.
func (j *Journal) Recent(ctx context.Context, n int) ([]Record, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, from_route, to_route, duration_ns, source, forced, recorded_at
		FROM navigations
		ORDER BY rowid DESC
		LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var (
			rec        Record
			durationNs int64
			forced     int
			recordedAt string
		)
		if err := rows.Scan(&rec.ID, &rec.FromRoute, &rec.ToRoute, &durationNs, &rec.Source, &forced, &recordedAt); err != nil {
			return nil, err
		}
		rec.Duration = time.Duration(durationNs)
		rec.Forced = forced == 1
		if t, err := time.Parse(time.RFC3339Nano, recordedAt); err == nil {
			rec.RecordedAt = t
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
