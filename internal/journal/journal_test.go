package journal

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	// The in-memory database lives per connection.
	db.SetMaxOpenConns(1)
	return db
}

func TestJournalRecordsCompletions(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	j, err := New(db, nil)
	require.NoError(t, err)

	j.OnNavigationComplete("/feed", "/profile", 120*time.Millisecond, "router")
	j.OnNavigationComplete("/profile", "/watch", 80*time.Millisecond, "router")

	recs, err := j.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	newest := recs[0]
	require.Equal(t, "/profile", newest.FromRoute)
	require.Equal(t, "/watch", newest.ToRoute)
	require.Equal(t, 80*time.Millisecond, newest.Duration)
	require.Equal(t, "router", newest.Source)
	require.False(t, newest.Forced)
	require.False(t, newest.RecordedAt.IsZero())
}

func TestJournalRecordsForceUnlocks(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	j, err := New(db, nil)
	require.NoError(t, err)

	j.OnForceUnlock("cache-restore")

	recs, err := j.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.True(t, recs[0].Forced)
	require.Equal(t, "cache-restore", recs[0].Source)
	require.Empty(t, recs[0].FromRoute)
}

func TestJournalRecentLimit(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	j, err := New(db, nil)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		j.OnNavigationComplete("/a", "/b", time.Millisecond, "loop")
	}

	recs, err := j.Recent(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	// n <= 0 falls back to the default page size.
	recs, err = j.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, recs, 5)
}

func TestJournalSchemaIsIdempotent(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	_, err := New(db, nil)
	require.NoError(t, err)
	_, err = New(db, nil)
	require.NoError(t, err, "re-initializing the schema must not fail")
}
