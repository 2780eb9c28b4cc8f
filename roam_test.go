package roam

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// TestCoordinatorEndToEnd drives a full navigation cycle through the
// public API: cleanup hooks, abort tokens, listener notifications, and
// metrics all working together.
func TestCoordinatorEndToEnd(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	nav := NewWithConfig(Config{
		CompletionDebounce: time.Millisecond,
		Logger:             logger,
	})

	cleanupRan := make(chan struct{})
	nav.RegisterCleanup("/feed", func(ctx context.Context) error {
		close(cleanupRan)
		return nil
	})

	tok := nav.NewAbortToken()

	var phases []Phase
	unsubscribe := nav.Subscribe(func(s State) {
		phases = append(phases, s.Phase)
	})
	defer unsubscribe()

	ok, err := nav.BeginNavigation(context.Background(), "/feed", "/profile")
	require.NoError(t, err)
	require.True(t, ok)

	select {
	case <-cleanupRan:
	default:
		t.Fatal("route cleanup should have run during preparing")
	}
	require.True(t, tok.Fired(), "pooled token should be cancelled on departure")

	nav.CompleteNavigation("router")

	require.Equal(t, []Phase{PhasePreparing, PhaseTransitioning, PhaseIdle}, phases)

	m := nav.Metrics()
	require.Equal(t, int64(1), m.TotalNavigations)
	require.Equal(t, int64(1), m.AbortedRequests)
	require.Equal(t, int64(0), m.CleanupErrors)
}

// TestThrowingGlobalCleanupStillNavigates reproduces the contract that
// cleanup failure is never fatal: a global cleanup that always fails
// must not stop BeginNavigation from resolving true.
func TestThrowingGlobalCleanupStillNavigates(t *testing.T) {
	t.Parallel()

	nav := New()
	nav.RegisterGlobalCleanup(func(ctx context.Context) error {
		return errors.New("always fails")
	})

	ok, err := nav.BeginNavigation(context.Background(), "/a", "/b")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1), nav.Metrics().CleanupErrors)
}

// TestStaleLockRecoveryScenario: with a short lock staleness
// threshold, a caller that never completes does not wedge the
// coordinator.
func TestStaleLockRecoveryScenario(t *testing.T) {
	t.Parallel()

	nav := NewWithConfig(Config{
		LockStaleAfter: 100 * time.Millisecond,
		LockTimeout:    5 * time.Second,
	})
	ctx := context.Background()

	ok, err := nav.BeginNavigation(ctx, "/a", "/b")
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(150 * time.Millisecond)

	ok, err = nav.BeginNavigation(ctx, "/a", "/c")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "/c", nav.State().ToRoute)
}

// TestSQLiteJournalIntegration wires the journal observer into a live
// coordinator and reads the trail back.
func TestSQLiteJournalIntegration(t *testing.T) {
	t.Parallel()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	db.SetMaxOpenConns(1)

	jnl, err := NewSQLiteJournal(db, nil)
	require.NoError(t, err)

	nav := NewWithConfig(Config{
		Observer:           jnl,
		CompletionDebounce: time.Millisecond,
	})
	ctx := context.Background()

	ok, err := nav.BeginNavigation(ctx, "/feed", "/profile")
	require.NoError(t, err)
	require.True(t, ok)
	nav.CompleteNavigation("router")

	nav.ForceUnlock("emergency")

	recs, err := jnl.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.True(t, recs[0].Forced)
	require.Equal(t, "emergency", recs[0].Source)
	require.Equal(t, "/feed", recs[1].FromRoute)
	require.Equal(t, "/profile", recs[1].ToRoute)
}

// TestManualAdapterRecovery exercises the cache-restoration path from
// the public surface.
func TestManualAdapterRecovery(t *testing.T) {
	t.Parallel()

	adapter := &ManualAdapter{}
	nav := NewWithConfig(Config{Lifecycle: adapter})

	ok, err := nav.BeginNavigation(context.Background(), "/a", "/b")
	require.NoError(t, err)
	require.True(t, ok)

	adapter.Resume()

	state := nav.State()
	if state.Locked {
		t.Fatalf("expected unlocked state after cache restore, got %+v", state)
	}
	require.Equal(t, PhaseIdle, state.Phase)
	require.Empty(t, state.FromRoute)
	require.Empty(t, state.ToRoute)
}
