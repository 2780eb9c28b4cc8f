// Package roam coordinates page transitions inside a long-lived
// single-page session.
//
// Every transition can leave behind in-flight network requests, playing
// media, timers, and registered teardown work; left unmanaged these
// cause crashes, stale views, and resource leaks. Roam centralizes that
// bookkeeping in one coordinator that serializes transitions, runs
// bounded cleanup protocols between them, and recovers on its own from
// abandoned locks and cache-restored page instances.
//
// # Core Concepts
//
// The programming model is intentionally small:
//
//  1. Coordinator
//  2. Cleanups
//  3. Abort tokens and media handles
//  4. Lifecycle adapter
//  5. Listeners and observers
//
// # Coordinator
//
// The Coordinator owns the navigation state machine. A transition moves
// through three phases: idle, preparing (lock held, cleanup and abort
// protocols running), and transitioning (the caller performs the view
// swap). Requests that arrive while the lock is held are queued in a
// small bounded FIFO rather than rejected; requests to the destination
// already in flight collapse into it; same-route requests always pass.
//
//	nav := roam.New()
//
//	ok, err := nav.BeginNavigation(ctx, "/feed", "/profile")
//	if ok && err == nil {
//	    swapView("/profile")
//	    nav.CompleteNavigation("router")
//	}
//
// The coordinator guarantees it eventually unlocks even if a caller
// never completes: a lock past its timeout is force-released, and a
// lock past the staleness threshold is reclaimed by the next request.
//
// # Cleanups
//
// View components register teardown callbacks for the route they are
// mounted on, or globally for every transition. Cleanups run
// concurrently during the preparing phase, each raced against a
// per-cleanup timeout; failures and timeouts are counted and logged but
// never block the navigation.
//
//	unregister := nav.RegisterCleanup("/feed", func(ctx context.Context) error {
//	    return stopFeedPolling(ctx)
//	})
//	defer unregister()
//
// # Abort tokens and media handles
//
// Coordinator.NewAbortToken returns a cancellation token whose context
// is cancelled en masse when a route is left. RegisterMedia enrolls a
// playable element so it is paused and released by the same sweep. Both
// pools are tracking-only; ownership stays with the caller.
//
// # Lifecycle adapter
//
// Browser cache restoration can resurrect a frozen page instance with
// stale coordinator state inside it. The coordinator takes a
// LifecycleAdapter at construction: its resume signal force-unlocks,
// its suspend signal stops resources defensively. NoopAdapter is the
// default; ManualAdapter suits tests and non-browser hosts.
//
// # Listeners and observers
//
// Subscribe attaches a listener that receives an immutable state
// snapshot on every change, suitable for loading indicators. The
// Observer interface receives typed lifecycle events; LoggingObserver
// logs them through log/slog, and NewSQLiteJournal records them in a
// SQLite table for diagnostics.
package roam
