package api

import "context"

// Listener receives state snapshots from the coordinator's broadcast
// bus. Listeners run synchronously on the calling goroutine; a panicking
// listener is recovered and logged without disturbing the others.
type Listener func(State)

// Coordinator serializes page transitions inside a long-lived session.
//
// All methods are safe for concurrent use. Nothing here throws past the
// call boundary under normal operation: failure modes resolve to a
// boolean outcome, a logged diagnostic, or a metrics increment. The
// coordinator guarantees it eventually unlocks (via the lock-timeout
// guard) even if a caller never calls CompleteNavigation.
type Coordinator interface {
	// BeginNavigation requests a transition from one route to another.
	// It returns true when the caller may proceed with the view swap.
	//
	// Semantics:
	//   - from == to always returns true without touching the lock.
	//   - A request to the destination already in flight returns true
	//     (collapsed into the in-flight transition).
	//   - If the lock is older than LockStaleAfter it is force-released
	//     and the new request proceeds.
	//   - Otherwise, while locked, the request is queued; the call
	//     blocks until the queued request is processed, evicted, or
	//     expired. ctx bounds the caller's willingness to wait;
	//     cancellation returns false with ctx.Err().
	BeginNavigation(ctx context.Context, from, to string) (bool, error)

	// CompleteNavigation signals that the view swap finished. It is
	// idempotent, debounced within CompletionDebounce, and guarded
	// against re-entrant invocation. source is a diagnostic tag.
	CompleteNavigation(source string)

	// ForceUnlock unconditionally resets the coordinator to a full idle
	// state, never a partial merge, then drains the queue. Used for
	// stale-lock recovery, emergency recovery, and cache-restoration
	// recovery.
	ForceUnlock(source string)

	// RegisterCleanup adds a teardown callback for route. The callback
	// runs once during the next transition away from route and is then
	// dropped; re-registration is the caller's responsibility. The
	// returned function unregisters the callback early.
	RegisterCleanup(route string, fn CleanupFunc) (unregister func())

	// RegisterGlobalCleanup adds a teardown callback that runs on every
	// transition and persists until unregistered.
	RegisterGlobalCleanup(fn CleanupFunc) (unregister func())

	// NewAbortToken returns a cancellation token enrolled in the abort
	// pool. The coordinator fires every pooled token as part of the
	// preparing phase; a token removes itself from the pool the moment
	// it fires, whoever fired it.
	NewAbortToken() *AbortToken

	// RegisterMedia enrolls a playable element so the coordinator can
	// force-stop it when leaving a route. The coordinator holds a
	// non-owning reference only.
	RegisterMedia(m Media)

	// AbortResources force-stops all tracked media and fires all pooled
	// abort tokens without touching the lock. This is the page-suspend
	// protocol; the page may resume normally afterwards.
	AbortResources(source string)

	// Subscribe adds a listener for state snapshots and returns its
	// unsubscribe function. When the listener count exceeds
	// MaxListeners the oldest listener is evicted.
	Subscribe(l Listener) (unsubscribe func())

	// State returns an immutable snapshot of the navigation state.
	State() State

	// Metrics returns an immutable snapshot of accumulated counters.
	Metrics() MetricsSnapshot
}
