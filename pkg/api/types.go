package api

import (
	"log/slog"
	"time"
)

// Phase describes where a navigation is in its lifecycle.
type Phase string

const (
	// PhaseIdle means no transition is in progress. This is the initial
	// and terminal phase.
	PhaseIdle Phase = "idle"

	// PhasePreparing means the lock is held and the cleanup/abort
	// protocol for the route being left is running.
	PhasePreparing Phase = "preparing"

	// PhaseTransitioning means preparation finished and the caller is
	// now performing the actual view swap.
	PhaseTransitioning Phase = "transitioning"
)

// State is an immutable snapshot of the coordinator's navigation state.
//
// At most one non-idle State exists at any time. FromRoute and ToRoute
// are either both set or both empty.
type State struct {
	Phase     Phase
	FromRoute string
	ToRoute   string

	// StartedAt is when the current transition began. Zero when idle.
	StartedAt time.Time

	// Locked is true whenever Phase != PhaseIdle.
	Locked bool

	// CompletionSource tags the caller that triggered the most recent
	// completion or reset. Diagnostic only.
	CompletionSource string
}

// Config describes how to construct a Coordinator. The zero value is
// usable; every unset field falls back to the default listed below.
type Config struct {
	// LockTimeout is the upper bound on how long a single transition may
	// hold the lock before the coordinator force-unlocks on its own.
	// Default 10s.
	LockTimeout time.Duration

	// LockStaleAfter is the lock age past which an incoming
	// BeginNavigation treats the holder as abandoned and force-unlocks
	// instead of queueing. Default 8s.
	LockStaleAfter time.Duration

	// CleanupTimeout bounds each individual cleanup callback.
	// Default 3s.
	CleanupTimeout time.Duration

	// QueueSize bounds the number of pending transition requests held
	// while the lock is taken. Default 5.
	QueueSize int

	// QueueExpiry is how long a queued request may wait before it is
	// discarded on drain. It should be longer than LockStaleAfter; a
	// queued request is not at risk of deadlock. Default 15s.
	QueueExpiry time.Duration

	// CompletionDebounce is the window within which duplicate
	// CompleteNavigation calls collapse into one. Default 50ms.
	CompletionDebounce time.Duration

	// MaxListeners caps the subscriber list; beyond it the oldest
	// listener is evicted. Default 16.
	MaxListeners int

	// MaxErrorMessages caps the error list carried by a CleanupSummary.
	// Default 5.
	MaxErrorMessages int

	// AbortSweepThreshold is the abort-token pool size past which token
	// creation opportunistically sweeps out already-fired tokens.
	// Default 32.
	AbortSweepThreshold int

	// Logger enables structured logging of lifecycle events through a
	// LoggingObserver. Nil disables logging.
	Logger *slog.Logger

	// Observer receives typed lifecycle callbacks. Nil means none; use
	// NewCompositeObserver to attach several.
	Observer Observer

	// Lifecycle supplies page suspend/resume signals. Nil defaults to
	// NoopAdapter.
	Lifecycle LifecycleAdapter
}

// Default configuration values applied by WithDefaults.
const (
	DefaultLockTimeout         = 10 * time.Second
	DefaultLockStaleAfter      = 8 * time.Second
	DefaultCleanupTimeout      = 3 * time.Second
	DefaultQueueSize           = 5
	DefaultQueueExpiry         = 15 * time.Second
	DefaultCompletionDebounce  = 50 * time.Millisecond
	DefaultMaxListeners        = 16
	DefaultMaxErrorMessages    = 5
	DefaultAbortSweepThreshold = 32
)

// WithDefaults returns a copy of cfg with every unset field replaced by
// its default value.
func (c Config) WithDefaults() Config {
	if c.LockTimeout <= 0 {
		c.LockTimeout = DefaultLockTimeout
	}
	if c.LockStaleAfter <= 0 {
		c.LockStaleAfter = DefaultLockStaleAfter
	}
	if c.CleanupTimeout <= 0 {
		c.CleanupTimeout = DefaultCleanupTimeout
	}
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	if c.QueueExpiry <= 0 {
		c.QueueExpiry = DefaultQueueExpiry
	}
	if c.CompletionDebounce <= 0 {
		c.CompletionDebounce = DefaultCompletionDebounce
	}
	if c.MaxListeners <= 0 {
		c.MaxListeners = DefaultMaxListeners
	}
	if c.MaxErrorMessages <= 0 {
		c.MaxErrorMessages = DefaultMaxErrorMessages
	}
	if c.AbortSweepThreshold <= 0 {
		c.AbortSweepThreshold = DefaultAbortSweepThreshold
	}
	if c.Lifecycle == nil {
		c.Lifecycle = NoopAdapter{}
	}
	return c
}

// MetricsSnapshot is an immutable snapshot of the coordinator's
// accumulated counters. Counters only grow; they reset on process
// restart, never at runtime.
type MetricsSnapshot struct {
	// TotalNavigations counts completed transitions.
	TotalNavigations int64

	// AverageNavigationTime is the running mean duration of completed
	// transitions. Zero until the first completion.
	AverageNavigationTime time.Duration

	// TotalCleanupTime is the accumulated wall time spent running
	// cleanup protocols.
	TotalCleanupTime time.Duration

	// AbortedRequests counts abort tokens fired by the coordinator.
	AbortedRequests int64

	// CleanupErrors counts cleanup callbacks that failed or timed out.
	CleanupErrors int64
}
