package api

import "context"

// CleanupFunc is a caller-supplied teardown callback tied to a route or
// to the global scope. It may block; the context carries the per-cleanup
// deadline and should be honored by anything long-running inside. A
// panic inside a CleanupFunc is recovered and counted as a failure.
type CleanupFunc func(ctx context.Context) error

// CleanupOutcome tags the result of one cleanup execution.
type CleanupOutcome int

const (
	CleanupSucceeded CleanupOutcome = iota
	CleanupFailed
	CleanupTimedOut
)

func (o CleanupOutcome) String() string {
	switch o {
	case CleanupSucceeded:
		return "succeeded"
	case CleanupFailed:
		return "failed"
	case CleanupTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// CleanupSummary aggregates the outcome of one cleanup protocol run.
// It is diagnostic only: a failing or timed-out cleanup never blocks the
// navigation that triggered it.
type CleanupSummary struct {
	Route     string
	Total     int
	Succeeded int
	Failed    int
	TimedOut  int

	// Errors holds up to Config.MaxErrorMessages error strings from
	// failed entries, in completion order.
	Errors []string
}
