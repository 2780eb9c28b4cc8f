package api

import (
	"context"
	"log/slog"
	"time"
)

// Observer receives callbacks from the coordinator for logging and
// diagnostics.
//
// Implementations should be fast and non-blocking; heavy work should be
// done asynchronously so as not to delay navigation.
type Observer interface {
	// OnNavigationStart is called once the lock is acquired, before the
	// cleanup protocol runs.
	OnNavigationStart(from, to string)

	// OnNavigationQueued is called when a request arrives while locked
	// and is put on the wait queue.
	OnNavigationQueued(from, to string)

	// OnNavigationComplete is called when a transition finishes.
	// source tags the caller that signalled completion.
	OnNavigationComplete(from, to string, duration time.Duration, source string)

	// OnCleanupFinished is called after the cleanup protocol for a
	// route has run, regardless of individual outcomes.
	OnCleanupFinished(summary CleanupSummary, duration time.Duration)

	// OnResourcesAborted is called after an abort sweep, with the
	// number of media elements stopped and tokens fired.
	OnResourcesAborted(media, requests int, source string)

	// OnForceUnlock is called whenever the coordinator resets to idle
	// outside the normal completion path.
	OnForceUnlock(source string)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnNavigationStart(from, to string)                                    {}
func (NoopObserver) OnNavigationQueued(from, to string)                                   {}
func (NoopObserver) OnNavigationComplete(from, to string, d time.Duration, source string) {}
func (NoopObserver) OnCleanupFinished(summary CleanupSummary, d time.Duration)            {}
func (NoopObserver) OnResourcesAborted(media, requests int, source string)                {}
func (NoopObserver) OnForceUnlock(source string)                                          {}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnNavigationStart(from, to string) {
	for _, o := range c.observers {
		o.OnNavigationStart(from, to)
	}
}

func (c *CompositeObserver) OnNavigationQueued(from, to string) {
	for _, o := range c.observers {
		o.OnNavigationQueued(from, to)
	}
}

func (c *CompositeObserver) OnNavigationComplete(from, to string, d time.Duration, source string) {
	for _, o := range c.observers {
		o.OnNavigationComplete(from, to, d, source)
	}
}

func (c *CompositeObserver) OnCleanupFinished(summary CleanupSummary, d time.Duration) {
	for _, o := range c.observers {
		o.OnCleanupFinished(summary, d)
	}
}

func (c *CompositeObserver) OnResourcesAborted(media, requests int, source string) {
	for _, o := range c.observers {
		o.OnResourcesAborted(media, requests, source)
	}
}

func (c *CompositeObserver) OnForceUnlock(source string) {
	for _, o := range c.observers {
		o.OnForceUnlock(source)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs navigation lifecycle
// events using the provided slog.Logger. If logger is nil,
// slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnNavigationStart(from, to string) {
	o.Logger.Info("navigation_start",
		slog.String("from", from),
		slog.String("to", to),
	)
}

func (o *LoggingObserver) OnNavigationQueued(from, to string) {
	o.Logger.Debug("navigation_queued",
		slog.String("from", from),
		slog.String("to", to),
	)
}

func (o *LoggingObserver) OnNavigationComplete(from, to string, d time.Duration, source string) {
	o.Logger.Info("navigation_complete",
		slog.String("from", from),
		slog.String("to", to),
		slog.Duration("duration", d),
		slog.String("source", source),
	)
}

func (o *LoggingObserver) OnCleanupFinished(summary CleanupSummary, d time.Duration) {
	level := slog.LevelDebug
	if summary.Failed > 0 || summary.TimedOut > 0 {
		level = slog.LevelWarn
	}
	o.Logger.Log(context.Background(), level, "cleanup_finished",
		slog.String("route", summary.Route),
		slog.Int("total", summary.Total),
		slog.Int("succeeded", summary.Succeeded),
		slog.Int("failed", summary.Failed),
		slog.Int("timed_out", summary.TimedOut),
		slog.Duration("duration", d),
		slog.Any("errors", summary.Errors),
	)
}

func (o *LoggingObserver) OnResourcesAborted(media, requests int, source string) {
	o.Logger.Debug("resources_aborted",
		slog.Int("media", media),
		slog.Int("requests", requests),
		slog.String("source", source),
	)
}

func (o *LoggingObserver) OnForceUnlock(source string) {
	o.Logger.Warn("force_unlock",
		slog.String("source", source),
	)
}
