// Package coordinator implements the navigation lifecycle coordinator:
// a single-writer orchestrator that serializes page transitions, runs
// cleanup and abort protocols between them, and recovers from abandoned
// locks and cache-restored page instances.
package coordinator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jpelkonen/roam/pkg/api"
)

// Coordinator is the concrete api.Coordinator. One instance is
// constructed at application start and passed by reference to anything
// that needs it; all state is owned by the instance and mutated only
// through its methods.
type Coordinator struct {
	cfg api.Config
	log *slog.Logger
	obs api.Observer

	mu               sync.Mutex
	phase            api.Phase
	from, to         string
	startedAt        time.Time
	completionSource string
	completing       bool
	lastCompleted    time.Time
	lockGuard        *time.Timer
	gen              uint64 // lock generation, invalidates stale timeout guards

	cleanups *cleanupRegistry
	tokens   *tokenPool
	media    *mediaPool
	queue    *navQueue
	bus      *bus
	metrics  *metrics
}

var _ api.Coordinator = (*Coordinator)(nil)

// New constructs a Coordinator from cfg, filling unset fields with
// defaults and wiring the lifecycle adapter's resume/suspend hooks.
func New(cfg api.Config) *Coordinator {
	cfg = cfg.WithDefaults()

	obs := cfg.Observer
	if cfg.Logger != nil {
		obs = api.NewCompositeObserver(api.NewLoggingObserver(cfg.Logger), obs)
	} else if obs == nil {
		obs = api.NoopObserver{}
	}

	c := &Coordinator{
		cfg:      cfg,
		log:      cfg.Logger,
		obs:      obs,
		phase:    api.PhaseIdle,
		cleanups: newCleanupRegistry(),
		tokens:   newTokenPool(cfg.AbortSweepThreshold),
		media:    newMediaPool(cfg.Logger),
		queue:    newNavQueue(cfg.QueueSize),
		bus:      newBus(cfg.MaxListeners, cfg.Logger),
		metrics:  &metrics{},
	}

	// Restoring a frozen page instance means any in-flight bookkeeping
	// from before the freeze is stale; a page about to freeze gets its
	// resources stopped defensively without touching the lock.
	cfg.Lifecycle.OnResume(func() { c.ForceUnlock("cache-restore") })
	cfg.Lifecycle.OnSuspend(func() { c.AbortResources("page-hide") })

	return c
}

// BeginNavigation implements api.Coordinator.
func (c *Coordinator) BeginNavigation(ctx context.Context, from, to string) (bool, error) {
	// Same-route re-renders are never blocked and never lock.
	if from == to {
		return true, nil
	}

	for {
		c.mu.Lock()

		if c.phase != api.PhaseIdle {
			// Duplicate request to the in-flight destination collapses
			// into the existing transition.
			if c.to == to {
				c.mu.Unlock()
				return true, nil
			}

			// A lock older than the staleness threshold belongs to a
			// caller that forgot to complete; release it and retry.
			if time.Since(c.startedAt) > c.cfg.LockStaleAfter {
				state := c.resetLocked("stale-lock")
				c.mu.Unlock()
				c.obs.OnForceUnlock("stale-lock")
				c.bus.publish(state)
				continue
			}

			// Locked with a live transition to somewhere else: queue.
			req := newQueuedRequest(from, to)
			evicted := c.queue.push(req)
			c.mu.Unlock()

			if evicted != nil {
				evicted.resolve(false)
			}
			c.obs.OnNavigationQueued(from, to)

			select {
			case allowed := <-req.result:
				return allowed, nil
			case <-ctx.Done():
				req.abandon()
				return false, ctx.Err()
			}
		}

		// Lock free: acquire and run the preparation protocol.
		c.phase = api.PhasePreparing
		c.from, c.to = from, to
		c.startedAt = time.Now()
		c.gen++
		gen := c.gen
		c.lockGuard = time.AfterFunc(c.cfg.LockTimeout, func() {
			c.timeoutUnlock(gen)
		})
		state := c.stateLocked()
		c.mu.Unlock()

		c.obs.OnNavigationStart(from, to)
		c.bus.publish(state)

		c.prepare(from)

		// Advance to transitioning only if the lock is still ours; a
		// force-unlock during cleanup must not be overwritten. The
		// caller still proceeds with the swap either way.
		c.mu.Lock()
		if c.phase == api.PhasePreparing && c.gen == gen {
			c.phase = api.PhaseTransitioning
			state = c.stateLocked()
			c.mu.Unlock()
			c.bus.publish(state)
		} else {
			c.mu.Unlock()
		}
		return true, nil
	}
}

// prepare runs the cleanup protocol for the route being left, then
// force-stops tracked media and fires pooled abort tokens. Failures are
// folded into metrics and observers, never returned.
func (c *Coordinator) prepare(from string) {
	start := time.Now()
	summary := c.cleanups.run(from, c.cfg.CleanupTimeout, c.cfg.MaxErrorMessages)
	d := time.Since(start)
	c.metrics.recordCleanup(summary, d)
	c.obs.OnCleanupFinished(summary, d)

	stopped := c.media.stopAll()
	aborted := c.tokens.abortAll()
	c.metrics.recordAborts(aborted)
	c.obs.OnResourcesAborted(stopped, aborted, "navigation")
}

// CompleteNavigation implements api.Coordinator.
func (c *Coordinator) CompleteNavigation(source string) {
	c.mu.Lock()

	now := time.Now()
	// Duplicate completion signals from multiple observers arrive in
	// bursts; collapse anything inside the debounce window.
	if !c.lastCompleted.IsZero() && now.Sub(c.lastCompleted) < c.cfg.CompletionDebounce {
		c.mu.Unlock()
		return
	}
	if c.phase == api.PhaseIdle || c.completing {
		c.mu.Unlock()
		return
	}

	c.completing = true
	duration := now.Sub(c.startedAt)
	from, to := c.from, c.to
	c.stopGuardLocked()
	c.phase = api.PhaseIdle
	c.from, c.to = "", ""
	c.startedAt = time.Time{}
	c.completionSource = source
	c.lastCompleted = now
	c.gen++
	state := c.stateLocked()
	c.mu.Unlock()

	c.metrics.recordNavigation(duration)
	c.obs.OnNavigationComplete(from, to, duration, source)
	c.bus.publish(state)

	c.mu.Lock()
	c.completing = false
	c.mu.Unlock()

	c.scheduleDrain()
}

// ForceUnlock implements api.Coordinator.
func (c *Coordinator) ForceUnlock(source string) {
	c.mu.Lock()
	state := c.resetLocked(source)
	c.mu.Unlock()

	c.obs.OnForceUnlock(source)
	c.bus.publish(state)
	c.scheduleDrain()
}

// timeoutUnlock is the lock-timeout guard body. The generation check
// makes a guard that lost the race against completion a no-op instead
// of resetting the next transition.
func (c *Coordinator) timeoutUnlock(gen uint64) {
	c.mu.Lock()
	if c.gen != gen || c.phase == api.PhaseIdle {
		c.mu.Unlock()
		return
	}
	state := c.resetLocked("lock-timeout")
	c.mu.Unlock()

	c.obs.OnForceUnlock("lock-timeout")
	c.bus.publish(state)
	c.scheduleDrain()
}

// resetLocked restores the full idle state: every field, not a partial
// merge, so no stale route leaks into the next transition. It also
// clears the completion re-entrancy guard. Caller holds c.mu.
func (c *Coordinator) resetLocked(source string) api.State {
	c.stopGuardLocked()
	c.phase = api.PhaseIdle
	c.from, c.to = "", ""
	c.startedAt = time.Time{}
	c.completing = false
	c.completionSource = source
	c.gen++
	return c.stateLocked()
}

func (c *Coordinator) stopGuardLocked() {
	if c.lockGuard != nil {
		c.lockGuard.Stop()
		c.lockGuard = nil
	}
}

// scheduleDrain processes the queue on a fresh goroutine rather than
// recursing, so long runs of queued items cannot grow the call stack.
func (c *Coordinator) scheduleDrain() {
	go c.drainQueue()
}

// drainQueue pops the head of the queue. Abandoned and expired entries
// are discarded (resolved as not allowed); the first live entry is
// re-run through the full BeginNavigation protocol and its caller's
// pending result resolved with the outcome.
func (c *Coordinator) drainQueue() {
	for {
		req := c.queue.pop()
		if req == nil {
			return
		}
		if req.abandoned() {
			continue
		}
		if time.Since(req.enqueuedAt) > c.cfg.QueueExpiry {
			if c.log != nil {
				c.log.Debug("queued_navigation_expired",
					slog.String("id", req.id),
					slog.String("to", req.to),
				)
			}
			req.resolve(false)
			continue
		}

		allowed, err := c.BeginNavigation(context.Background(), req.from, req.to)
		req.resolve(allowed && err == nil)
		return
	}
}

// RegisterCleanup implements api.Coordinator.
func (c *Coordinator) RegisterCleanup(route string, fn api.CleanupFunc) func() {
	return c.cleanups.register(route, fn)
}

// RegisterGlobalCleanup implements api.Coordinator.
func (c *Coordinator) RegisterGlobalCleanup(fn api.CleanupFunc) func() {
	return c.cleanups.registerGlobal(fn)
}

// NewAbortToken implements api.Coordinator.
func (c *Coordinator) NewAbortToken() *api.AbortToken {
	return c.tokens.create()
}

// RegisterMedia implements api.Coordinator.
func (c *Coordinator) RegisterMedia(m api.Media) {
	c.media.register(m)
}

// AbortResources implements api.Coordinator. It runs the full resource
// stop without touching the lock: the page-suspend protocol, also
// usable as an emergency stop.
func (c *Coordinator) AbortResources(source string) {
	stopped := c.media.stopAll()
	aborted := c.tokens.abortAll()
	c.metrics.recordAborts(aborted)
	c.obs.OnResourcesAborted(stopped, aborted, source)
}

// Subscribe implements api.Coordinator.
func (c *Coordinator) Subscribe(l api.Listener) func() {
	return c.bus.subscribe(l)
}

// State implements api.Coordinator.
func (c *Coordinator) State() api.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Metrics implements api.Coordinator.
func (c *Coordinator) Metrics() api.MetricsSnapshot {
	return c.metrics.snapshot()
}

// QueueLen reports the number of pending queued requests. Diagnostic.
func (c *Coordinator) QueueLen() int {
	return c.queue.len()
}

func (c *Coordinator) stateLocked() api.State {
	return api.State{
		Phase:            c.phase,
		FromRoute:        c.from,
		ToRoute:          c.to,
		StartedAt:        c.startedAt,
		Locked:           c.phase != api.PhaseIdle,
		CompletionSource: c.completionSource,
	}
}
