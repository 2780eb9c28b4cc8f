package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jpelkonen/roam/pkg/api"
)

// cleanupRegistry maps routes to teardown callbacks, plus a global set
// that runs on every transition. Route-scoped registrations are one-shot
// per cycle: executing them clears the route's set.
type cleanupRegistry struct {
	mu     sync.Mutex
	nextID int64
	routes map[string]map[int64]api.CleanupFunc
	global map[int64]api.CleanupFunc
}

func newCleanupRegistry() *cleanupRegistry {
	return &cleanupRegistry{
		routes: make(map[string]map[int64]api.CleanupFunc),
		global: make(map[int64]api.CleanupFunc),
	}
}

// register adds fn to the per-route set and returns its unregister
// closure. Unregistering after the set was executed (or cleared) is a
// no-op.
func (r *cleanupRegistry) register(route string, fn api.CleanupFunc) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.routes[route]
	if set == nil {
		set = make(map[int64]api.CleanupFunc)
		r.routes[route] = set
	}
	r.nextID++
	id := r.nextID
	set[id] = fn

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if set, ok := r.routes[route]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(r.routes, route)
			}
		}
	}
}

// registerGlobal adds fn to the global set, which persists across
// transitions until unregistered.
func (r *cleanupRegistry) registerGlobal(fn api.CleanupFunc) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	r.global[id] = fn

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.global, id)
	}
}

// take snapshots the combined list for route and clears the route set.
// Clearing happens at snapshot time so callbacks registered during the
// run belong to the next cycle.
func (r *cleanupRegistry) take(route string) []api.CleanupFunc {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.routes[route]
	fns := make([]api.CleanupFunc, 0, len(set)+len(r.global))
	for _, fn := range set {
		fns = append(fns, fn)
	}
	delete(r.routes, route)
	for _, fn := range r.global {
		fns = append(fns, fn)
	}
	return fns
}

// run executes every route-scoped and global cleanup for route
// concurrently, each bounded by timeout, and aggregates the outcomes.
// Failures and timeouts are diagnostic only; they never propagate to
// the navigation that triggered them.
func (r *cleanupRegistry) run(route string, timeout time.Duration, maxErrors int) api.CleanupSummary {
	fns := r.take(route)

	summary := api.CleanupSummary{
		Route: route,
		Total: len(fns),
	}
	if len(fns) == 0 {
		return summary
	}

	type result struct {
		outcome api.CleanupOutcome
		err     error
	}

	results := make(chan result, len(fns))
	var wg sync.WaitGroup
	for _, fn := range fns {
		wg.Add(1)
		go func(fn api.CleanupFunc) {
			defer wg.Done()
			outcome, err := runOne(fn, timeout)
			results <- result{outcome: outcome, err: err}
		}(fn)
	}
	wg.Wait()
	close(results)

	for res := range results {
		switch res.outcome {
		case api.CleanupSucceeded:
			summary.Succeeded++
		case api.CleanupTimedOut:
			summary.TimedOut++
			summary.Failed++
		default:
			summary.Failed++
		}
		if res.err != nil && len(summary.Errors) < maxErrors {
			summary.Errors = append(summary.Errors, res.err.Error())
		}
	}
	return summary
}

// runOne races a single cleanup against its timeout. A panic counts as
// a failure; a timeout counts as both failed and timed out. The cleanup
// goroutine is not killed on timeout, it is simply no longer waited on.
func runOne(fn api.CleanupFunc, timeout time.Duration) (api.CleanupOutcome, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("cleanup panic: %v", r)
			}
		}()
		done <- fn(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			return api.CleanupFailed, err
		}
		return api.CleanupSucceeded, nil
	case <-ctx.Done():
		return api.CleanupTimedOut, fmt.Errorf("cleanup timed out after %s", timeout)
	}
}
