package api

import (
	"context"
	"sync"

	"github.com/rs/xid"
)

// AbortToken is a cancellation handle for an in-flight network
// operation. It wraps a context that is cancelled when the token fires,
// either by its owner or by the coordinator's abort sweep.
//
// Most callers should obtain tokens from Coordinator.NewAbortToken so
// they participate in the coordinator's abort pool; NewToken exists for
// wiring and tests.
type AbortToken struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	fired  bool
	onFire func(*AbortToken)
}

// NewToken creates a standalone token. onFire, if non-nil, runs exactly
// once when the token fires; the coordinator uses it to remove the
// token from its pool.
func NewToken(onFire func(*AbortToken)) *AbortToken {
	ctx, cancel := context.WithCancel(context.Background())
	return &AbortToken{
		id:     xid.New().String(),
		ctx:    ctx,
		cancel: cancel,
		onFire: onFire,
	}
}

// ID returns the token's unique identifier, used in logs.
func (t *AbortToken) ID() string { return t.id }

// Context returns the context cancelled when the token fires. Pass it
// to the network operation the token guards.
func (t *AbortToken) Context() context.Context { return t.ctx }

// Done returns a channel closed when the token fires.
func (t *AbortToken) Done() <-chan struct{} { return t.ctx.Done() }

// Fired reports whether the token has been fired.
func (t *AbortToken) Fired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fired
}

// Abort fires the token. It is idempotent and reports whether this call
// was the one that fired it.
func (t *AbortToken) Abort() bool {
	t.mu.Lock()
	if t.fired {
		t.mu.Unlock()
		return false
	}
	t.fired = true
	onFire := t.onFire
	t.onFire = nil
	t.mu.Unlock()

	t.cancel()
	if onFire != nil {
		onFire(t)
	}
	return true
}
