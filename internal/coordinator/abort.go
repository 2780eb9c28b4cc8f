package coordinator

import (
	"log/slog"
	"sync"

	"github.com/jpelkonen/roam/pkg/api"
)

// tokenPool tracks outstanding abort tokens so in-flight network
// operations can be cancelled en masse. A token removes itself from the
// pool the moment it fires, whether fired by the coordinator or by its
// owner, so the pool does not grow without bound.
type tokenPool struct {
	mu             sync.Mutex
	tokens         map[string]*api.AbortToken
	sweepThreshold int
}

func newTokenPool(sweepThreshold int) *tokenPool {
	return &tokenPool{
		tokens:         make(map[string]*api.AbortToken),
		sweepThreshold: sweepThreshold,
	}
}

// create mints a token enrolled in the pool. When the pool size crosses
// the advisory threshold, already-fired tokens that slipped through
// without self-removal are swept out first.
func (p *tokenPool) create() *api.AbortToken {
	t := api.NewToken(p.remove)

	p.mu.Lock()
	if len(p.tokens) >= p.sweepThreshold {
		p.sweepLocked()
	}
	p.tokens[t.ID()] = t
	p.mu.Unlock()

	return t
}

func (p *tokenPool) remove(t *api.AbortToken) {
	p.mu.Lock()
	delete(p.tokens, t.ID())
	p.mu.Unlock()
}

func (p *tokenPool) sweepLocked() {
	for id, t := range p.tokens {
		if t.Fired() {
			delete(p.tokens, id)
		}
	}
}

// abortAll fires every pooled token and clears the pool. Tokens that
// already fired are skipped; the return value counts only tokens this
// sweep actually cancelled.
func (p *tokenPool) abortAll() int {
	p.mu.Lock()
	pending := make([]*api.AbortToken, 0, len(p.tokens))
	for _, t := range p.tokens {
		pending = append(pending, t)
	}
	p.tokens = make(map[string]*api.AbortToken)
	p.mu.Unlock()

	aborted := 0
	for _, t := range pending {
		if t.Abort() {
			aborted++
		}
	}
	return aborted
}

func (p *tokenPool) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tokens)
}

// mediaPool tracks playable elements by non-owning reference. Stopping
// the pool pauses and releases whatever is still attached; it never
// destroys an element, and membership always ends with the sweep.
type mediaPool struct {
	mu    sync.Mutex
	elems []api.Media
	log   *slog.Logger
}

func newMediaPool(log *slog.Logger) *mediaPool {
	return &mediaPool{log: log}
}

func (p *mediaPool) register(m api.Media) {
	if m == nil {
		return
	}
	p.mu.Lock()
	p.elems = append(p.elems, m)
	p.mu.Unlock()
}

// stopAll pauses and releases every tracked, still-attached element and
// clears the pool. Detached elements are skipped rather than treated as
// errors. Returns the number of elements stopped.
func (p *mediaPool) stopAll() int {
	p.mu.Lock()
	elems := p.elems
	p.elems = nil
	p.mu.Unlock()

	stopped := 0
	for _, m := range elems {
		if p.stopOne(m) {
			stopped++
		}
	}
	return stopped
}

func (p *mediaPool) stopOne(m api.Media) (stopped bool) {
	defer func() {
		if r := recover(); r != nil {
			stopped = false
			if p.log != nil {
				p.log.Warn("media_stop_panic", slog.Any("panic", r))
			}
		}
	}()

	if !m.Attached() {
		return false
	}
	if m.Playing() {
		m.Pause()
	}
	m.Release()
	return true
}

func (p *mediaPool) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.elems)
}
