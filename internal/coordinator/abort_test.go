package coordinator

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jpelkonen/roam/pkg/api"
)

func TestTokenPoolAbortAllFiresAndClears(t *testing.T) {
	t.Parallel()

	p := newTokenPool(32)
	t1 := p.create()
	t2 := p.create()
	require.Equal(t, 2, p.len())

	aborted := p.abortAll()
	require.Equal(t, 2, aborted)
	require.Equal(t, 0, p.len())
	require.True(t, t1.Fired())
	require.True(t, t2.Fired())

	select {
	case <-t1.Done():
	default:
		t.Fatal("token context should be cancelled")
	}
}

func TestTokenSelfRemovesOnOwnerAbort(t *testing.T) {
	t.Parallel()

	p := newTokenPool(32)
	tok := p.create()
	require.Equal(t, 1, p.len())

	require.True(t, tok.Abort())
	require.False(t, tok.Abort(), "second abort must be a no-op")
	require.Equal(t, 0, p.len(), "fired token should leave the pool")

	// An already-fired token is skipped by the sweep.
	require.Equal(t, 0, p.abortAll())
}

func TestTokenPoolSweepAtThreshold(t *testing.T) {
	t.Parallel()

	p := newTokenPool(2)

	// A fired token that slipped into the pool without self-removal.
	stray := api.NewToken(nil)
	stray.Abort()
	p.mu.Lock()
	p.tokens[stray.ID()] = stray
	p.mu.Unlock()

	live := p.create()
	require.Equal(t, 2, p.len())

	// Crossing the threshold sweeps the fired stray, keeps live tokens.
	p.create()
	require.Equal(t, 2, p.len())
	require.False(t, live.Fired())
}

type fakeMedia struct {
	mu       sync.Mutex
	attached bool
	playing  bool
	paused   bool
	released bool
}

func (m *fakeMedia) Attached() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attached
}

func (m *fakeMedia) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

func (m *fakeMedia) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = true
	m.playing = false
}

func (m *fakeMedia) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.released = true
}

func TestMediaPoolStopsAttachedAndSkipsDetached(t *testing.T) {
	t.Parallel()

	p := newMediaPool(nil)

	playing := &fakeMedia{attached: true, playing: true}
	idle := &fakeMedia{attached: true}
	detached := &fakeMedia{attached: false, playing: true}

	p.register(playing)
	p.register(idle)
	p.register(detached)
	p.register(nil) // ignored

	stopped := p.stopAll()
	require.Equal(t, 2, stopped)
	require.Equal(t, 0, p.len(), "pool must be cleared after processing")

	require.True(t, playing.paused)
	require.True(t, playing.released)
	require.False(t, idle.paused, "idle media is released but not paused")
	require.True(t, idle.released)
	require.False(t, detached.released, "detached media must be skipped")
}

type panickyMedia struct{}

func (panickyMedia) Attached() bool { return true }
func (panickyMedia) Playing() bool  { return true }
func (panickyMedia) Pause()         { panic("pause failed") }
func (panickyMedia) Release()       {}

func TestMediaPoolSurvivesPanickingElement(t *testing.T) {
	t.Parallel()

	p := newMediaPool(nil)
	healthy := &fakeMedia{attached: true, playing: true}
	p.register(panickyMedia{})
	p.register(healthy)

	stopped := p.stopAll()
	require.Equal(t, 1, stopped)
	require.True(t, healthy.released, "a panicking element must not halt the sweep")
}
