package coordinator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNavQueueFIFOOrder(t *testing.T) {
	t.Parallel()

	q := newNavQueue(5)

	a := newQueuedRequest("/a", "/b")
	b := newQueuedRequest("/a", "/c")
	require.Nil(t, q.push(a))
	require.Nil(t, q.push(b))
	require.Equal(t, 2, q.len())

	require.Same(t, a, q.pop())
	require.Same(t, b, q.pop())
	require.Nil(t, q.pop())
}

func TestNavQueueEvictsOldestAtCapacity(t *testing.T) {
	t.Parallel()

	q := newNavQueue(2)

	first := newQueuedRequest("/a", "/b")
	require.Nil(t, q.push(first))
	require.Nil(t, q.push(newQueuedRequest("/a", "/c")))

	evicted := q.push(newQueuedRequest("/a", "/d"))
	require.Same(t, first, evicted, "oldest entry should be evicted")
	require.Equal(t, 2, q.len())
}

func TestQueuedRequestResolveOnce(t *testing.T) {
	t.Parallel()

	r := newQueuedRequest("/a", "/b")
	r.resolve(true)
	r.resolve(false) // dropped

	require.True(t, <-r.result)
	select {
	case v := <-r.result:
		t.Fatalf("unexpected second resolution: %v", v)
	default:
	}
}

func TestQueuedRequestAbandon(t *testing.T) {
	t.Parallel()

	r := newQueuedRequest("/a", "/b")
	require.False(t, r.abandoned())
	r.abandon()
	require.True(t, r.abandoned())
}
