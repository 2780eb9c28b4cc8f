package coordinator

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/xid"
)

// queuedRequest is a pending transition held while the lock is taken.
// The result channel stands in for the original caller's promise: the
// caller blocks on it inside BeginNavigation until the request is
// processed, evicted, or expired.
type queuedRequest struct {
	id         string
	from, to   string
	enqueuedAt time.Time

	once   sync.Once
	result chan bool
	gone   atomic.Bool
}

func newQueuedRequest(from, to string) *queuedRequest {
	return &queuedRequest{
		id:         xid.New().String(),
		from:       from,
		to:         to,
		enqueuedAt: time.Now(),
		result:     make(chan bool, 1),
	}
}

// resolve delivers the outcome to the waiting caller. Only the first
// resolution counts; later ones are dropped.
func (r *queuedRequest) resolve(allowed bool) {
	r.once.Do(func() {
		r.result <- allowed
	})
}

// abandon marks the request as no longer awaited, after the waiting
// caller's context was cancelled. Drain discards abandoned entries
// instead of navigating on behalf of a caller that already gave up.
func (r *queuedRequest) abandon() {
	r.gone.Store(true)
}

func (r *queuedRequest) abandoned() bool {
	return r.gone.Load()
}

// navQueue is a FIFO of pending transition requests, bounded to a small
// constant size.
type navQueue struct {
	mu    sync.Mutex
	items []*queuedRequest
	max   int
}

func newNavQueue(max int) *navQueue {
	return &navQueue{max: max}
}

// push appends r. If the queue is at capacity the oldest entry is
// evicted first and returned so the caller can resolve it as not
// allowed; backpressure here is a normal outcome, not an error.
func (q *navQueue) push(r *queuedRequest) (evicted *queuedRequest) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) >= q.max {
		evicted = q.items[0]
		q.items = q.items[1:]
	}
	q.items = append(q.items, r)
	return evicted
}

// pop removes and returns the head, or nil when empty.
func (q *navQueue) pop() *queuedRequest {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	head := q.items[0]
	q.items = q.items[1:]
	return head
}

func (q *navQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
