package coordinator

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jpelkonen/roam/pkg/api"
)

// metrics accumulates the coordinator's running counters. Counters only
// grow; they reset on process restart, never at runtime.
type metrics struct {
	abortedRequests  atomic.Int64
	cleanupErrors    atomic.Int64
	totalCleanupTime atomic.Int64 // nanoseconds

	mu               sync.Mutex
	totalNavigations int64
	totalNavTime     time.Duration
}

// recordNavigation folds one completed transition into the count and
// running average.
func (m *metrics) recordNavigation(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalNavigations++
	m.totalNavTime += d
}

func (m *metrics) recordCleanup(summary api.CleanupSummary, d time.Duration) {
	m.totalCleanupTime.Add(d.Nanoseconds())
	// Failed already includes timed-out cleanups.
	if summary.Failed > 0 {
		m.cleanupErrors.Add(int64(summary.Failed))
	}
}

func (m *metrics) recordAborts(n int) {
	if n > 0 {
		m.abortedRequests.Add(int64(n))
	}
}

func (m *metrics) snapshot() api.MetricsSnapshot {
	m.mu.Lock()
	navs := m.totalNavigations
	total := m.totalNavTime
	m.mu.Unlock()

	var avg time.Duration
	if navs > 0 {
		avg = total / time.Duration(navs)
	}

	return api.MetricsSnapshot{
		TotalNavigations:      navs,
		AverageNavigationTime: avg,
		TotalCleanupTime:      time.Duration(m.totalCleanupTime.Load()),
		AbortedRequests:       m.abortedRequests.Load(),
		CleanupErrors:         m.cleanupErrors.Load(),
	}
}
