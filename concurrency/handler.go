// concurrency/handler.go
package concurrency

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// ConcurrencyHandler controls the number of concurrent HTTP requests.
// It bounds the client's total in-flight calls; it never serializes them.
type ConcurrencyHandler struct {
	sem     chan struct{}
	sugar   *zap.SugaredLogger
	Metrics *ConcurrencyMetrics
}

// ConcurrencyMetrics captures counters for the client's interactions with the API.
type ConcurrencyMetrics struct {
	TotalRequests      int64         // Total number of requests issued
	TotalAuthRefreshes int64         // Total number of requests that waited on a token refresh
	TotalAuthRetries   int64         // Total number of requests re-issued after a token refresh
	PermitWaitTime     time.Duration // Total time spent waiting for permits
	Lock               sync.Mutex    // Lock for all counter fields
}

// NewConcurrencyHandler initializes a new ConcurrencyHandler with the given
// concurrency limit, logger, and concurrency metrics. The handler ensures
// no more than limit requests are in flight at once, using a semaphore.
func NewConcurrencyHandler(limit int, sugar *zap.SugaredLogger, metrics *ConcurrencyMetrics) *ConcurrencyHandler {
	if limit < 1 {
		limit = 1
	}
	if metrics == nil {
		metrics = &ConcurrencyMetrics{}
	}
	return &ConcurrencyHandler{
		sem:     make(chan struct{}, limit),
		sugar:   sugar,
		Metrics: metrics,
	}
}

// InFlight reports how many permits are currently held.
func (ch *ConcurrencyHandler) InFlight() int {
	return len(ch.sem)
}

// RecordAuthRefresh counts one request held back by a token refresh. Several
// concurrent requests can share a single refresh round trip.
func (m *ConcurrencyMetrics) RecordAuthRefresh() {
	m.Lock.Lock()
	defer m.Lock.Unlock()
	m.TotalAuthRefreshes++
}

// RecordAuthRetry counts one request re-issued after a token refresh.
func (m *ConcurrencyMetrics) RecordAuthRetry() {
	m.Lock.Lock()
	defer m.Lock.Unlock()
	m.TotalAuthRetries++
}
