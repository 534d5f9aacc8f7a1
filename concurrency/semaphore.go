// concurrency/semaphore.go
package concurrency

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RequestIDKey is the context key under which a request's unique identifier is
// stored. The private struct type prevents collisions with other context keys.
type RequestIDKey struct{}

// AcquireConcurrencyPermit blocks until a concurrency permit is available or
// the context ends. On success it returns a child context tagged with a unique
// request ID for log correlation.
func (ch *ConcurrencyHandler) AcquireConcurrencyPermit(ctx context.Context) (context.Context, uuid.UUID, error) {
	requestID := uuid.New()
	start := time.Now()

	select {
	case ch.sem <- struct{}{}:
		waited := time.Since(start)

		ch.Metrics.Lock.Lock()
		ch.Metrics.TotalRequests++
		ch.Metrics.PermitWaitTime += waited
		ch.Metrics.Lock.Unlock()

		ch.sugar.Debugw("Acquired concurrency permit", "request_id", requestID, "wait", waited, "in_flight", len(ch.sem))
		return context.WithValue(ctx, RequestIDKey{}, requestID), requestID, nil
	case <-ctx.Done():
		ch.sugar.Debugw("Context ended while waiting for concurrency permit", "request_id", requestID, "error", ctx.Err())
		return ctx, requestID, ctx.Err()
	}
}

// ReleaseConcurrencyPermit returns a held permit to the pool.
func (ch *ConcurrencyHandler) ReleaseConcurrencyPermit(requestID uuid.UUID) {
	select {
	case <-ch.sem:
		ch.sugar.Debugw("Released concurrency permit", "request_id", requestID, "in_flight", len(ch.sem))
	default:
		// Releasing without holding a permit is a programming error; log it
		// rather than blocking the caller.
		ch.sugar.Warnw("Release called with no permit held", "request_id", requestID)
	}
}
