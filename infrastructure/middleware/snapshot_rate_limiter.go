package middleware

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/trailtap/stamprank/internal/ports"
)

// SnapshotMiddleware decorates a SnapshotSource with a cross-cutting
// concern. Middleware composes outermost-first:
//
//	source = RateLimitMiddleware(10, 2)(CacheMiddleware(ttl)(feed))
type SnapshotMiddleware func(ports.SnapshotSource) ports.SnapshotSource

// rateLimitedSource implements request pacing using a token bucket.
// This keeps snapshot assembly from overwhelming the upstream feed
// stores and ensures consistent fetch pacing across callers.
type rateLimitedSource struct {
	next    ports.SnapshotSource
	limiter *rate.Limiter
}

// RateLimitMiddleware creates middleware that enforces rate limiting
// using a token bucket algorithm. The limit parameter sets fetches per
// second, while burst allows temporary spikes above the sustained rate.
func RateLimitMiddleware(limit rate.Limit, burst int) SnapshotMiddleware {
	limiter := rate.NewLimiter(limit, burst)

	return func(next ports.SnapshotSource) ports.SnapshotSource {
		return &rateLimitedSource{
			next:    next,
			limiter: limiter,
		}
	}
}

// FetchSnapshot waits for rate limit permission before forwarding the
// request. This blocks the calling goroutine until a token is
// available.
func (r *rateLimitedSource) FetchSnapshot(ctx context.Context, placeIDs []string) (ports.Snapshot, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return ports.Snapshot{}, ports.NewSnapshotError("rate_limit", len(placeIDs),
			fmt.Errorf("%w: %v", ports.ErrRateLimited, err))
	}
	return r.next.FetchSnapshot(ctx, placeIDs)
}
