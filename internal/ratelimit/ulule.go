package ratelimit

import (
	"context"
	"time"

	limiter "github.com/ulule/limiter/v3"
)

// Ulule adapts a ulule/limiter store to the Limiter interface. The store
// keeps all counter state, so building the limiter instance per call is
// cheap and lets the window and max vary per route.
type Ulule struct {
	Store limiter.Store
}

// Allow implements Limiter.
func (u Ulule) Allow(ctx context.Context, key string, window time.Duration, max int) (bool, int, time.Time, error) {
	if u.Store == nil || max <= 0 || window <= 0 {
		return true, max, time.Now().Add(window), nil
	}
	rate := limiter.Rate{Period: window, Limit: int64(max)}
	lctx, err := limiter.New(u.Store, rate).Get(ctx, key)
	if err != nil {
		return false, 0, time.Now().Add(window), err
	}
	return !lctx.Reached, int(lctx.Remaining), time.Unix(lctx.Reset, 0), nil
}
