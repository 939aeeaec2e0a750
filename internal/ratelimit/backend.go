package ratelimit

import (
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// Limiter backends selectable via RATE_LIMIT_BACKEND.
const (
	BackendSliding = "sliding"
	BackendUlule   = "ulule"
)

// ForBackend builds the Limiter implementation named by backend. Both
// backends keep their counters in Redis under prefix; an empty backend
// selects the sliding window.
func ForBackend(backend string, client *redis.Client, prefix string) (Limiter, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendSliding:
		return SlidingWindow{Client: client, Prefix: prefix}, nil
	case BackendUlule:
		store, err := limiterredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: prefix})
		if err != nil {
			return nil, fmt.Errorf("ratelimit: build ulule store: %w", err)
		}
		return Ulule{Store: store}, nil
	default:
		return nil, fmt.Errorf("ratelimit: unknown backend %q", backend)
	}
}
