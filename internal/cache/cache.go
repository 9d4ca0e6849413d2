package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Cache holds short-lived per-process state: open sessions and computed
// trial statuses
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores value for expiration, 0 meaning the cache's own TTL
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)

	Delete(ctx context.Context, key string)
	DeleteByPrefix(ctx context.Context, prefix string)

	// Count includes expired entries not yet cleaned up
	Count() int
}

// Key prefixes. Trial statuses are keyed by account owner, sessions by id.
const (
	PrefixSession     = "session:v1:"
	PrefixTrialStatus = "trial_status:v1:"
)

// GenerateKey joins prefix and params with colons, e.g. trial_status:v1::usr_1
func GenerateKey(prefix string, params ...interface{}) string {
	parts := make([]string, len(params)+1)
	parts[0] = prefix

	for i, param := range params {
		parts[i+1] = fmt.Sprintf("%v", param)
	}

	return strings.Join(parts, ":")
}
