package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// Init initializes the Redis connection
func Init() error {
	// K8s sets REDIS_SERVICE_HOST and REDIS_SERVICE_PORT for services
	host := os.Getenv("REDIS_SERVICE_HOST")
	if host == "" {
		host = "redis" // fallback to service name
	}
	port := os.Getenv("REDIS_SERVICE_PORT")
	if port == "" {
		port = "6379"
	}

	client = redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// Close the failed client and set to nil for graceful degradation
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetClient returns the Redis client
func GetClient() *redis.Client {
	return client
}

// DashboardKey builds the cache key for one recompute result: the
// dataset fingerprint plus the canonical selection, hashed so arbitrary
// filter values never leak into key syntax. A reload changes the
// fingerprint, so stale bundles age out instead of being served.
func DashboardKey(fingerprint, selectionKey string) string {
	h := sha256.New()
	h.Write([]byte(fingerprint + "|" + selectionKey))
	return "dashboard:" + hex.EncodeToString(h.Sum(nil))[:32]
}

// ReportKey builds the cache key for a rendered report artifact.
func ReportKey(format, fingerprint, selectionKey string) string {
	h := sha256.New()
	h.Write([]byte(format + "|" + fingerprint + "|" + selectionKey))
	return "reports:" + hex.EncodeToString(h.Sum(nil))[:32]
}

// ============================================
// Generic Cache Functions
// ============================================

// GetCached returns cached data for a key
func GetCached(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetCached stores data with a TTL
func SetCached(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if client == nil {
		return
	}
	client.Set(ctx, key, data, ttl)
}

// ============================================
// Cache Invalidation Functions
// ============================================

// InvalidatePattern removes all keys matching a glob pattern
func InvalidatePattern(ctx context.Context, pattern string) {
	if client == nil {
		return
	}
	keys, err := client.Keys(ctx, pattern).Result()
	if err == nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateKeys removes specific cache keys
func InvalidateKeys(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	client.Del(ctx, keys...)
}

// InvalidateDashboardCaches clears every cached bundle and report.
// Called when: dataset reload swaps in a new table snapshot.
func InvalidateDashboardCaches(ctx context.Context) {
	InvalidatePattern(ctx, "dashboard:*")
	InvalidatePattern(ctx, "reports:*")
}

// ============================================
// Pre-warm Cache Functions
// ============================================

// PreWarmCallback is a function that populates a cache key
type PreWarmCallback func(ctx context.Context) ([]byte, error)

// preWarmCallbacks stores functions to pre-warm cache on startup
var preWarmCallbacks = make(map[string]PreWarmCallback)

// RegisterPreWarm registers a callback to pre-warm a cache key
// This should be called during handler initialization
func RegisterPreWarm(key string, callback PreWarmCallback) {
	preWarmCallbacks[key] = callback
}

// PreWarmCache pre-warms registered cache keys on startup
// Runs in background, non-blocking
func PreWarmCache() {
	if client == nil {
		return
	}

	ctx := context.Background()

	for key, callback := range preWarmCallbacks {
		// Check if already cached (another pod may have done it)
		if _, ok := GetCached(ctx, key); ok {
			continue
		}

		// Call the pre-warm function
		data, err := callback(ctx)
		if err != nil {
			continue
		}

		// Cache with appropriate TTL based on key prefix
		ttl := 10 * time.Minute // default
		if len(key) > 8 && key[:8] == "reports:" {
			ttl = 15 * time.Minute
		}

		SetCached(ctx, key, data, ttl)
	}
}

// IsHealthy returns true if Redis connection is working
func IsHealthy() bool {
	if client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}

// ============================================
// Background Pre-warm After Invalidation
// ============================================

// PreWarmKey pre-warms a specific cache key in the background
// Called after cache invalidation to ensure next request is fast
// fetcher should return the data to cache, ttl specifies how long to cache
// This is non-blocking - runs in a goroutine
func PreWarmKey(key string, fetcher func(ctx context.Context) ([]byte, error), ttl time.Duration) {
	if client == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		data, err := fetcher(ctx)
		if err != nil {
			// Next request recomputes from the table
			return
		}

		SetCached(ctx, key, data, ttl)
	}()
}
