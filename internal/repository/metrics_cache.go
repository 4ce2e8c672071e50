// internal/repository/metrics_cache.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campaign-workers/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

const metricsCacheName = "campaign_metrics"

// MetricsCache keeps the latest normalized metrics per campaign and source.
type MetricsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewMetricsCache(client *redis.Client, ttl time.Duration) *MetricsCache {
	return &MetricsCache{client: client, ttl: ttl}
}

func MetricsKey(campaignID, source string) string {
	if source == "" {
		source = "default"
	}
	return fmt.Sprintf("metrics:%s:%s", campaignID, source)
}

func (c *MetricsCache) Put(ctx context.Context, campaignID, source string, normalized []byte) error {
	if err := c.client.Set(ctx, MetricsKey(campaignID, source), normalized, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache metrics: %w", err)
	}
	return nil
}

// Get reports found=false on a miss.
func (c *MetricsCache) Get(ctx context.Context, campaignID, source string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, MetricsKey(campaignID, source)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordCache(metricsCacheName, metrics.CacheMiss)
		return nil, false, nil
	}
	if err != nil {
		metrics.RecordCache(metricsCacheName, metrics.CacheError)
		return nil, false, fmt.Errorf("read cached metrics: %w", err)
	}
	metrics.RecordCache(metricsCacheName, metrics.CacheHit)
	return val, true, nil
}
