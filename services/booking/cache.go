package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"zeena/models"
	"zeena/utils"
)

// AvailabilityCache memoises the read path's slot listings in redis.
// Strictly an optimisation over a derived view: entries are short-lived,
// invalidated on every write for the provider/date, and any cache failure
// falls back to a fresh computation. The committer never consults it.
type AvailabilityCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewAvailabilityCache(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &AvailabilityCache{Client: client, TTL: ttl}
}

func availabilityKey(providerID, serviceID, date string) string {
	return fmt.Sprintf("availability:%s:%s:%s", providerID, date, serviceID)
}

// invalidationPattern matches every service's listing for a provider/date.
func invalidationPattern(providerID, date string) string {
	return fmt.Sprintf("availability:%s:%s:*", providerID, date)
}

func (c *AvailabilityCache) Get(ctx context.Context, providerID, serviceID, date string) (*models.DayAvailability, bool) {
	data, err := c.Client.Get(ctx, availabilityKey(providerID, serviceID, date)).Result()
	if err != nil {
		return nil, false
	}
	var day models.DayAvailability
	if err := json.Unmarshal([]byte(data), &day); err != nil {
		return nil, false
	}
	return &day, true
}

func (c *AvailabilityCache) Set(ctx context.Context, day *models.DayAvailability) {
	data, err := json.Marshal(day)
	if err != nil {
		return
	}
	key := availabilityKey(day.ProviderID, day.ServiceID, day.Date)
	if err := c.Client.Set(ctx, key, data, c.TTL).Err(); err != nil {
		utils.GetLogger().Warn("availability cache set failed",
			zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops every cached listing for a provider/date after a write.
func (c *AvailabilityCache) Invalidate(ctx context.Context, providerID, date string) {
	logger := utils.GetLogger()
	iter := c.Client.Scan(ctx, 0, invalidationPattern(providerID, date), 100).Iterator()
	for iter.Next(ctx) {
		if err := c.Client.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warn("availability cache invalidation failed",
				zap.String("key", iter.Val()), zap.Error(err))
		}
	}
	if err := iter.Err(); err != nil {
		logger.Warn("availability cache scan failed",
			zap.String("providerId", providerID), zap.Error(err))
	}
}
