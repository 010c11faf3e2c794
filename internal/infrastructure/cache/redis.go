package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/novabank/credit-engine/internal/domain/service"
)

// OpenRedis connects a go-redis client and verifies it with a ping.
func OpenRedis(addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return client, nil
}

// RedisDecisionCache implements port.DecisionCache on Redis. Keys follow
// decision:<customer>:<principal>:<term>:<rate>, so a customer's entries can
// be invalidated by prefix scan after a booking.
type RedisDecisionCache struct {
	client *redis.Client
}

// NewRedisDecisionCache wraps an existing client.
func NewRedisDecisionCache(client *redis.Client) *RedisDecisionCache {
	return &RedisDecisionCache{client: client}
}

// Get returns the cached decision for key, if present.
func (c *RedisDecisionCache) Get(ctx context.Context, key string) (service.Decision, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return service.Decision{}, false, nil
	}
	if err != nil {
		return service.Decision{}, false, fmt.Errorf("redis: get %s: %w", key, err)
	}

	var d service.Decision
	if err := json.Unmarshal(raw, &d); err != nil {
		return service.Decision{}, false, fmt.Errorf("redis: decode %s: %w", key, err)
	}
	return d, true, nil
}

// Set stores the decision under key for ttl.
func (c *RedisDecisionCache) Set(ctx context.Context, key string, d service.Decision, ttl time.Duration) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("redis: encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

// InvalidateCustomer deletes every cached decision for the customer.
func (c *RedisDecisionCache) InvalidateCustomer(ctx context.Context, customerID string) error {
	pattern := fmt.Sprintf("decision:%s:*", customerID)

	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis: scan %s: %w", pattern, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis: del: %w", err)
	}
	return nil
}
