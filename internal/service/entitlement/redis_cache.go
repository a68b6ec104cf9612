// internal/service/entitlement/redis_cache.go
package entitlement

import (
	"context"
	"fmt"
	"time"

	"campus-service/internal/domain/catalog"

	"github.com/redis/go-redis/v9"
)

const decisionTTL = 5 * time.Minute

// RedisDecisionCache caches positive entitlement grants in redis. Keys
// are scoped per user so a lifecycle transition can drop everything the
// user had cached in one sweep.
type RedisDecisionCache struct {
	client *redis.Client
}

func NewRedisDecisionCache(client *redis.Client) *RedisDecisionCache {
	return &RedisDecisionCache{client: client}
}

func decisionKey(userID int64, kind catalog.ContentKind, contentID int64) string {
	return fmt.Sprintf("entitlement:%d:%s:%d", userID, kind, contentID)
}

func (c *RedisDecisionCache) Get(ctx context.Context, userID int64, kind catalog.ContentKind, contentID int64) (bool, error) {
	_, err := c.client.Get(ctx, decisionKey(userID, kind, contentID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisDecisionCache) Set(ctx context.Context, userID int64, kind catalog.ContentKind, contentID int64) error {
	return c.client.Set(ctx, decisionKey(userID, kind, contentID), "1", decisionTTL).Err()
}

// InvalidateUser removes every cached grant for the user.
func (c *RedisDecisionCache) InvalidateUser(ctx context.Context, userID int64) error {
	pattern := fmt.Sprintf("entitlement:%d:*", userID)

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
