package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"haulbook/internal/db"
)

// CachedPostalStore is a Redis read-through cache in front of a PostalStore.
// The cache is best-effort: any Redis failure is logged and the lookup falls
// back to the underlying store. Unknown codes are cached as negative entries
// so repeated misses do not hit the database.
type CachedPostalStore struct {
	store  PostalStore
	client *redis.Client
	ttl    time.Duration
}

func NewCachedPostalStore(store PostalStore, client *redis.Client, ttl time.Duration) *CachedPostalStore {
	return &CachedPostalStore{store: store, client: client, ttl: ttl}
}

const postalMissSentinel = "miss"

func (c *CachedPostalStore) GetPostalLocation(ctx context.Context, code string) (*db.PostalLocation, error) {
	key := "postal:" + code

	if c.client != nil {
		val, err := c.client.Get(ctx, key).Result()
		if err == nil {
			if val == postalMissSentinel {
				return nil, nil
			}
			var loc db.PostalLocation
			if err := json.Unmarshal([]byte(val), &loc); err == nil {
				return &loc, nil
			}
			log.Printf("postal cache: bad entry for %s, falling through", code)
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("postal cache: get %s failed: %v", code, err)
		}
	}

	loc, err := c.store.GetPostalLocation(ctx, code)
	if err != nil {
		return nil, err
	}

	if c.client != nil {
		payload := postalMissSentinel
		if loc != nil {
			if data, err := json.Marshal(loc); err == nil {
				payload = string(data)
			}
		}
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			log.Printf("postal cache: set %s failed: %v", code, err)
		}
	}
	return loc, nil
}
