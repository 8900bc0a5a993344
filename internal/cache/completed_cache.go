// Package cache holds the Redis-backed index of completed (user, item)
// payments used to short-circuit duplicate checks.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CASH-ECOMM/payment-service/pkg/redis"
)

const (
	keyPrefix  = "payment:completed:"
	DefaultTTL = 24 * time.Hour
)

// Store is the subset of pkg/redis.Client the cache needs.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

type CompletedPaymentCache struct {
	store Store
	ttl   time.Duration
}

// NewCompletedPaymentCache uses DefaultTTL when ttl is not positive.
func NewCompletedPaymentCache(store Store, ttl time.Duration) *CompletedPaymentCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CompletedPaymentCache{store: store, ttl: ttl}
}

func Key(userID, itemID int64) string {
	return fmt.Sprintf("%s%d:%d", keyPrefix, userID, itemID)
}

func (c *CompletedPaymentCache) Lookup(ctx context.Context, userID, itemID int64) (string, bool, error) {
	id, err := c.store.Get(ctx, Key(userID, itemID))
	if errors.Is(err, redis.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, id != "", nil
}

func (c *CompletedPaymentCache) Remember(ctx context.Context, userID, itemID int64, paymentID string) error {
	return c.store.Set(ctx, Key(userID, itemID), paymentID, c.ttl)
}

func (c *CompletedPaymentCache) Forget(ctx context.Context, userID, itemID int64) error {
	return c.store.Delete(ctx, Key(userID, itemID))
}
