package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/buenedata/lumidex-v2-sub002/internal/domain"
)

// CustomVariantCache implements domain.CustomVariantCache using Redis
// strings. Each card's active variants are stored as one JSON document at
// key "customs:{cardID}"; an empty list is cached too, so cards without
// overrides do not hit Postgres on every view.
type CustomVariantCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCustomVariantCache creates a CustomVariantCache backed by the given
// Client. ttl <= 0 means entries never expire and rely on invalidation.
func NewCustomVariantCache(c *Client, ttl time.Duration) *CustomVariantCache {
	return &CustomVariantCache{rdb: c.Underlying(), ttl: ttl}
}

func customsKey(cardID string) string {
	return "customs:" + cardID
}

// GetByCard retrieves the cached active variants for a card. It returns
// domain.ErrNotFound when the key does not exist.
func (cc *CustomVariantCache) GetByCard(ctx context.Context, cardID string) ([]domain.CustomVariant, error) {
	data, err := cc.rdb.Get(ctx, customsKey(cardID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get customs %s: %w", cardID, err)
	}

	variants := []domain.CustomVariant{}
	if err := json.Unmarshal(data, &variants); err != nil {
		return nil, fmt.Errorf("redis: decode customs %s: %w", cardID, err)
	}
	return variants, nil
}

// SetByCard stores the card's active variants.
func (cc *CustomVariantCache) SetByCard(ctx context.Context, cardID string, variants []domain.CustomVariant) error {
	if variants == nil {
		variants = []domain.CustomVariant{}
	}
	data, err := json.Marshal(variants)
	if err != nil {
		return fmt.Errorf("redis: encode customs %s: %w", cardID, err)
	}
	if err := cc.rdb.Set(ctx, customsKey(cardID), data, cc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set customs %s: %w", cardID, err)
	}
	return nil
}

// Invalidate drops the card's entry. Called after administrator writes.
func (cc *CustomVariantCache) Invalidate(ctx context.Context, cardID string) error {
	if err := cc.rdb.Del(ctx, customsKey(cardID)).Err(); err != nil {
		return fmt.Errorf("redis: invalidate customs %s: %w", cardID, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.CustomVariantCache = (*CustomVariantCache)(nil)
