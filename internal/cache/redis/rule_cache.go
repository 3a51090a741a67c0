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

const ruleSnapshotKey = "rules:snapshot"

// RuleCache implements domain.RuleCache using a single Redis string holding
// the whole stored ruleset as one JSON snapshot.
type RuleCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRuleCache creates a RuleCache backed by the given Client.
func NewRuleCache(c *Client, ttl time.Duration) *RuleCache {
	return &RuleCache{rdb: c.Underlying(), ttl: ttl}
}

// Get retrieves the cached snapshot. It returns domain.ErrNotFound when no
// snapshot is cached.
func (rc *RuleCache) Get(ctx context.Context) (domain.RuleSnapshot, error) {
	data, err := rc.rdb.Get(ctx, ruleSnapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.RuleSnapshot{}, domain.ErrNotFound
		}
		return domain.RuleSnapshot{}, fmt.Errorf("redis: get rule snapshot: %w", err)
	}

	var snap domain.RuleSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.RuleSnapshot{}, fmt.Errorf("redis: decode rule snapshot: %w", err)
	}
	return snap, nil
}

// Set stores the snapshot.
func (rc *RuleCache) Set(ctx context.Context, snap domain.RuleSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("redis: encode rule snapshot: %w", err)
	}
	if err := rc.rdb.Set(ctx, ruleSnapshotKey, data, rc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set rule snapshot: %w", err)
	}
	return nil
}

// Invalidate drops the snapshot so the next read rebuilds it from the store.
func (rc *RuleCache) Invalidate(ctx context.Context) error {
	if err := rc.rdb.Del(ctx, ruleSnapshotKey).Err(); err != nil {
		return fmt.Errorf("redis: invalidate rule snapshot: %w", err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.RuleCache = (*RuleCache)(nil)
