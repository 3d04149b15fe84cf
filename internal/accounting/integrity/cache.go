package integrity

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	platformshared "github.com/odyssey-erp/gl-engine/internal/shared"
)

// DefaultSnapshotTTL keeps a snapshot for roughly one quarter.
const DefaultSnapshotTTL = 90 * 24 * time.Hour

// SnapshotCache keeps the latest integrity snapshot per fiscal year in Redis.
// A nil cache or client turns every call into a no-op.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &SnapshotCache{client: client, ttl: ttl}
}

// Store replaces the snapshot of fiscalYear.
func (c *SnapshotCache) Store(ctx context.Context, fiscalYear int, snap Snapshot) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, platformshared.IntegritySnapshotKey(fiscalYear), raw, c.ttl).Err()
}

// Latest returns the cached snapshot of fiscalYear.
func (c *SnapshotCache) Latest(ctx context.Context, fiscalYear int) (Snapshot, bool, error) {
	if c == nil || c.client == nil {
		return Snapshot{}, false, nil
	}
	payload, err := c.client.Get(ctx, platformshared.IntegritySnapshotKey(fiscalYear)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}
	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return Snapshot{}, false, err
	}
	return snap, true, nil
}
