package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"quintastock/internal/core/id"
	"quintastock/internal/domain/quinta"
	"quintastock/pkg/logger"
)

const (
	quintaListKey         = "quintas:list:active"
	quintaListAllKey      = "quintas:list:all"
	quintaByNamePrefix    = "quintas:name:"
	defaultQuintaCacheTTL = 5 * time.Minute
)

// QuintaCache is a read-through decorator over the quinta catalog
// repository. The catalog is small and rarely changes, so list and
// name lookups come from Redis between writes. Cache failures fall
// back to the store.
type QuintaCache struct {
	repo   quinta.Repository
	client Client
	ttl    time.Duration
}

// NewQuintaCache wraps repo with a Redis read-through layer.
func NewQuintaCache(repo quinta.Repository, client Client) *QuintaCache {
	return &QuintaCache{
		repo:   repo,
		client: client,
		ttl:    defaultQuintaCacheTTL,
	}
}

var _ quinta.Repository = (*QuintaCache)(nil)

// Create inserts a quinta and invalidates cached reads.
func (c *QuintaCache) Create(ctx context.Context, q *quinta.Quinta) error {
	if err := c.repo.Create(ctx, q); err != nil {
		return err
	}
	c.invalidate(ctx, q.Name)
	return nil
}

// GetByID delegates to the store. ID lookups are rare enough to skip caching.
func (c *QuintaCache) GetByID(ctx context.Context, quintaID id.ID) (*quinta.Quinta, error) {
	return c.repo.GetByID(ctx, quintaID)
}

// GetByName retrieves a quinta by name, cache first.
func (c *QuintaCache) GetByName(ctx context.Context, name string) (*quinta.Quinta, error) {
	key := quintaByNamePrefix + name

	if raw, err := c.client.Get(ctx, key); err == nil {
		var q quinta.Quinta
		if jsonErr := json.Unmarshal([]byte(raw), &q); jsonErr == nil {
			return &q, nil
		}
	} else if !errors.Is(err, ErrCacheMiss) {
		logger.Warn(ctx, "quinta cache read failed", "key", key, "error", err)
	}

	q, err := c.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, q)
	return q, nil
}

// List returns quintas, cache first.
func (c *QuintaCache) List(ctx context.Context, includeInactive bool) ([]*quinta.Quinta, error) {
	key := quintaListKey
	if includeInactive {
		key = quintaListAllKey
	}

	if raw, err := c.client.Get(ctx, key); err == nil {
		var quintas []*quinta.Quinta
		if jsonErr := json.Unmarshal([]byte(raw), &quintas); jsonErr == nil {
			return quintas, nil
		}
	} else if !errors.Is(err, ErrCacheMiss) {
		logger.Warn(ctx, "quinta cache read failed", "key", key, "error", err)
	}

	quintas, err := c.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, quintas)
	return quintas, nil
}

// Update modifies a quinta and invalidates cached reads. On a rename the old
// name key must go too, otherwise it keeps answering lookups until the TTL.
func (c *QuintaCache) Update(ctx context.Context, q *quinta.Quinta) error {
	names := []string{q.Name}
	if stored, err := c.repo.GetByID(ctx, q.ID); err == nil && stored.Name != q.Name {
		names = append(names, stored.Name)
	}

	if err := c.repo.Update(ctx, q); err != nil {
		return err
	}
	c.invalidate(ctx, names...)
	return nil
}

// Delete removes a quinta and invalidates cached reads.
func (c *QuintaCache) Delete(ctx context.Context, quintaID id.ID) error {
	q, err := c.repo.GetByID(ctx, quintaID)
	if err != nil {
		return err
	}
	if err := c.repo.Delete(ctx, quintaID); err != nil {
		return err
	}
	c.invalidate(ctx, q.Name)
	return nil
}

func (c *QuintaCache) store(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, string(raw), c.ttl); err != nil {
		logger.Warn(ctx, "quinta cache write failed", "key", key, "error", err)
	}
}

func (c *QuintaCache) invalidate(ctx context.Context, names ...string) {
	keys := []string{quintaListKey, quintaListAllKey}
	for _, name := range names {
		keys = append(keys, quintaByNamePrefix+name)
	}
	if err := c.client.Delete(ctx, keys...); err != nil {
		logger.Warn(ctx, "quinta cache invalidation failed", "error", err)
	}
}
