// Package redis caches catalog items in front of the item repository.
// Redis is an accelerator only: every Redis failure falls back to the
// wrapped repository.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ordersvc/config"
	"ordersvc/domain/catalog"
	"ordersvc/domain/shared"
	"ordersvc/infrastructure/persistence"
	"ordersvc/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const itemKeyPrefix = "ordersvc:item:"

func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// cachedItem is the stored form; the aggregate itself has no exported fields.
type cachedItem struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Price     shared.Money `json:"price"`
	Deleted   bool         `json:"deleted"`
	Version   int          `json:"version"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// CachedItemRepository is a read-through cache for FindByID. Save
// invalidates the key after the wrapped repository accepted the write.
type CachedItemRepository struct {
	next   catalog.Repository
	client redis.Cmdable
	ttl    time.Duration
}

func NewCachedItemRepository(next catalog.Repository, client redis.Cmdable, ttl time.Duration) *CachedItemRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedItemRepository{next: next, client: client, ttl: ttl}
}

func (r *CachedItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	if err := r.next.Save(ctx, item); err != nil {
		return err
	}
	if err := r.client.Del(ctx, itemKey(item.ID())).Err(); err != nil {
		logger.Warn("Failed to invalidate cached item", zap.String("item_id", item.ID()), zap.Error(err))
	}
	return nil
}

func (r *CachedItemRepository) FindByID(ctx context.Context, id string) (*catalog.Item, error) {
	key := itemKey(id)
	data, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached cachedItem
		if err := json.Unmarshal(data, &cached); err == nil {
			return catalog.RebuildFromDTO(catalog.ReconstructionDTO(cached)), nil
		}
		logger.Warn("Discarding unreadable cached item", zap.String("item_id", id))
	case !errors.Is(err, redis.Nil):
		logger.Warn("Item cache unavailable", zap.String("item_id", id), zap.Error(err))
	}

	item, err := r.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Reads inside a transaction may see uncommitted state.
	if persistence.TxFromContext(ctx) == nil {
		r.store(ctx, key, item)
	}
	return item, nil
}

// FindAll is not cached; listings change with every catalog write.
func (r *CachedItemRepository) FindAll(ctx context.Context, page shared.PageRequest) (shared.Page[*catalog.Item], error) {
	return r.next.FindAll(ctx, page)
}

func (r *CachedItemRepository) store(ctx context.Context, key string, item *catalog.Item) {
	data, err := json.Marshal(cachedItem(item.ToDTO()))
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		logger.Debug("Failed to cache item", zap.String("item_id", item.ID()), zap.Error(err))
	}
}

func itemKey(id string) string {
	return itemKeyPrefix + id
}

var _ catalog.Repository = (*CachedItemRepository)(nil)
