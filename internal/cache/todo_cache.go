package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"todo-records/internal/domain"
)

const (
	keyList       = "todo:list"
	keyItemPrefix = "todo:item:"
)

// TodoCache caches the full todo list and individual records in Redis.
// Writes go through InvalidateList/InvalidateItem; a stale entry never
// outlives its TTL either way.
type TodoCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTodoCache returns a new TodoCache.
func NewTodoCache(rdb *redis.Client, ttl time.Duration) *TodoCache {
	return &TodoCache{rdb: rdb, ttl: ttl}
}

func itemKey(id int64) string {
	return keyItemPrefix + strconv.FormatInt(id, 10)
}

// GetList returns the cached list or nil on miss.
func (c *TodoCache) GetList(ctx context.Context) ([]domain.Todo, error) {
	b, err := c.rdb.Get(ctx, keyList).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []domain.Todo
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetList stores the list in cache.
func (c *TodoCache) SetList(ctx context.Context, list []domain.Todo) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyList, b, c.ttl).Err()
}

// GetItem returns the cached record for id, or nil on miss.
func (c *TodoCache) GetItem(ctx context.Context, id int64) (*domain.Todo, error) {
	b, err := c.rdb.Get(ctx, itemKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var todo domain.Todo
	if err := json.Unmarshal(b, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// SetItem stores one record in cache.
func (c *TodoCache) SetItem(ctx context.Context, todo domain.Todo) error {
	b, err := json.Marshal(todo)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, itemKey(todo.ID), b, c.ttl).Err()
}

// Invalidate removes the list key and the item key for id. Called on every
// write path before the response is returned.
func (c *TodoCache) Invalidate(ctx context.Context, id int64) error {
	return c.rdb.Del(ctx, keyList, itemKey(id)).Err()
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
