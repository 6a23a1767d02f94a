package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/tsunderebot/covers/internal/model"
)

const (
	gridKeyPrefix  = "grid:"
	ownerKeyPrefix = "grids:owner:"
)

type redisGrid struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Name      string          `json:"name"`
	Manga     json.RawMessage `json:"manga"`
	CreatedAt time.Time       `json:"createdAt"`
}

// RedisRepository keeps each grid as a JSON string and indexes owners with a
// sorted set scored by creation time in milliseconds.
type RedisRepository struct {
	client *redis.Client
}

// NewRedis connects to Redis using a redis:// or rediss:// URL.
func NewRedis(ctx context.Context, redisURL string) (*RedisRepository, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisRepository{client: client}, nil
}

func gridKey(id string) string {
	return gridKeyPrefix + id
}

func ownerKey(userID string) string {
	return ownerKeyPrefix + userID
}

// CreateGrid stores grid and its owner index entry in one transaction.
func (r *RedisRepository) CreateGrid(ctx context.Context, grid *model.Grid) error {
	id := ulid.Make().String()

	payload, err := json.Marshal(redisGrid{
		ID:        id,
		UserID:    grid.UserID,
		Name:      grid.Name,
		Manga:     model.NormalizeManga(grid.Manga),
		CreatedAt: grid.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode grid: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, gridKey(id), payload, 0)
		pipe.ZAdd(ctx, ownerKey(grid.UserID), redis.Z{
			Score:  float64(grid.CreatedAt.UnixMilli()),
			Member: id,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create grid: %w", err)
	}

	grid.ID = id
	return nil
}

// ListGridsByOwner returns every grid owned by userID, newest first.
// Index entries whose grid key is gone are skipped.
func (r *RedisRepository) ListGridsByOwner(ctx context.Context, userID string) ([]*model.Grid, error) {
	ids, err := r.client.ZRevRange(ctx, ownerKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list grid ids: %w", err)
	}

	grids := make([]*model.Grid, 0, len(ids))
	if len(ids) == 0 {
		return grids, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = gridKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load grids: %w", err)
	}

	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var stored redisGrid
		if err := json.Unmarshal([]byte(s), &stored); err != nil {
			return nil, fmt.Errorf("failed to decode grid %s: %w", ids[i], err)
		}
		grids = append(grids, &model.Grid{
			ID:        stored.ID,
			UserID:    stored.UserID,
			Name:      stored.Name,
			Manga:     model.NormalizeManga(stored.Manga),
			CreatedAt: stored.CreatedAt.UTC(),
		})
	}

	return grids, nil
}

// Ping checks Redis connectivity.
func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the client.
func (r *RedisRepository) Close(context.Context) error {
	return r.client.Close()
}

// Backend reports BackendRedis.
func (r *RedisRepository) Backend() Backend {
	return BackendRedis
}
