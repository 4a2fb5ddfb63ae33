package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"woocommerce/migrator/internal/domain"

	"github.com/redis/go-redis/v9"
)

// redisStore keeps report bodies in a hash and their ids, newest first, in a list.
type redisStore struct {
	redisClient *redis.Client
	hashKey     string
	indexKey    string
	limit       int
}

func NewRedisStore(redisClient *redis.Client, keyPrefix string, limit int) Store {
	if limit <= 0 {
		limit = 100
	}
	return &redisStore{
		redisClient: redisClient,
		hashKey:     keyPrefix + "reports",
		indexKey:    keyPrefix + "reports:index",
		limit:       limit,
	}
}

func (s *redisStore) Save(ctx context.Context, report *domain.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report %s: %w", report.ID, err)
	}

	exists, err := s.redisClient.HExists(ctx, s.hashKey, report.ID).Result()
	if err != nil {
		return fmt.Errorf("failed to check report %s: %w", report.ID, err)
	}

	_, err = s.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.hashKey, report.ID, data)
		if !exists {
			pipe.LPush(ctx, s.indexKey, report.ID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save report %s: %w", report.ID, err)
	}

	return s.evict(ctx)
}

func (s *redisStore) evict(ctx context.Context) error {
	stale, err := s.redisClient.LRange(ctx, s.indexKey, int64(s.limit), -1).Result()
	if err != nil {
		return fmt.Errorf("failed to read report index: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	_, err = s.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LTrim(ctx, s.indexKey, 0, int64(s.limit-1))
		pipe.HDel(ctx, s.hashKey, stale...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to evict old reports: %w", err)
	}
	return nil
}

func (s *redisStore) Get(ctx context.Context, id string) (*domain.Report, error) {
	val, err := s.redisClient.HGet(ctx, s.hashKey, id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get report %s: %w", id, err)
	}

	var report domain.Report
	if err := json.Unmarshal([]byte(val), &report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", id, err)
	}
	return &report, nil
}

func (s *redisStore) List(ctx context.Context, limit int) ([]*domain.Report, error) {
	if limit <= 0 || limit > s.limit {
		limit = s.limit
	}

	ids, err := s.redisClient.LRange(ctx, s.indexKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read report index: %w", err)
	}
	if len(ids) == 0 {
		return []*domain.Report{}, nil
	}

	values, err := s.redisClient.HMGet(ctx, s.hashKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get reports: %w", err)
	}

	reports := make([]*domain.Report, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue // evicted between LRANGE and HMGET
		}
		var report domain.Report
		if err := json.Unmarshal([]byte(raw), &report); err != nil {
			return nil, fmt.Errorf("failed to decode report %s: %w", ids[i], err)
		}
		reports = append(reports, &report)
	}
	return reports, nil
}
