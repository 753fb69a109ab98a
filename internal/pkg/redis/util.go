package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store 服务层使用的键值缓存
type Store interface {
	GetValue(ctx context.Context, key string) (string, error)
	SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DeleteKey(ctx context.Context, key string) error
}

type clientStore struct {
	rdb *redis.Client
}

// NewStore 基于指定客户端构造 Store
func NewStore(rdb *redis.Client) Store {
	return &clientStore{rdb: rdb}
}

// Default 基于全局客户端构造 Store
func Default() Store {
	return &clientStore{rdb: Rdb}
}

// GetValue 获取字符串类型的值, 键不存在时返回空串
func (s *clientStore) GetValue(ctx context.Context, key string) (string, error) {
	value, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// SetWithExpiration 设置键值对并设置过期时间
func (s *clientStore) SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return s.rdb.Set(ctx, key, value, expiration).Err()
}

// DeleteKey 删除一个键
func (s *clientStore) DeleteKey(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

// GetRdbClient 获取redis客户端
func GetRdbClient() *redis.Client {
	return Rdb
}
