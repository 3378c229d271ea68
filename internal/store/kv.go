// Package store 提供统一的 KV 抽象（Redis 实现），用于 OCR 结果的内容哈希缓存
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrMiss 缓存未命中
var ErrMiss = errors.New("cache miss")

// KV 键值存储接口
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// ContentHash 文件内容的 SHA-256 哈希，作为 OCR 缓存键
// 同一张证件照片不论何时上传都命中同一条缓存
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// RedisKV Redis 实现
type RedisKV struct {
	c *redis.Client
}

func NewRedisKV(c *redis.Client) *RedisKV { return &RedisKV{c: c} }

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := r.c.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrMiss
		}
		return "", err
	}
	return val, nil
}

func (r *RedisKV) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.c.Set(ctx, key, value, ttl).Err()
}

func (r *RedisKV) Del(ctx context.Context, key string) error {
	return r.c.Del(ctx, key).Err()
}
