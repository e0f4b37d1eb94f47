package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "storefront:rl"

// go-redis のうち使う分だけ
type cmdable interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// 固定ウィンドウのレート制限。最初のINCRでTTLを張る
type FixedWindow struct {
	store  cmdable
	limit  int64
	window time.Duration
}

// DI
func NewFixedWindow(store cmdable, limit int64, window time.Duration) *FixedWindow {
	return &FixedWindow{store: store, limit: limit, window: window}
}

// 接続してPINGまで確認する
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// scope+id ごとにカウントする。戻り値は (許可, 現在のカウント)
func (l *FixedWindow) Allow(ctx context.Context, scope string, id string) (bool, int64, error) {
	key := fmt.Sprintf("%s:%s:%s", keyPrefix, scope, id)

	count, err := l.store.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	if count == 1 && l.window > 0 {
		if err := l.store.Expire(ctx, key, l.window).Err(); err != nil {
			return false, count, err
		}
	}
	return count <= l.limit, count, nil
}
