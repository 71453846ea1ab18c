package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const dialTimeout = 5 * time.Second

// Connect builds a client for the session store. Both redis:// URLs and bare
// host:port addresses are accepted; the connection is verified before return.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := clientOptions(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opt.Addr, err)
	}
	return client, nil
}

func clientOptions(redisURL string) (*redis.Options, error) {
	target := strings.TrimSpace(redisURL)
	if target == "" {
		return nil, fmt.Errorf("redis url is empty")
	}
	opt := &redis.Options{Addr: target}
	if strings.Contains(target, "://") {
		parsed, err := redis.ParseURL(target)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opt = parsed
	}
	if opt.DialTimeout == 0 {
		opt.DialTimeout = dialTimeout
	}
	return opt, nil
}
