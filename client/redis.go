package client

import (
	"context"
	"fmt"
	"log"
	"status-monitor/config"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

var (
	rdb   *redis.Client
	rOnce sync.Once
)

// OpenRedis parses uri, connects and pings within ctx.
func OpenRedis(ctx context.Context, uri string) (*redis.Client, error) {
	opts, err := redis.ParseURL(uri)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 5 * time.Second
	opts.WriteTimeout = 5 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func ConnectRedis() *redis.Client {
	rOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var err error
		rdb, err = OpenRedis(ctx, config.AppConfig.RedisURI)
		if err != nil {
			log.Fatal("Redis connection failed:", err)
		}
	})
	return rdb
}
