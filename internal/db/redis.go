package db

import (
	"context"
	"fmt"
	"os"

	"github.com/go-redis/redis/v8"
)

// NewRedisClient подключается к Redis по REDIS_HOST/REDIS_PORT. Клиент
// общий для кэша таблицы и кэша геокодера; при недоступном Redis оба
// работают без кэша.
func NewRedisClient() (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ошибка подключения к Redis: %w", err)
	}

	return client, nil
}
