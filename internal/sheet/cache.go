package sheet

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/sadid-rahin/luxury-comfort/internal/db"
)

const readAllCacheKey = "sheet:read_all"

// CacheService - короткоживущий кэш чтения таблицы в Redis. При выключенном
// кэшировании все операции становятся no-op.
type CacheService struct {
	redisClient *redis.Client
	ttl         time.Duration
	enabled     bool
}

// NewCacheService создает сервис кэширования строк таблицы.
func NewCacheService() *CacheService {
	cacheEnabled := os.Getenv("CACHE_ENABLED") == "true"

	if !cacheEnabled {
		return &CacheService{
			enabled: false,
		}
	}

	// TTL короткий: строки нужны свежими для опроса каждые 4 секунды.
	ttl := 2
	if cacheDuration := os.Getenv("SHEET_CACHE_DURATION"); cacheDuration != "" {
		if val, err := strconv.Atoi(cacheDuration); err == nil && val > 0 {
			ttl = val
		}
	}

	client, err := db.NewRedisClient()
	if err != nil {
		log.Printf("Redis недоступен, кэш таблицы выключен: %v", err)
		return &CacheService{enabled: false}
	}

	return &CacheService{
		redisClient: client,
		ttl:         time.Duration(ttl) * time.Second,
		enabled:     true,
	}
}

// Get получает данные из кэша.
func (c *CacheService) Get(ctx context.Context, key string, result interface{}) (bool, error) {
	if !c.enabled {
		return false, nil
	}

	val, err := c.redisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		// Ключ не найден в кэше
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("ошибка при получении данных из кэша: %w", err)
	}

	if err := json.Unmarshal([]byte(val), result); err != nil {
		return false, fmt.Errorf("ошибка при десериализации данных из кэша: %w", err)
	}

	return true, nil
}

// Set сохраняет данные в кэш.
func (c *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	if !c.enabled {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("ошибка при сериализации данных для кэша: %w", err)
	}

	if err := c.redisClient.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("ошибка при сохранении данных в кэш: %w", err)
	}

	return nil
}

// Del удаляет ключ из кэша.
func (c *CacheService) Del(ctx context.Context, key string) error {
	if !c.enabled {
		return nil
	}
	return c.redisClient.Del(ctx, key).Err()
}

// Close закрывает соединение с Redis.
func (c *CacheService) Close() error {
	if c.enabled {
		return c.redisClient.Close()
	}
	return nil
}
