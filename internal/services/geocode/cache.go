package geocode

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

// CacheService кэширует результаты геокодирования в Redis: координаты подачи
// повторяются, а внешний геокодер ограничен по частоте запросов.
type CacheService struct {
	redisClient *redis.Client
	ttl         time.Duration
	enabled     bool
}

// NewCacheService создает сервис кэширования геокодирования.
func NewCacheService() *CacheService {
	cacheEnabled := os.Getenv("CACHE_ENABLED") == "true"

	if !cacheEnabled {
		return &CacheService{
			enabled: false,
		}
	}

	ttl := 86400 // 1 день по умолчанию
	if cacheDuration := os.Getenv("GEOCODE_CACHE_DURATION"); cacheDuration != "" {
		if val, err := strconv.Atoi(cacheDuration); err == nil && val > 0 {
			ttl = val
		}
	}

	client, err := db.NewRedisClient()
	if err != nil {
		log.Printf("Redis недоступен, кэш геокодирования выключен: %v", err)
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

// GenerateKey генерирует ключ кэша для пары координат.
func (c *CacheService) GenerateKey(lat, lon float64) string {
	return fmt.Sprintf("geocode:%f:%f", lat, lon)
}

// Close закрывает соединение с Redis.
func (c *CacheService) Close() error {
	if c.enabled {
		return c.redisClient.Close()
	}
	return nil
}
