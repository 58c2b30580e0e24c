package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const baseURL = "https://nominatim.openstreetmap.org"

// Client - клиент обратного геокодирования для автозаполнения поля подачи.
// Сервис вспомогательный: любая его ошибка означает откат на сырые
// координаты, а не ошибку бронирования.
type Client struct {
	httpClient   *http.Client
	cacheService *CacheService
	rateLimiter  *time.Ticker
}

// reverseResponse - ответ Nominatim на обратное геокодирование.
type reverseResponse struct {
	DisplayName string `json:"display_name"`
}

// NewClient создает клиент геокодирования.
func NewClient() *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		cacheService: NewCacheService(),
		rateLimiter:  time.NewTicker(time.Second), // Политика Nominatim: не чаще 1 запроса в секунду
	}
}

// ReverseGeocode превращает координаты в короткий адрес (первые три сегмента
// полного адреса). При любой ошибке вызывающий подставляет сырые координаты.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	cacheKey := c.cacheService.GenerateKey(lat, lon)

	var cached string
	found, err := c.cacheService.Get(ctx, cacheKey, &cached)
	if err != nil {
		log.Printf("Ошибка при чтении кэша геокодирования: %v", err)
	} else if found {
		return cached, nil
	}

	select {
	case <-c.rateLimiter.C:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	params := url.Values{}
	params.Add("format", "json")
	params.Add("lat", fmt.Sprintf("%f", lat))
	params.Add("lon", fmt.Sprintf("%f", lon))

	reqURL := fmt.Sprintf("%s/reverse?%s", baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("ошибка при создании запроса: %w", err)
	}
	req.Header.Set("User-Agent", "luxury-comfort-booking/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ошибка при обратном геокодировании: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ошибка при чтении ответа геокодера: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("геокодер вернул статус %d", resp.StatusCode)
	}

	var result reverseResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("ошибка при декодировании ответа геокодера: %w", err)
	}

	if result.DisplayName == "" {
		return "", fmt.Errorf("геокодер не нашел адрес")
	}

	short := ShortAddress(result.DisplayName)

	if err := c.cacheService.Set(ctx, cacheKey, short); err != nil {
		log.Printf("Ошибка при сохранении адреса в кэш: %v", err)
	}

	return short, nil
}

// ShortAddress укорачивает полный адрес до первых трех сегментов.
func ShortAddress(displayName string) string {
	parts := strings.Split(displayName, ",")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, ", ")
}

// CoordinateFallback - текст подачи из сырых координат, когда геокодер
// недоступен.
func CoordinateFallback(lat, lon float64) string {
	return fmt.Sprintf("%f, %f", lat, lon)
}

// Close закрывает ресурсы клиента.
func (c *Client) Close() {
	c.rateLimiter.Stop()
	if c.cacheService != nil {
		c.cacheService.Close()
	}
}
