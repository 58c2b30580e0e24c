package sheet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/sadid-rahin/luxury-comfort/internal/domain"
	"github.com/sadid-rahin/luxury-comfort/internal/middleware"
	"github.com/sadid-rahin/luxury-comfort/internal/models"
)

// Store - контракт внешнего хранилища строк (таблица за вебхуком Apps
// Script). Три операции, никакой атомарности сверх одного вызова.
type Store interface {
	ReadAll(ctx context.Context) ([]models.Row, error)
	Append(ctx context.Context, row models.Row) error
	Update(ctx context.Context, row models.Row) error
}

// Client ходит в вебхук таблицы по HTTP. Append и Update выполняются
// best-effort: подтверждения долговечности вебхук не дает, успехом считается
// отправка без транспортной ошибки.
type Client struct {
	webhookURL string
	httpClient *http.Client
	cache      *CacheService
}

// appendPayload - формат тела POST для добавления строк.
type appendPayload struct {
	Data []models.Row `json:"data"`
}

// updatePayload - формат тела POST для обновления строки по идентификатору.
type updatePayload struct {
	Action string     `json:"action"`
	Data   models.Row `json:"data"`
}

// NewClient создает клиент вебхука таблицы.
func NewClient(webhookURL string) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cache:      NewCacheService(),
	}
}

// NewClientFromEnv создает клиент по переменной окружения SHEET_WEBHOOK_URL.
func NewClientFromEnv() (*Client, error) {
	webhookURL := os.Getenv("SHEET_WEBHOOK_URL")
	if webhookURL == "" {
		return nil, fmt.Errorf("не задана переменная SHEET_WEBHOOK_URL")
	}
	return NewClient(webhookURL), nil
}

// ReadAll читает все строки таблицы. Короткий кэш в Redis гасит волну
// одинаковых запросов от параллельных поллеров.
func (c *Client) ReadAll(ctx context.Context) ([]models.Row, error) {
	var rows []models.Row

	found, err := c.cache.Get(ctx, readAllCacheKey, &rows)
	if err != nil {
		log.Printf("Ошибка при чтении кэша таблицы: %v", err)
	} else if found {
		middleware.TrackSheetRequest("read_all", "200", true, 0)
		return rows, nil
	}

	// Параметр t - защита от кэширования на стороне вебхука.
	reqURL, err := url.Parse(c.webhookURL)
	if err != nil {
		return nil, fmt.Errorf("некорректный адрес вебхука: %w", err)
	}
	q := reqURL.Query()
	q.Set("t", fmt.Sprintf("%d", time.Now().UnixMilli()))
	reqURL.RawQuery = q.Encode()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании запроса: %w", err)
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		middleware.TrackSheetRequest("read_all", "error", false, time.Since(start))
		return nil, fmt.Errorf("ошибка при чтении таблицы: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		middleware.TrackSheetRequest("read_all", "error", false, time.Since(start))
		return nil, fmt.Errorf("ошибка при чтении ответа таблицы: %w", err)
	}

	middleware.TrackSheetRequest("read_all", fmt.Sprintf("%d", resp.StatusCode), false, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("таблица вернула статус %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("ошибка при декодировании строк таблицы: %w", err)
	}

	if err := c.cache.Set(ctx, readAllCacheKey, rows); err != nil {
		log.Printf("Ошибка при сохранении строк таблицы в кэш: %v", err)
	}

	return rows, nil
}

// Append добавляет одну строку в конец таблицы.
func (c *Client) Append(ctx context.Context, row models.Row) error {
	if err := c.post(ctx, "append", appendPayload{Data: []models.Row{row}}); err != nil {
		return domain.SubmissionFailedError{Op: "append", Err: err}
	}
	c.invalidate(ctx)
	return nil
}

// Update перезаписывает строку, найденную вебхуком по идентификатору Source.
func (c *Client) Update(ctx context.Context, row models.Row) error {
	if err := c.post(ctx, "update", updatePayload{Action: "update", Data: row}); err != nil {
		return domain.SubmissionFailedError{Op: "update", Err: err}
	}
	c.invalidate(ctx)
	return nil
}

// post отправляет тело в вебхук и проверяет только транспортный результат.
func (c *Client) post(ctx context.Context, op string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ошибка при маршалинге данных: %w", err)
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("ошибка при создании запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		middleware.TrackSheetRequest(op, "error", false, time.Since(start))
		return fmt.Errorf("ошибка при отправке в таблицу: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	middleware.TrackSheetRequest(op, fmt.Sprintf("%d", resp.StatusCode), false, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("таблица вернула статус %d", resp.StatusCode)
	}
	return nil
}

// invalidate сбрасывает кэш чтения после записи, чтобы следующий опрос
// увидел свежие строки.
func (c *Client) invalidate(ctx context.Context) {
	if err := c.cache.Del(ctx, readAllCacheKey); err != nil {
		log.Printf("Ошибка при сбросе кэша таблицы: %v", err)
	}
}

// Close закрывает ресурсы клиента.
func (c *Client) Close() {
	if c.cache != nil {
		c.cache.Close()
	}
}
