package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal - общее количество запросов
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Общее количество HTTP запросов",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration - длительность запросов
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Длительность HTTP запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// RequestsInFlight - количество запросов в обработке
	RequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Текущее количество запросов в обработке",
		},
	)

	// SheetRequestsTotal - общее количество запросов к вебхуку таблицы
	SheetRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sheet_requests_total",
			Help: "Общее количество запросов к вебхуку таблицы",
		},
		[]string{"operation", "status", "cached"},
	)

	// SheetRequestDuration - длительность запросов к вебхуку таблицы
	SheetRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sheet_request_duration_seconds",
			Help:    "Длительность запросов к вебхуку таблицы в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "cached"},
	)

	// GatewayRequestsTotal - общее количество обращений к платежному шлюзу
	GatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_gateway_requests_total",
			Help: "Общее количество обращений к платежному шлюзу",
		},
		[]string{"operation", "status"},
	)

	// PendingBookingsGauge - количество ожидающих броней по последнему опросу
	PendingBookingsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pending_bookings",
			Help: "Количество броней в статусе Pending по последнему опросу",
		},
	)
)

// PrometheusMiddleware собирает метрики для HTTP запросов
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Увеличиваем счетчик запросов в обработке
		RequestsInFlight.Inc()
		defer RequestsInFlight.Dec()

		// Фиксируем время начала запроса
		start := time.Now()

		// Обрабатываем запрос
		c.Next()

		// Вычисляем длительность запроса
		duration := time.Since(start).Seconds()

		// Получаем статус код и эндпоинт
		status := strconv.Itoa(c.Writer.Status())
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}

		RequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(duration)
	}
}

// TrackSheetRequest отслеживает обращение к вебхуку таблицы
func TrackSheetRequest(operation string, status string, cached bool, duration time.Duration) {
	cachedStr := strconv.FormatBool(cached)
	SheetRequestsTotal.WithLabelValues(operation, status, cachedStr).Inc()
	SheetRequestDuration.WithLabelValues(operation, cachedStr).Observe(duration.Seconds())
}

// TrackGatewayRequest отслеживает обращение к платежному шлюзу
func TrackGatewayRequest(operation string, status string) {
	GatewayRequestsTotal.WithLabelValues(operation, status).Inc()
}
