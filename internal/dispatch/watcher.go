package dispatch

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/sadid-rahin/luxury-comfort/internal/middleware"
	"github.com/sadid-rahin/luxury-comfort/internal/tracker"
	"github.com/sadid-rahin/luxury-comfort/internal/websocket"
)

// DefaultWatchInterval - период опроса таблицы диспетчерским наблюдателем.
// Совпадает с периодом гостевого трекера: оба читают одну таблицу.
const DefaultWatchInterval = tracker.DefaultPollInterval

// Watcher следит за числом ожидающих броней и уведомляет подключенных
// диспетчеров о новых заявках.
type Watcher struct {
	service     *Service
	interval    time.Duration
	lastPending int
	primed      bool
}

// NewWatcher создает наблюдатель. Период можно переопределить через
// DISPATCH_POLL_INTERVAL (в секундах).
func NewWatcher(service *Service) *Watcher {
	interval := DefaultWatchInterval
	if raw := os.Getenv("DISPATCH_POLL_INTERVAL"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			interval = time.Duration(seconds) * time.Second
		}
	}
	return &Watcher{service: service, interval: interval}
}

// Run опрашивает таблицу до отмены контекста. Ошибки чтения пропускаются,
// следующий тик повторит попытку.
func (w *Watcher) Run(ctx context.Context) {
	log.Printf("Запуск наблюдателя диспетчерской (период %s)", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("Наблюдатель диспетчерской остановлен: %v", ctx.Err())
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

// tick пересчитывает ожидающие брони. Уведомление уходит только при росте
// числа заявок: подтверждения и отмены счетчик уменьшают молча. Первый
// замер задает базу и уведомлений не шлет.
func (w *Watcher) tick(ctx context.Context) {
	pending, err := w.service.PendingBookings(ctx)
	if err != nil {
		log.Printf("Опрос ожидающих броней: %v", err)
		return
	}

	count := len(pending)
	middleware.PendingBookingsGauge.Set(float64(count))

	if w.primed && count > w.lastPending {
		log.Printf("Новые заявки: %d -> %d, уведомляем диспетчеров", w.lastPending, count)
		websocket.SendNewPendingBookings(count)
	}
	w.lastPending = count
	w.primed = true
}
