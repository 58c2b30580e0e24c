package tracker

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sadid-rahin/luxury-comfort/internal/domain"
	"github.com/sadid-rahin/luxury-comfort/internal/models"
	"github.com/sadid-rahin/luxury-comfort/internal/sheet"
	"github.com/sadid-rahin/luxury-comfort/internal/websocket"
)

// DefaultPollInterval - период опроса таблицы при ожидании подтверждения
const DefaultPollInterval = 4 * time.Second

// Tracker следит за статусом брони после отправки: опрашивает таблицу,
// пока диспетчер не подтвердит или не отменит бронь.
type Tracker struct {
	store    sheet.Store
	interval time.Duration
}

// NewTracker создает трекер статуса брони. Период опроса можно
// переопределить через TRACKER_POLL_INTERVAL (в секундах).
func NewTracker(store sheet.Store) *Tracker {
	interval := DefaultPollInterval
	if raw := os.Getenv("TRACKER_POLL_INTERVAL"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			interval = time.Duration(seconds) * time.Second
		}
	}
	return &Tracker{store: store, interval: interval}
}

// Lookup возвращает запись брони по идентификатору. Сравнение без учета
// регистра и крайних пробелов.
func (t *Tracker) Lookup(ctx context.Context, ref string) (models.BookingRecord, bool, error) {
	rows, err := t.store.ReadAll(ctx)
	if err != nil {
		return models.BookingRecord{}, false, domain.SyncTransientError{Err: err}
	}
	for _, row := range rows {
		if row.MatchesRef(ref) {
			return models.RecordFromRow(row), true, nil
		}
	}
	return models.BookingRecord{}, false, nil
}

// RecoverByEmail находит последнюю неотмененную бронь по email гостя.
// Строки добавляются в конец таблицы, поэтому идем с конца.
func (t *Tracker) RecoverByEmail(ctx context.Context, email string) (models.BookingRecord, bool, error) {
	rows, err := t.store.ReadAll(ctx)
	if err != nil {
		return models.BookingRecord{}, false, domain.SyncTransientError{Err: err}
	}

	want := strings.ToLower(strings.TrimSpace(email))
	if want == "" {
		return models.BookingRecord{}, false, domain.ValidationError{Field: "email", Msg: "не указан email"}
	}

	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		got := strings.ToLower(strings.TrimSpace(row.Get(models.FieldGuestEmail, "")))
		if got != want {
			continue
		}
		if row.Status() == models.BookingStatusCancelled {
			continue
		}
		return models.RecordFromRow(row), true, nil
	}
	return models.BookingRecord{}, false, nil
}

// Watch опрашивает таблицу, пока бронь не подтвердят. Подтверждение
// разовое: после отправки уведомления опрос прекращается. Ошибки
// синхронизации не прерывают опрос, следующий тик повторит чтение.
// Тики идут строго по одному: новый не начинается, пока не завершился
// предыдущий.
func (t *Tracker) Watch(ctx context.Context, ref string) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("Отслеживание брони %s остановлено: %v", ref, ctx.Err())
			return
		case <-ticker.C:
			done := t.tick(ctx, ref)
			if done {
				return
			}
		}
	}
}

// tick выполняет один опрос. Возвращает true, когда опрос пора завершать.
func (t *Tracker) tick(ctx context.Context, ref string) bool {
	record, found, err := t.Lookup(ctx, ref)
	if err != nil {
		if domain.IsSyncTransient(err) {
			log.Printf("Опрос брони %s: %v", ref, err)
			return false
		}
		log.Printf("Ошибка при опросе брони %s: %v", ref, err)
		return false
	}
	if !found {
		// Вебхук мог еще не дописать строку, ждем следующий тик
		return false
	}

	switch record.Status {
	case models.BookingStatusHostConfirmed:
		log.Printf("Бронь %s подтверждена, отправляем квитанцию гостю", ref)
		websocket.SendBookingConfirmed(models.NewReceipt(record))
		return true
	case models.BookingStatusCancelled:
		log.Printf("Бронь %s отменена, опрос завершен", ref)
		return true
	default:
		return false
	}
}
