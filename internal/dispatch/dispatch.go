package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/sadid-rahin/luxury-comfort/internal/domain"
	"github.com/sadid-rahin/luxury-comfort/internal/fare"
	"github.com/sadid-rahin/luxury-comfort/internal/models"
	"github.com/sadid-rahin/luxury-comfort/internal/sheet"
)

// Service - операции диспетчерского терминала поверх таблицы броней.
type Service struct {
	store sheet.Store
}

// NewService создает сервис диспетчерской
func NewService(store sheet.Store) *Service {
	return &Service{store: store}
}

// ListBookings возвращает все брони в порядке таблицы.
func (s *Service) ListBookings(ctx context.Context) ([]models.BookingRecord, error) {
	rows, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, domain.SyncTransientError{Err: err}
	}
	records := make([]models.BookingRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, models.RecordFromRow(row))
	}
	return records, nil
}

// PendingBookings возвращает брони, ожидающие назначения водителя.
// Статус сравнивается без учета регистра.
func (s *Service) PendingBookings(ctx context.Context) ([]models.BookingRecord, error) {
	rows, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, domain.SyncTransientError{Err: err}
	}
	pending := make([]models.BookingRecord, 0)
	for _, row := range rows {
		if row.Status() == models.BookingStatusPending {
			pending = append(pending, models.RecordFromRow(row))
		}
	}
	return pending, nil
}

// DispatchRequest - данные назначения водителя на бронь.
type DispatchRequest struct {
	Ref           string `json:"ref" binding:"required"`
	DriverName    string `json:"driverName" binding:"required"`
	VehicleNumber string `json:"vehicleNumber"`
	WaitMinutes   int    `json:"waitMinutes"`
}

// Dispatch назначает водителя и подтверждает бронь. Телефон и номер машины
// подставляются из ростера; номер можно переопределить вручную. Плата за
// ожидание считается отдельной строкой, цена поездки не пересчитывается.
// При ошибке записи бронь остается в прежнем статусе.
func (s *Service) Dispatch(ctx context.Context, req DispatchRequest) (models.BookingRecord, error) {
	record, err := s.findPending(ctx, req.Ref)
	if err != nil {
		return models.BookingRecord{}, err
	}

	if driver, ok := models.FindDriver(req.DriverName); ok {
		record.DriverName = driver.Name
		record.DriverPhone = driver.Phone
		record.VehicleNum = driver.Plate
	} else {
		// Водитель вне ростера: телефон и машину не угадываем
		record.DriverName = strings.TrimSpace(req.DriverName)
		record.DriverPhone = ""
		record.VehicleNum = ""
	}
	if v := strings.TrimSpace(req.VehicleNumber); v != "" {
		record.VehicleNum = v
	}

	record.WaitMinutes = req.WaitMinutes
	record.WaitFee = fare.WaitingFee(req.WaitMinutes)
	record.Status = models.BookingStatusHostConfirmed

	// Гостя уведомит его трекер, когда увидит новый статус при опросе
	if err := s.store.Update(ctx, record.ToRow()); err != nil {
		return models.BookingRecord{}, err
	}
	return record, nil
}

// CancelRequest - отмена брони. Флаг Confirm обязателен: отмена
// необратима, и случайный клик по кнопке не должен ее проводить.
type CancelRequest struct {
	Ref     string `json:"ref" binding:"required"`
	Confirm bool   `json:"confirm"`
}

// Cancel отменяет ожидающую бронь после явного подтверждения.
func (s *Service) Cancel(ctx context.Context, req CancelRequest) (models.BookingRecord, error) {
	if !req.Confirm {
		return models.BookingRecord{}, domain.ValidationError{Field: "confirm", Msg: "отмена требует подтверждения"}
	}

	record, err := s.findPending(ctx, req.Ref)
	if err != nil {
		return models.BookingRecord{}, err
	}

	record.Status = models.BookingStatusCancelled
	if err := s.store.Update(ctx, record.ToRow()); err != nil {
		return models.BookingRecord{}, err
	}
	return record, nil
}

// findPending находит бронь по идентификатору и проверяет, что ее еще
// можно менять.
func (s *Service) findPending(ctx context.Context, ref string) (models.BookingRecord, error) {
	if strings.TrimSpace(ref) == "" {
		return models.BookingRecord{}, domain.ValidationError{Field: "ref", Msg: "не указан идентификатор брони"}
	}

	rows, err := s.store.ReadAll(ctx)
	if err != nil {
		return models.BookingRecord{}, domain.SyncTransientError{Err: err}
	}

	for _, row := range rows {
		if !row.MatchesRef(ref) {
			continue
		}
		record := models.RecordFromRow(row)
		if record.Status.IsTerminal() {
			return models.BookingRecord{}, domain.ValidationError{
				Field: "status",
				Msg:   fmt.Sprintf("бронь %s уже в статусе %s", record.Ref, record.Status),
			}
		}
		return record, nil
	}
	return models.BookingRecord{}, domain.ValidationError{Field: "ref", Msg: fmt.Sprintf("бронь %s не найдена", ref)}
}
