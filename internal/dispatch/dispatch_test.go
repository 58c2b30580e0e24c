package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/sadid-rahin/luxury-comfort/internal/domain"
	"github.com/sadid-rahin/luxury-comfort/internal/models"
	"github.com/sadid-rahin/luxury-comfort/internal/tracker"
)

type fakeStore struct {
	rows      []models.Row
	readErr   error
	updateErr error
	updated   []models.Row
}

func (f *fakeStore) ReadAll(ctx context.Context) ([]models.Row, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.rows, nil
}

func (f *fakeStore) Append(ctx context.Context, row models.Row) error {
	f.rows = append(f.rows, row)
	return nil
}

func (f *fakeStore) Update(ctx context.Context, row models.Row) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, row)
	return nil
}

func pendingRow(ref string) models.Row {
	return models.Row{
		"Source":   ref,
		"Status":   "Pending",
		"Car_type": "SUV",
		"Price":    280,
		"Payment":  "Cash",
	}
}

func TestPendingBookingsFiltersByStatus(t *testing.T) {
	store := &fakeStore{rows: []models.Row{
		{"Source": "Web-1", "Status": "pending"},
		{"Source": "Web-2", "Status": "Host Confirmed"},
		{"Source": "Web-3", "Status": "PENDING"},
		{"Source": "Web-4", "Status": "Cancelled"},
	}}
	s := NewService(store)

	pending, err := s.PendingBookings(context.Background())
	if err != nil {
		t.Fatalf("PendingBookings: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("ожидалось 2 ожидающих брони, получено %d", len(pending))
	}
	if pending[0].Ref != "Web-1" || pending[1].Ref != "Web-3" {
		t.Errorf("неверный состав: %q, %q", pending[0].Ref, pending[1].Ref)
	}
}

func TestDispatchFillsDriverFromRoster(t *testing.T) {
	store := &fakeStore{rows: []models.Row{pendingRow("Web-1")}}
	s := NewService(store)

	record, err := s.Dispatch(context.Background(), DispatchRequest{
		Ref:        "Web-1",
		DriverName: "ahmed ali",
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if record.DriverName != "Ahmed Ali" {
		t.Errorf("DriverName = %q", record.DriverName)
	}
	if record.DriverPhone != "+971 50 123 4567" {
		t.Errorf("DriverPhone = %q", record.DriverPhone)
	}
	if record.VehicleNum != "DXB 55401" {
		t.Errorf("VehicleNum = %q", record.VehicleNum)
	}
	if record.Status != models.BookingStatusHostConfirmed {
		t.Errorf("Status = %q", record.Status)
	}
	if len(store.updated) != 1 {
		t.Fatalf("ожидалась одна запись в таблицу, получено %d", len(store.updated))
	}
}

func TestDispatchUnknownDriverLeavesContactsBlank(t *testing.T) {
	store := &fakeStore{rows: []models.Row{pendingRow("Web-1")}}
	s := NewService(store)

	record, err := s.Dispatch(context.Background(), DispatchRequest{
		Ref:        "Web-1",
		DriverName: "Свободный водитель",
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if record.DriverPhone != "" || record.VehicleNum != "" {
		t.Errorf("контакты должны быть пустыми: phone=%q vehicle=%q", record.DriverPhone, record.VehicleNum)
	}
}

func TestDispatchVehicleOverride(t *testing.T) {
	store := &fakeStore{rows: []models.Row{pendingRow("Web-1")}}
	s := NewService(store)

	record, err := s.Dispatch(context.Background(), DispatchRequest{
		Ref:           "Web-1",
		DriverName:    "Ahmed Ali",
		VehicleNumber: "DXB 77777",
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if record.VehicleNum != "DXB 77777" {
		t.Errorf("VehicleNum = %q, ожидалось переопределение", record.VehicleNum)
	}
}

func TestDispatchWaitingFeeDoesNotChangePrice(t *testing.T) {
	store := &fakeStore{rows: []models.Row{pendingRow("Web-1")}}
	s := NewService(store)

	record, err := s.Dispatch(context.Background(), DispatchRequest{
		Ref:         "Web-1",
		DriverName:  "John Smith",
		WaitMinutes: 90,
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if record.WaitFee != 30 {
		t.Errorf("WaitFee = %d, ожидалось 30", record.WaitFee)
	}
	if record.Price != 280 {
		t.Errorf("Price = %d, цена поездки не должна меняться", record.Price)
	}
}

func TestDispatchWriteFailureLeavesStatusUnchanged(t *testing.T) {
	store := &fakeStore{
		rows:      []models.Row{pendingRow("Web-1")},
		updateErr: errors.New("вебхук недоступен"),
	}
	s := NewService(store)

	if _, err := s.Dispatch(context.Background(), DispatchRequest{
		Ref:        "Web-1",
		DriverName: "Ahmed Ali",
	}); err == nil {
		t.Fatal("ожидалась ошибка записи")
	}

	// Повторная попытка должна пройти: бронь все еще Pending
	store.updateErr = nil
	if _, err := s.Dispatch(context.Background(), DispatchRequest{
		Ref:        "Web-1",
		DriverName: "Ahmed Ali",
	}); err != nil {
		t.Fatalf("повторная попытка: %v", err)
	}
}

func TestDispatchRejectsTerminalBooking(t *testing.T) {
	store := &fakeStore{rows: []models.Row{
		{"Source": "Web-1", "Status": "Host Confirmed"},
	}}
	s := NewService(store)

	_, err := s.Dispatch(context.Background(), DispatchRequest{Ref: "Web-1", DriverName: "Ahmed Ali"})
	if !domain.IsValidation(err) {
		t.Errorf("ожидалась ValidationError, получено %v", err)
	}
}

func TestCancelPendingBooking(t *testing.T) {
	store := &fakeStore{rows: []models.Row{pendingRow("Web-1")}}
	s := NewService(store)

	record, err := s.Cancel(context.Background(), CancelRequest{Ref: "web-1", Confirm: true})
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if record.Status != models.BookingStatusCancelled {
		t.Errorf("Status = %q", record.Status)
	}
}

func TestCancelWithoutConfirmRejected(t *testing.T) {
	store := &fakeStore{rows: []models.Row{pendingRow("Web-1")}}
	s := NewService(store)

	_, err := s.Cancel(context.Background(), CancelRequest{Ref: "Web-1"})
	if !domain.IsValidation(err) {
		t.Fatalf("ожидалась ValidationError, получено %v", err)
	}
	if len(store.updated) != 0 {
		t.Errorf("неподтвержденная отмена не должна писать в таблицу")
	}
}

func TestCancelMissingBooking(t *testing.T) {
	store := &fakeStore{}
	s := NewService(store)

	_, err := s.Cancel(context.Background(), CancelRequest{Ref: "Web-404", Confirm: true})
	if !domain.IsValidation(err) {
		t.Errorf("ожидалась ValidationError, получено %v", err)
	}
}

func TestWatcherIntervalMatchesTracker(t *testing.T) {
	w := NewWatcher(NewService(&fakeStore{}))
	if w.interval != tracker.DefaultPollInterval {
		t.Errorf("interval = %s, наблюдатель и трекер опрашивают таблицу с одним периодом", w.interval)
	}
}

func TestWatcherNotifiesOnlyOnIncrease(t *testing.T) {
	store := &fakeStore{rows: []models.Row{pendingRow("Web-1")}}
	w := NewWatcher(NewService(store))

	// Первый замер задает базу
	w.tick(context.Background())
	if !w.primed || w.lastPending != 1 {
		t.Fatalf("после первого тика primed=%v lastPending=%d", w.primed, w.lastPending)
	}

	// Рост числа заявок
	store.rows = append(store.rows, pendingRow("Web-2"))
	w.tick(context.Background())
	if w.lastPending != 2 {
		t.Errorf("lastPending = %d, ожидалось 2", w.lastPending)
	}

	// Подтверждение уменьшает счетчик без уведомления
	store.rows = []models.Row{pendingRow("Web-2")}
	w.tick(context.Background())
	if w.lastPending != 1 {
		t.Errorf("lastPending = %d, ожидалось 1", w.lastPending)
	}
}

func TestWatcherSkipsTickOnReadError(t *testing.T) {
	store := &fakeStore{rows: []models.Row{pendingRow("Web-1")}}
	w := NewWatcher(NewService(store))
	w.tick(context.Background())

	store.readErr = errors.New("timeout")
	w.tick(context.Background())
	if w.lastPending != 1 {
		t.Errorf("lastPending = %d, счетчик не должен меняться при ошибке", w.lastPending)
	}
}
