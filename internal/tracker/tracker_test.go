package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sadid-rahin/luxury-comfort/internal/domain"
	"github.com/sadid-rahin/luxury-comfort/internal/models"
)

type fakeStore struct {
	rows  []models.Row
	err   error
	reads int
}

func (f *fakeStore) ReadAll(ctx context.Context) ([]models.Row, error) {
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeStore) Append(ctx context.Context, row models.Row) error {
	f.rows = append(f.rows, row)
	return nil
}

func (f *fakeStore) Update(ctx context.Context, row models.Row) error {
	return nil
}

func TestLookupMatchesRefIgnoringCaseAndSpaces(t *testing.T) {
	store := &fakeStore{rows: []models.Row{
		{"Source": "Web-1700000000001", "Status": "Pending", "Guest_name": "Omar"},
	}}
	tr := &Tracker{store: store, interval: time.Millisecond}

	record, found, err := tr.Lookup(context.Background(), "  web-1700000000001  ")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !found {
		t.Fatal("бронь не найдена")
	}
	if record.GuestName != "Omar" {
		t.Errorf("GuestName = %q, ожидалось Omar", record.GuestName)
	}
}

func TestLookupMissingRef(t *testing.T) {
	store := &fakeStore{rows: []models.Row{
		{"Source": "Web-1", "Status": "Pending"},
	}}
	tr := &Tracker{store: store, interval: time.Millisecond}

	_, found, err := tr.Lookup(context.Background(), "Web-2")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if found {
		t.Error("найдена несуществующая бронь")
	}
}

func TestLookupReadErrorIsTransient(t *testing.T) {
	store := &fakeStore{err: errors.New("таблица недоступна")}
	tr := &Tracker{store: store, interval: time.Millisecond}

	_, _, err := tr.Lookup(context.Background(), "Web-1")
	if !domain.IsSyncTransient(err) {
		t.Errorf("ожидалась SyncTransientError, получено %v", err)
	}
}

func TestRecoverByEmailPicksMostRecentNonCancelled(t *testing.T) {
	store := &fakeStore{rows: []models.Row{
		{"Source": "Web-1", "Email": "guest@example.com", "Status": "Host Confirmed"},
		{"Source": "Web-2", "Email": "other@example.com", "Status": "Pending"},
		{"Source": "Web-3", "Email": "guest@example.com", "Status": "Pending"},
		{"Source": "Web-4", "Email": "guest@example.com", "Status": "Cancelled"},
	}}
	tr := &Tracker{store: store, interval: time.Millisecond}

	record, found, err := tr.RecoverByEmail(context.Background(), "Guest@Example.COM")
	if err != nil {
		t.Fatalf("RecoverByEmail: %v", err)
	}
	if !found {
		t.Fatal("бронь не найдена по email")
	}
	if record.Ref != "Web-3" {
		t.Errorf("Ref = %q, ожидалось Web-3 (последняя неотмененная)", record.Ref)
	}
}

func TestRecoverByEmailEmptyEmail(t *testing.T) {
	tr := &Tracker{store: &fakeStore{}, interval: time.Millisecond}

	_, _, err := tr.RecoverByEmail(context.Background(), "   ")
	if !domain.IsValidation(err) {
		t.Errorf("ожидалась ValidationError, получено %v", err)
	}
}

func TestRecoverByEmailNoMatch(t *testing.T) {
	store := &fakeStore{rows: []models.Row{
		{"Source": "Web-1", "Email": "a@example.com", "Status": "Pending"},
	}}
	tr := &Tracker{store: store, interval: time.Millisecond}

	_, found, err := tr.RecoverByEmail(context.Background(), "b@example.com")
	if err != nil {
		t.Fatalf("RecoverByEmail: %v", err)
	}
	if found {
		t.Error("найдена бронь по чужому email")
	}
}

func TestTickStopsOnConfirmation(t *testing.T) {
	store := &fakeStore{rows: []models.Row{
		{"Source": "Web-1", "Status": "Host Confirmed", "Car_type": "SUV", "Price": 315},
	}}
	tr := &Tracker{store: store, interval: time.Millisecond}

	if done := tr.tick(context.Background(), "Web-1"); !done {
		t.Error("tick не завершил опрос после подтверждения")
	}
}

func TestTickStopsOnCancellation(t *testing.T) {
	store := &fakeStore{rows: []models.Row{
		{"Source": "Web-1", "Status": "Cancelled"},
	}}
	tr := &Tracker{store: store, interval: time.Millisecond}

	if done := tr.tick(context.Background(), "Web-1"); !done {
		t.Error("tick не завершил опрос после отмены")
	}
}

func TestTickContinuesWhilePending(t *testing.T) {
	store := &fakeStore{rows: []models.Row{
		{"Source": "Web-1", "Status": "Pending"},
	}}
	tr := &Tracker{store: store, interval: time.Millisecond}

	if done := tr.tick(context.Background(), "Web-1"); done {
		t.Error("tick завершил опрос при статусе Pending")
	}
}

func TestTickSwallowsTransientErrors(t *testing.T) {
	store := &fakeStore{err: errors.New("timeout")}
	tr := &Tracker{store: store, interval: time.Millisecond}

	if done := tr.tick(context.Background(), "Web-1"); done {
		t.Error("tick завершил опрос после временной ошибки")
	}
}

func TestWatchStopsOnContextCancel(t *testing.T) {
	store := &fakeStore{rows: []models.Row{
		{"Source": "Web-1", "Status": "Pending"},
	}}
	tr := &Tracker{store: store, interval: time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tr.Watch(ctx, "Web-1")
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Watch не остановился после отмены контекста")
	}
}

func TestWatchStopsAfterConfirmation(t *testing.T) {
	store := &fakeStore{rows: []models.Row{
		{"Source": "Web-1", "Status": "Host Confirmed"},
	}}
	tr := &Tracker{store: store, interval: time.Millisecond}

	done := make(chan struct{})
	go func() {
		tr.Watch(context.Background(), "Web-1")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Watch не остановился после подтверждения")
	}
	if store.reads == 0 {
		t.Error("Watch не опрашивал таблицу")
	}
}
