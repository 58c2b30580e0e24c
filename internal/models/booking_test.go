package models

import (
	"strings"
	"testing"
)

func TestRowGetAliasOrder(t *testing.T) {
	row := Row{
		"guest_name": "резерв",
		"Guest_name": "Иван",
		"Status":     "  pending ",
		"Price":      330.75,
	}
	if got := row.Get(FieldGuestName, "N/A"); got != "Иван" {
		t.Errorf("Get(guestName) = %q, ожидалось первое непустое имя колонки", got)
	}
	if got := row.Get(FieldFlight, "N/A"); got != "N/A" {
		t.Errorf("Get(flight) = %q, ожидался fallback", got)
	}
	if got := row.GetInt(FieldPrice, 0); got != 330 {
		t.Errorf("GetInt(price) = %d, ожидалось 330", got)
	}
	if got := row.Status(); got != BookingStatusPending {
		t.Errorf("Status() = %q, ожидалось Pending", got)
	}
}

func TestRowGetSkipsEmptyValues(t *testing.T) {
	row := Row{
		"Status": "   ",
		"status": "Host Confirmed",
	}
	if got := row.Status(); got != BookingStatusHostConfirmed {
		t.Errorf("Status() = %q: пустая колонка не должна затенять непустую", got)
	}
}

func TestMatchesRefIgnoresCaseAndSpace(t *testing.T) {
	row := Row{"Source": "  web-1700000000000 "}
	if !row.MatchesRef("Web-1700000000000") {
		t.Error("идентификаторы должны сравниваться без учета регистра и пробелов")
	}
	if row.MatchesRef("Web-1700000000001") {
		t.Error("разные идентификаторы не должны совпадать")
	}
}

func TestStatusTransitionsForwardOnly(t *testing.T) {
	if !BookingStatusPending.CanTransitionTo(BookingStatusHostConfirmed) {
		t.Error("Pending -> Host Confirmed должен быть разрешен")
	}
	if !BookingStatusPending.CanTransitionTo(BookingStatusCancelled) {
		t.Error("Pending -> Cancelled должен быть разрешен")
	}
	for _, terminal := range []BookingStatus{BookingStatusHostConfirmed, BookingStatusCancelled} {
		for _, next := range []BookingStatus{BookingStatusPending, BookingStatusHostConfirmed, BookingStatusCancelled} {
			if terminal.CanTransitionTo(next) {
				t.Errorf("%q -> %q: терминальный статус не должен меняться", terminal, next)
			}
		}
	}
	if !BookingStatusHostConfirmed.IsTerminal() || !BookingStatusCancelled.IsTerminal() {
		t.Error("Host Confirmed и Cancelled терминальны")
	}
	if BookingStatusPending.IsTerminal() {
		t.Error("Pending не терминален")
	}
}

func TestRecordRowRoundTrip(t *testing.T) {
	rec := BookingRecord{
		Ref:        "Web-1700000000000",
		Date:       "2025-03-10",
		Time:       "14:00",
		GuestName:  "Sara Khan",
		GuestPhone: "+971 50 000 0000",
		GuestEmail: "sara@example.com",
		Pickup:     "Airport T3",
		Dropoff:    "DUBAI",
		Flight:     "EK202",
		CarType:    VehicleClassSUV,
		ExtraStops: 2,
		StopNames:  "Mall, Marina",
		Payment:    "Cash",
		Price:      315,
		Status:     BookingStatusPending,
	}
	back := RecordFromRow(rec.ToRow())
	if back.Ref != rec.Ref || back.GuestName != rec.GuestName ||
		back.CarType != rec.CarType || back.Price != rec.Price ||
		back.Status != rec.Status || back.ExtraStops != rec.ExtraStops {
		t.Errorf("запись не пережила цикл ToRow/RecordFromRow: %+v", back)
	}
}

func TestRecordFromRowDefaults(t *testing.T) {
	rec := RecordFromRow(Row{"Source": "Web-1", "Status": "Pending"})
	if rec.Flight != FlightNotApplicable {
		t.Errorf("flight = %q, ожидалось %q", rec.Flight, FlightNotApplicable)
	}
	if rec.StopNames != "None" {
		t.Errorf("stopNames = %q, ожидалось None", rec.StopNames)
	}
	if rec.Payment != "Cash" {
		t.Errorf("payment = %q, ожидалось Cash", rec.Payment)
	}
	if rec.Price != 0 || rec.WaitMinutes != 0 || rec.WaitFee != 0 {
		t.Errorf("числовые поля должны падать в ноль: %+v", rec)
	}
}

func TestFindDriverRoster(t *testing.T) {
	d, ok := FindDriver("ahmed ali")
	if !ok {
		t.Fatal("водитель из ростера должен находиться без учета регистра")
	}
	if d.Phone == "" || d.Plate == "" {
		t.Errorf("у водителя из ростера заполнены телефон и номер: %+v", d)
	}
	if _, ok := FindDriver("Nobody"); ok {
		t.Error("промах по ростеру должен возвращать false")
	}
}

func TestNewBookingRefFormat(t *testing.T) {
	ref := NewBookingRef()
	if !strings.HasPrefix(ref, "Web-") {
		t.Errorf("идентификатор %q должен начинаться с Web-", ref)
	}
}

func TestParseVehicleClass(t *testing.T) {
	if c, ok := ParseVehicleClass(" suv "); !ok || c != VehicleClassSUV {
		t.Errorf("ParseVehicleClass(suv) = %q, %v", c, ok)
	}
	if _, ok := ParseVehicleClass("Tesla"); ok {
		t.Error("неизвестный класс не должен распознаваться")
	}
}

func TestCapacityFallback(t *testing.T) {
	if c := CapacityFor(VehicleClassMiniBus); c.Pax != 7 || c.Luggage != 6 {
		t.Errorf("capacity MiniBus = %+v", c)
	}
	if c := CapacityFor("Unknown"); c.Pax != 4 || c.Luggage != 2 {
		t.Errorf("capacity по умолчанию = %+v", c)
	}
}

func TestNewReceiptPaidByCard(t *testing.T) {
	cash := NewReceipt(BookingRecord{Payment: "Cash", CarType: VehicleClassLexus})
	if cash.PaidCard {
		t.Error("наличная бронь не помечается оплаченной картой")
	}
	card := NewReceipt(BookingRecord{Payment: "Card 100% prepaid (txn tx_1)", CarType: VehicleClassLexus})
	if !card.PaidCard {
		t.Error("карточная бронь должна помечаться оплаченной")
	}
}
