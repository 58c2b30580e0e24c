package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending       BookingStatus = "Pending"        // Ожидает назначения водителя
	BookingStatusHostConfirmed BookingStatus = "Host Confirmed" // Подтверждено диспетчером
	BookingStatusCancelled     BookingStatus = "Cancelled"      // Отменено
)

// ParseBookingStatus разбирает статус из таблицы без учета регистра и пробелов.
func ParseBookingStatus(raw string) BookingStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending":
		return BookingStatusPending
	case "host confirmed":
		return BookingStatusHostConfirmed
	case "cancelled":
		return BookingStatusCancelled
	default:
		return BookingStatus(strings.TrimSpace(raw))
	}
}

// CanTransitionTo проверяет допустимость перехода статуса. Переходы только
// вперед: Pending -> Host Confirmed или Pending -> Cancelled, терминальные
// статусы не меняются.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if s != BookingStatusPending {
		return false
	}
	return next == BookingStatusHostConfirmed || next == BookingStatusCancelled
}

// IsTerminal сообщает, завершен ли жизненный цикл брони.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusHostConfirmed || s == BookingStatusCancelled
}

type VehicleClass string

const (
	VehicleClassLexus   VehicleClass = "Lexus"
	VehicleClassSUV     VehicleClass = "SUV"
	VehicleClassMiniBus VehicleClass = "MiniBus"
	VehicleClassViano   VehicleClass = "Viano"
)

// FleetVehicle описывает позицию автопарка для формы бронирования.
type FleetVehicle struct {
	ID   VehicleClass `json:"id"`
	Name string       `json:"name"`
}

var FleetData = []FleetVehicle{
	{ID: VehicleClassLexus, Name: "Lexus ES300h (4 Seater)"},
	{ID: VehicleClassSUV, Name: "SUV / Highlander (7 Seater)"},
	{ID: VehicleClassMiniBus, Name: "Mini Bus (14 Seater)"},
	{ID: VehicleClassViano, Name: "Mercedes Viano (Mini Van)"},
}

// Capacity - вместимость класса автомобиля (пассажиры и багаж) для квитанции.
type Capacity struct {
	Pax     int `json:"pax"`
	Luggage int `json:"luggage"`
}

var fleetCapacity = map[VehicleClass]Capacity{
	VehicleClassLexus:   {Pax: 3, Luggage: 2},
	VehicleClassSUV:     {Pax: 5, Luggage: 5},
	VehicleClassMiniBus: {Pax: 7, Luggage: 6},
	VehicleClassViano:   {Pax: 7, Luggage: 6},
}

// CapacityFor возвращает вместимость класса. Для неизвестного класса
// используется значение по умолчанию, как в квитанции.
func CapacityFor(class VehicleClass) Capacity {
	if c, ok := fleetCapacity[class]; ok {
		return c
	}
	return Capacity{Pax: 4, Luggage: 2}
}

// ParseVehicleClass проверяет, что класс входит в автопарк.
func ParseVehicleClass(raw string) (VehicleClass, bool) {
	candidate := strings.TrimSpace(raw)
	for _, v := range FleetData {
		if strings.EqualFold(string(v.ID), candidate) {
			return v.ID, true
		}
	}
	return "", false
}

// Driver - водитель из фиксированного ростера диспетчерской.
type Driver struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Plate string `json:"plate"`
}

var DriverRoster = []Driver{
	{Name: "Ahmed Ali", Phone: "+971 50 123 4567", Plate: "DXB 55401"},
	{Name: "John Smith", Phone: "+971 55 987 6543", Plate: "AUH 11223"},
	{Name: "Muhammad Khan", Phone: "+971 52 333 4444", Plate: "SHJ 99887"},
}

// FindDriver ищет водителя в ростере по имени. При промахе возвращает false,
// чтобы телефон и номер машины остались пустыми, а не от прошлого выбора.
func FindDriver(name string) (Driver, bool) {
	for _, d := range DriverRoster {
		if strings.EqualFold(d.Name, strings.TrimSpace(name)) {
			return d, true
		}
	}
	return Driver{}, false
}

// FlightNotApplicable - значение по умолчанию для номера рейса.
const FlightNotApplicable = "N/A"

// NewBookingRef генерирует идентификатор брони. Присваивается ровно один раз
// при отправке и больше не пересчитывается.
func NewBookingRef() string {
	return fmt.Sprintf("Web-%d", time.Now().UnixMilli())
}

// Row - строка внешней таблицы как она приходит из вебхука. Наличие колонок
// не гарантируется, имена колонок встречаются в нескольких написаниях.
type Row map[string]interface{}

// Field - логическое имя поля брони.
type Field string

const (
	FieldRef         Field = "ref"
	FieldDate        Field = "date"
	FieldTime        Field = "time"
	FieldGuestName   Field = "guestName"
	FieldGuestPhone  Field = "guestPhone"
	FieldGuestEmail  Field = "guestEmail"
	FieldPickup      Field = "pickup"
	FieldDropoff     Field = "dropoff"
	FieldFlight      Field = "flight"
	FieldAgency      Field = "agency"
	FieldCarType     Field = "carType"
	FieldDriver      Field = "driver"
	FieldDriverPhone Field = "driverPhone"
	FieldVehicleNum  Field = "vehicleNumber"
	FieldStatus      Field = "status"
	FieldPrice       Field = "price"
	FieldPayment     Field = "payment"
	FieldExtraStops  Field = "extraStops"
	FieldStopNames   Field = "stopNames"
	FieldWaitTime    Field = "waitTime"
	FieldWaitFee     Field = "waitFee"
)

// fieldAliases - каноническая таблица соответствия: логическое поле ->
// упорядоченный список принимаемых имен колонок. Первое непустое значение
// выигрывает. Вся политика пробных имен собрана здесь, а не в местах вызова.
var fieldAliases = map[Field][]string{
	FieldRef:         {"Source", "source"},
	FieldDate:        {"Date", "date"},
	FieldTime:        {"Time", "time"},
	FieldGuestName:   {"Guest_name", "Guest Name", "guest_name"},
	FieldGuestPhone:  {"Guest_number", "Guest Number", "guest_number"},
	FieldGuestEmail:  {"Email", "email"},
	FieldPickup:      {"Pickup", "pickup"},
	FieldDropoff:     {"Drop_off", "Drop off", "Drop Off", "drop_off"},
	FieldFlight:      {"Flight", "flight"},
	FieldAgency:      {"Agency", "agency"},
	FieldCarType:     {"Car_type", "Car type", "car_type"},
	FieldDriver:      {"Driver", "driver"},
	FieldDriverPhone: {"Driver_number", "Driver number", "driver_number"},
	FieldVehicleNum:  {"Vehicle_number", "Vehicle number", "vehicle_number"},
	FieldStatus:      {"Status", "status", "STATUS"},
	FieldPrice:       {"Price", "price", "Amount", "amount"},
	FieldPayment:     {"Payment", "payment"},
	FieldExtraStops:  {"Extra_Stops", "Extra Stops", "extra_stops"},
	FieldStopNames:   {"Stop_Names", "Stop Names", "stop_names"},
	FieldWaitTime:    {"Wait_Time", "Wait Time", "wait_time"},
	FieldWaitFee:     {"Wait_Fee", "Wait Fee", "wait_fee"},
}

// Get возвращает первое присутствующее непустое значение поля по таблице
// псевдонимов, иначе fallback.
func (r Row) Get(field Field, fallback string) string {
	if r == nil {
		return fallback
	}
	for _, key := range fieldAliases[field] {
		if v, ok := r[key]; ok && v != nil {
			s := strings.TrimSpace(fmt.Sprintf("%v", v))
			if s != "" {
				return s
			}
		}
	}
	return fallback
}

// GetInt читает числовое поле, терпимо к строковым и дробным значениям
// из таблицы.
func (r Row) GetInt(field Field, fallback int) int {
	raw := r.Get(field, "")
	if raw == "" {
		return fallback
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int(f)
	}
	return fallback
}

// Status возвращает статус строки с нормализацией регистра.
func (r Row) Status() BookingStatus {
	return ParseBookingStatus(r.Get(FieldStatus, ""))
}

// MatchesRef сравнивает идентификатор строки без учета регистра и пробелов.
func (r Row) MatchesRef(ref string) bool {
	return strings.EqualFold(
		strings.TrimSpace(r.Get(FieldRef, "")),
		strings.TrimSpace(ref),
	)
}

// BookingRecord - каноническая форма брони, общая для гостя, таблицы и
// диспетчерской.
type BookingRecord struct {
	Ref         string        `json:"ref"`
	Date        string        `json:"date"`
	Time        string        `json:"time"`
	GuestName   string        `json:"guestName"`
	GuestPhone  string        `json:"guestPhone"`
	GuestEmail  string        `json:"guestEmail"`
	Pickup      string        `json:"pickup"`
	Dropoff     string        `json:"dropoff"`
	Flight      string        `json:"flight"`
	CarType     VehicleClass  `json:"carType"`
	ExtraStops  int           `json:"extraStops"`
	StopNames   string        `json:"stopNames"`
	Payment     string        `json:"payment"`
	Price       int           `json:"price"`
	Status      BookingStatus `json:"status"`
	Agency      string        `json:"agency"`
	DriverName  string        `json:"driverName"`
	DriverPhone string        `json:"driverPhone"`
	VehicleNum  string        `json:"vehicleNumber"`
	WaitMinutes int           `json:"waitMinutes"`
	WaitFee     int           `json:"waitFee"`
}

// RecordFromRow восстанавливает бронь из строки таблицы с учетом
// псевдонимов колонок и значений по умолчанию.
func RecordFromRow(row Row) BookingRecord {
	class, ok := ParseVehicleClass(row.Get(FieldCarType, string(VehicleClassLexus)))
	if !ok {
		class = VehicleClass(row.Get(FieldCarType, string(VehicleClassLexus)))
	}
	return BookingRecord{
		Ref:         row.Get(FieldRef, ""),
		Date:        row.Get(FieldDate, ""),
		Time:        row.Get(FieldTime, ""),
		GuestName:   row.Get(FieldGuestName, ""),
		GuestPhone:  row.Get(FieldGuestPhone, ""),
		GuestEmail:  row.Get(FieldGuestEmail, ""),
		Pickup:      row.Get(FieldPickup, ""),
		Dropoff:     row.Get(FieldDropoff, ""),
		Flight:      row.Get(FieldFlight, FlightNotApplicable),
		CarType:     class,
		ExtraStops:  row.GetInt(FieldExtraStops, 0),
		StopNames:   row.Get(FieldStopNames, "None"),
		Payment:     row.Get(FieldPayment, "Cash"),
		Price:       row.GetInt(FieldPrice, 0),
		Status:      row.Status(),
		Agency:      row.Get(FieldAgency, ""),
		DriverName:  row.Get(FieldDriver, ""),
		DriverPhone: row.Get(FieldDriverPhone, ""),
		VehicleNum:  row.Get(FieldVehicleNum, ""),
		WaitMinutes: row.GetInt(FieldWaitTime, 0),
		WaitFee:     row.GetInt(FieldWaitFee, 0),
	}
}

// ToRow сериализует бронь в строку таблицы. Имена колонок - канонические,
// под существующую схему таблицы.
func (b BookingRecord) ToRow() Row {
	return Row{
		"Date":           b.Date,
		"Time":           b.Time,
		"Guest_name":     b.GuestName,
		"Guest_number":   b.GuestPhone,
		"Email":          b.GuestEmail,
		"Pickup":         b.Pickup,
		"Drop_off":       b.Dropoff,
		"Flight":         b.Flight,
		"Source":         b.Ref,
		"Agency":         b.Agency,
		"Car_type":       string(b.CarType),
		"Driver":         b.DriverName,
		"Driver_number":  b.DriverPhone,
		"Vehicle_number": b.VehicleNum,
		"Status":         string(b.Status),
		"Price":          b.Price,
		"Payment":        b.Payment,
		"Extra_Stops":    b.ExtraStops,
		"Stop_Names":     b.StopNames,
		"Wait_Time":      b.WaitMinutes,
		"Wait_Fee":       b.WaitFee,
	}
}

// ReceiptResponse - квитанция, одинаковая для гостя и диспетчера:
// собирается из одной и той же записи.
type ReceiptResponse struct {
	Booking  BookingRecord `json:"booking"`
	Capacity Capacity      `json:"capacity"`
	PaidCard bool          `json:"paidByCard"`
}

// NewReceipt формирует квитанцию по записи брони.
func NewReceipt(b BookingRecord) ReceiptResponse {
	return ReceiptResponse{
		Booking:  b,
		Capacity: CapacityFor(b.CarType),
		PaidCard: strings.Contains(strings.ToLower(b.Payment), "card"),
	}
}
