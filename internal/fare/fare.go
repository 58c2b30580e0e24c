package fare

import (
	"fmt"
	"math"
	"time"

	"github.com/sadid-rahin/luxury-comfort/internal/domain"
	"github.com/sadid-rahin/luxury-comfort/internal/models"
)

// Тарифные константы. Все суммы в целых AED.
const (
	StopFee            = 50   // Фиксированная плата за дополнительную остановку
	MaxExtraStops      = 3    // Максимум дополнительных остановок в форме
	NightStartHour     = 22   // Ночная надбавка действует с 22:00
	NightEndHour       = 6    // ... и до 06:00 (не включительно)
	NightRate          = 0.25 // Ночная надбавка 25% от промежуточной суммы
	CardRate           = 0.05 // Надбавка за оплату картой, до НДС
	VATRate            = 0.05 // НДС, начисляется последним
	DepositShare       = 0.25 // Доля депозита при бронировании с предоплатой 25%
	MinHourlyHours     = 3    // Минимальная длительность почасовой аренды
	HolidayMultiplier  = 1.5  // Праздничный множитель базового тарифа
	FreeWaitingMinutes = 60   // Бесплатное время ожидания водителя
)

// Базовые тарифы трансферов: зона -> класс автомобиля -> AED.
var zoneFares = map[string]map[models.VehicleClass]int{
	"ABU DHABI CITY HOTELS": {
		models.VehicleClassLexus:   120,
		models.VehicleClassSUV:     110,
		models.VehicleClassMiniBus: 150,
		models.VehicleClassViano:   250,
	},
	"DUBAI": {
		models.VehicleClassLexus:   300,
		models.VehicleClassSUV:     300,
		models.VehicleClassMiniBus: 450,
		models.VehicleClassViano:   600,
	},
}

// Почасовые тарифы для поездок вне тарифной таблицы, AED за час.
var hourlyRates = map[models.VehicleClass]int{
	models.VehicleClassLexus:   100,
	models.VehicleClassSUV:     120,
	models.VehicleClassMiniBus: 150,
	models.VehicleClassViano:   200,
}

// Zones возвращает список известных зон для формы бронирования.
func Zones() []string {
	zones := make([]string, 0, len(zoneFares))
	for z := range zoneFares {
		zones = append(zones, z)
	}
	return zones
}

// Input - параметры поездки для расчета. Любое изменение входа требует
// полного пересчета, частичных обновлений нет.
type Input struct {
	CarType     models.VehicleClass
	Zone        string // Зона из тарифной таблицы; пустая при почасовой аренде
	Hourly      bool   // Почасовая/произвольная поездка
	Hours       int    // Запрошенная длительность, часов
	Destination string // Произвольное направление при почасовой аренде
	PickupAt    time.Time
	Method      models.PaymentMethod
	ExtraStops  int
}

// Breakdown - разбивка стоимости. Показывается гостю и используется
// диспетчером при сверке депозитов, поэтому храним все слагаемые,
// а не только итог.
type Breakdown struct {
	Base         int `json:"base"`
	StopsFee     int `json:"stopsFee"`
	PeakFee      int `json:"peakFee"`
	CardFee      int `json:"cardFee"`
	VAT          int `json:"vat"`
	Total        int `json:"total"`
	Deposit      int `json:"deposit"`      // 25% от итога; 0, если депозит не выбран
	DueOnArrival int `json:"dueOnArrival"` // Остаток наличными по прибытии
	Hours        int `json:"hours"`        // Эффективная длительность почасовой поездки
}

// Quote считает разбивку стоимости поездки. Чистая функция: одинаковый вход
// всегда дает одинаковый итог.
func Quote(in Input) (Breakdown, error) {
	class, ok := models.ParseVehicleClass(string(in.CarType))
	if !ok {
		return Breakdown{}, domain.ConfigurationError{
			Field: "carType",
			Msg:   fmt.Sprintf("неизвестный класс автомобиля %q", in.CarType),
		}
	}
	in.CarType = class
	if in.ExtraStops < 0 || in.ExtraStops > MaxExtraStops {
		return Breakdown{}, domain.ValidationError{
			Field: "extraStops",
			Msg:   fmt.Sprintf("допустимо от 0 до %d остановок", MaxExtraStops),
		}
	}

	var b Breakdown

	// 1. Базовый тариф: строка тарифной таблицы либо почасовой расчет.
	// Нулевой базовый тариф для реальной поездки не допускается: лучше
	// явная ошибка конфигурации, чем молчаливый ноль.
	if in.Hourly || zoneFares[in.Zone] == nil {
		if !in.Hourly {
			return Breakdown{}, domain.ConfigurationError{
				Field: "zone",
				Msg:   fmt.Sprintf("нет тарифа для зоны %q", in.Zone),
			}
		}
		rate, ok := hourlyRates[in.CarType]
		if !ok {
			return Breakdown{}, domain.ConfigurationError{
				Field: "carType",
				Msg:   fmt.Sprintf("нет почасового тарифа для класса %q", in.CarType),
			}
		}
		b.Hours = in.Hours
		if b.Hours < MinHourlyHours {
			b.Hours = MinHourlyHours
		}
		b.Base = rate * b.Hours
	} else {
		base, ok := zoneFares[in.Zone][in.CarType]
		if !ok {
			return Breakdown{}, domain.ConfigurationError{
				Field: "carType",
				Msg:   fmt.Sprintf("нет тарифа класса %q для зоны %q", in.CarType, in.Zone),
			}
		}
		b.Base = base
	}

	// Праздничный множитель базового тарифа (24-26 и 31 декабря, 1 января).
	if isHoliday(in.PickupAt) {
		b.Base = roundAED(float64(b.Base) * HolidayMultiplier)
	}

	subtotal := b.Base

	// 2. Дополнительные остановки.
	b.StopsFee = in.ExtraStops * StopFee
	subtotal += b.StopsFee

	// 3. Ночная надбавка 25% при подаче в [22:00, 06:00).
	if isNight(in.PickupAt) {
		b.PeakFee = roundAED(float64(subtotal) * NightRate)
		subtotal += b.PeakFee
	}

	// 4. Надбавка за карту 5%. Строго до НДС: порядок меняет итог.
	if in.Method.IsCardLike() {
		b.CardFee = roundAED(float64(subtotal) * CardRate)
		subtotal += b.CardFee
	}

	// 5. НДС 5% последним.
	b.VAT = roundAED(float64(subtotal) * VATRate)
	subtotal += b.VAT

	b.Total = subtotal

	// Депозитный сценарий: 25% сейчас, остаток водителю. Остаток считается
	// от того же итога, никакого независимого пересчета.
	if in.Method == models.PaymentMethodDeposit {
		b.Deposit = roundAED(float64(b.Total) * DepositShare)
		b.DueOnArrival = b.Total - b.Deposit
	}

	return b, nil
}

// ChargeAmount - сумма к списанию через шлюз для данного способа оплаты.
func (b Breakdown) ChargeAmount(method models.PaymentMethod) int {
	switch method {
	case models.PaymentMethodDeposit:
		return b.Deposit
	case models.PaymentMethodCard:
		return b.Total
	default:
		return 0
	}
}

// WaitingFee считает штраф за ожидание водителя: первые 60 минут бесплатно,
// дальше 1 AED за минуту. Хранится отдельно от Price и никогда не
// подмешивается в него.
func WaitingFee(waitingMinutes int) int {
	if waitingMinutes <= FreeWaitingMinutes {
		return 0
	}
	return waitingMinutes - FreeWaitingMinutes
}

// HourlyDropoff собирает строку Drop_off для почасовой поездки: направление
// и эффективная длительность в одном поле, под существующую схему таблицы.
func HourlyDropoff(destination string, hours int) string {
	if hours < MinHourlyHours {
		hours = MinHourlyHours
	}
	return fmt.Sprintf("Hourly: %s (%dh)", destination, hours)
}

// isNight проверяет попадание подачи в ночное окно [22:00, 06:00).
func isNight(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	h := t.Hour()
	return h >= NightStartHour || h < NightEndHour
}

// isHoliday проверяет праздничные даты с повышенным тарифом.
func isHoliday(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	d, m := t.Day(), t.Month()
	if m == time.December && (d == 24 || d == 25 || d == 26 || d == 31) {
		return true
	}
	return m == time.January && d == 1
}

// roundAED округляет сумму до целого AED.
func roundAED(v float64) int {
	return int(math.Round(v))
}
