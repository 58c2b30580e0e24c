package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/sadid-rahin/luxury-comfort/internal/fare"
	"github.com/sadid-rahin/luxury-comfort/internal/models"
	"github.com/sadid-rahin/luxury-comfort/internal/services"
	"github.com/sadid-rahin/luxury-comfort/internal/sheet"
	"github.com/sadid-rahin/luxury-comfort/internal/tracker"
)

// SubmitBookingRequest - полная форма бронирования. Поле Ref заполняется
// только при повторной отправке после ошибки записи: платеж к тому моменту
// уже прошел, и заново списывать его нельзя.
type SubmitBookingRequest struct {
	QuoteRequest

	GuestName  string `json:"guestName" binding:"required"`
	GuestPhone string `json:"guestPhone" binding:"required"`
	GuestEmail string `json:"guestEmail" binding:"required,email"`
	Pickup     string `json:"pickup" binding:"required"`
	Dropoff    string `json:"dropoff"`
	Flight     string `json:"flight"`
	StopNames  string `json:"stopNames"`
	Agency     string `json:"agency"`

	Card services.CardDetails `json:"card"`

	Ref string `json:"ref"`
}

// submitInFlight не дает отправить одну бронь дважды, пока первая отправка
// еще не завершилась. Ключ - идентификатор брони при повторе; дубли первой
// отправки отсекает форма.
var submitInFlight sync.Map

// chargedPayments - проведенные на сервере платежи, чья бронь еще не
// записана в таблицу: идентификатор брони -> текст оплаты. Повтор отправки
// принимается только по идентификатору из этой карты, текст оплаты при
// повторе берется отсюда, а не из запроса клиента.
var chargedPayments sync.Map

// SubmitBooking проводит платеж и записывает бронь в таблицу. Порядок
// жесткий: сначала списание, потом запись. Отклоненный платеж бронь не
// создает; ошибка записи после успешного платежа возвращает гостю
// идентификатор и статус оплаты для повтора без повторного списания.
func SubmitBooking(appCtx context.Context, store sheet.Store, gateway services.PaymentGateway, tr *tracker.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SubmitBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
			return
		}

		in, err := req.toFareInput()
		if err != nil {
			respondDomainError(c, err)
			return
		}

		breakdown, err := fare.Quote(in)
		if err != nil {
			respondDomainError(c, err)
			return
		}

		var ref, paymentText string
		if req.Ref != "" {
			// Повтор после ошибки записи: платеж уже списан, текст оплаты
			// восстанавливаем по серверной записи, а не из тела запроса
			stored, ok := chargedPayments.Load(req.Ref)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Повтор не найден, отправьте бронь заново"})
				return
			}
			ref = req.Ref
			paymentText = stored.(string)
		} else {
			state, err := services.ChargeBooking(c.Request.Context(), gateway, breakdown, in.Method, req.Card, req.GuestName, req.GuestEmail)
			if err != nil {
				respondDomainError(c, err)
				return
			}
			ref = models.NewBookingRef()
			paymentText = state.String()
			chargedPayments.Store(ref, paymentText)
		}

		if _, loaded := submitInFlight.LoadOrStore(ref, true); loaded {
			c.JSON(http.StatusConflict, gin.H{"error": "Заявка уже отправляется"})
			return
		}
		defer submitInFlight.Delete(ref)

		record := buildRecord(req, breakdown, ref, paymentText)
		if err := store.Append(c.Request.Context(), record.ToRow()); err != nil {
			log.Printf("Ошибка записи брони %s: %v", ref, err)
			c.JSON(http.StatusBadGateway, gin.H{
				"error":   "Не удалось записать бронь, повторите отправку",
				"ref":     ref,
				"payment": paymentText,
			})
			return
		}

		chargedPayments.Delete(ref)

		// Подтверждение диспетчера придет гостю через WebSocket
		go tr.Watch(appCtx, ref)

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"ref":       ref,
			"breakdown": breakdown,
			"payment":   paymentText,
			"capacity":  models.CapacityFor(record.CarType),
		})
	}
}

// buildRecord собирает запись брони со статусом Pending.
func buildRecord(req SubmitBookingRequest, breakdown fare.Breakdown, ref, paymentText string) models.BookingRecord {
	dropoff := req.Dropoff
	if req.Hourly {
		dropoff = fare.HourlyDropoff(req.Destination, req.Hours)
	} else if dropoff == "" {
		dropoff = req.Zone
	}

	flight := strings.TrimSpace(req.Flight)
	if flight == "" {
		flight = models.FlightNotApplicable
	}
	stopNames := strings.TrimSpace(req.StopNames)
	if stopNames == "" {
		stopNames = "None"
	}

	// Класс уже проверен тарифным движком, здесь только канонизация
	class, _ := models.ParseVehicleClass(req.CarType)

	return models.BookingRecord{
		Ref:        ref,
		Date:       req.PickupDate,
		Time:       req.PickupTime,
		GuestName:  req.GuestName,
		GuestPhone: req.GuestPhone,
		GuestEmail: req.GuestEmail,
		Pickup:     req.Pickup,
		Dropoff:    dropoff,
		Flight:     flight,
		CarType:    class,
		ExtraStops: req.ExtraStops,
		StopNames:  stopNames,
		Payment:    paymentText,
		Price:      breakdown.Total,
		Status:     models.BookingStatusPending,
		Agency:     req.Agency,
	}
}

// GetBookingStatus возвращает текущее состояние брони с квитанцией.
func GetBookingStatus(tr *tracker.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ref := c.Param("ref")

		record, found, err := tr.Lookup(c.Request.Context(), ref)
		if err != nil {
			respondDomainError(c, err)
			return
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "Бронь не найдена"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  record.Status,
			"receipt": models.NewReceipt(record),
		})
	}
}

// RecoverBookingRequest - восстановление брони по email
type RecoverBookingRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// RecoverBooking находит последнюю активную бронь гостя по email.
func RecoverBooking(tr *tracker.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RecoverBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
			return
		}

		record, found, err := tr.RecoverByEmail(c.Request.Context(), req.Email)
		if err != nil {
			respondDomainError(c, err)
			return
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "Активных броней не найдено"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  record.Status,
			"receipt": models.NewReceipt(record),
		})
	}
}
