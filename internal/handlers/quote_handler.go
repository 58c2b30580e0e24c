package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sadid-rahin/luxury-comfort/internal/domain"
	"github.com/sadid-rahin/luxury-comfort/internal/fare"
	"github.com/sadid-rahin/luxury-comfort/internal/models"
)

// QuoteRequest - параметры поездки из формы бронирования
type QuoteRequest struct {
	CarType       string `json:"carType" binding:"required"`
	Zone          string `json:"zone"`
	Hourly        bool   `json:"hourly"`
	Hours         int    `json:"hours"`
	Destination   string `json:"destination"`
	PickupDate    string `json:"pickupDate"` // ГГГГ-ММ-ДД
	PickupTime    string `json:"pickupTime"` // ЧЧ:ММ
	PaymentMethod string `json:"paymentMethod"`
	ExtraStops    int    `json:"extraStops"`
}

// toFareInput собирает вход тарифного движка из запроса формы.
func (r QuoteRequest) toFareInput() (fare.Input, error) {
	method, ok := models.ParsePaymentMethod(r.PaymentMethod)
	if !ok {
		return fare.Input{}, domain.ValidationError{
			Field: "paymentMethod",
			Msg:   fmt.Sprintf("неизвестный способ оплаты %q", r.PaymentMethod),
		}
	}

	var pickupAt time.Time
	if r.PickupDate != "" && r.PickupTime != "" {
		if t, err := time.Parse("2006-01-02 15:04", r.PickupDate+" "+r.PickupTime); err == nil {
			pickupAt = t
		}
	}

	// Канонизируем класс сразу: дальше по нему идут и тариф, и вместимость.
	// Неизвестный класс оставляем как есть, его отклонит тарифный движок.
	carType := models.VehicleClass(r.CarType)
	if class, ok := models.ParseVehicleClass(r.CarType); ok {
		carType = class
	}

	return fare.Input{
		CarType:     carType,
		Zone:        r.Zone,
		Hourly:      r.Hourly,
		Hours:       r.Hours,
		Destination: r.Destination,
		PickupAt:    pickupAt,
		Method:      method,
		ExtraStops:  r.ExtraStops,
	}, nil
}

// GetQuote считает стоимость поездки. Цена всегда считается на сервере,
// клиентская цифра носит справочный характер.
func GetQuote() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req QuoteRequest
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

		c.JSON(http.StatusOK, gin.H{
			"breakdown":    breakdown,
			"chargeAmount": breakdown.ChargeAmount(in.Method),
			"capacity":     models.CapacityFor(in.CarType),
		})
	}
}

// GetFleet возвращает автопарк и зоны тарифной таблицы для формы бронирования
func GetFleet() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"fleet": models.FleetData,
			"zones": fare.Zones(),
		})
	}
}

// respondDomainError переводит доменные ошибки в HTTP статусы.
func respondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err), domain.IsConfiguration(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case domain.IsPaymentDeclined(err):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case domain.IsGatewayUnavailable(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case domain.IsSubmissionFailed(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case domain.IsSyncTransient(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
