package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sadid-rahin/luxury-comfort/internal/dispatch"
	"github.com/sadid-rahin/luxury-comfort/internal/models"
)

// ListBookings возвращает все брони для диспетчерского терминала
func ListBookings(svc *dispatch.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := svc.ListBookings(c.Request.Context())
		if err != nil {
			respondDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"bookings": records})
	}
}

// ListPendingBookings возвращает брони, ожидающие назначения
func ListPendingBookings(svc *dispatch.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := svc.PendingBookings(c.Request.Context())
		if err != nil {
			respondDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"bookings": records, "count": len(records)})
	}
}

// DispatchBooking назначает водителя и подтверждает бронь
func DispatchBooking(svc *dispatch.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dispatch.DispatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
			return
		}

		record, err := svc.Dispatch(c.Request.Context(), req)
		if err != nil {
			respondDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "booking": record})
	}
}

// CancelBooking отменяет ожидающую бронь. Запрос без флага подтверждения
// отклоняется.
func CancelBooking(svc *dispatch.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dispatch.CancelRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
			return
		}

		record, err := svc.Cancel(c.Request.Context(), req)
		if err != nil {
			respondDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "booking": record})
	}
}

// GetDriverRoster возвращает ростер водителей для формы назначения
func GetDriverRoster() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"drivers": models.DriverRoster})
	}
}
