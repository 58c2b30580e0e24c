package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sadid-rahin/luxury-comfort/internal/dispatch"
	"github.com/sadid-rahin/luxury-comfort/internal/handlers"
	"github.com/sadid-rahin/luxury-comfort/internal/middleware"
	"github.com/sadid-rahin/luxury-comfort/internal/services"
	"github.com/sadid-rahin/luxury-comfort/internal/services/geocode"
	"github.com/sadid-rahin/luxury-comfort/internal/sheet"
	"github.com/sadid-rahin/luxury-comfort/internal/tracker"
	"github.com/sadid-rahin/luxury-comfort/internal/websocket"
)

// Deps - зависимости маршрутов, собираются в main
type Deps struct {
	AppCtx   context.Context
	DB       *gorm.DB
	Store    sheet.Store
	Gateway  services.PaymentGateway
	Tracker  *tracker.Tracker
	Dispatch *dispatch.Service
	Geocoder *geocode.Client
}

func SetupRoutes(api *gin.RouterGroup, deps Deps) {
	// Публичные маршруты для аутентификации диспетчеров
	auth := api.Group("/auth")
	{
		auth.POST("/register", handlers.HostRegister(deps.DB))
		auth.POST("/login", handlers.HostLogin(deps.DB))
	}

	// Публичные маршруты формы бронирования
	api.GET("/fleet", handlers.GetFleet())
	api.POST("/quote", handlers.GetQuote())
	api.POST("/bookings", handlers.SubmitBooking(deps.AppCtx, deps.Store, deps.Gateway, deps.Tracker))
	api.GET("/bookings/:ref", handlers.GetBookingStatus(deps.Tracker))
	api.POST("/bookings/recover", handlers.RecoverBooking(deps.Tracker))
	api.GET("/geo/reverse", handlers.ReverseGeocode(deps.Geocoder))

	// WebSocket для гостя, ждущего подтверждения брони
	api.GET("/ws", websocket.GuestHandler())

	// Защищенные маршруты диспетчерского терминала
	protected := api.Group("")
	protected.Use(middleware.JWTAuth())
	{
		protected.GET("/host", handlers.GetCurrentHost(deps.DB))

		protected.GET("/dispatch/bookings", handlers.ListBookings(deps.Dispatch))
		protected.GET("/dispatch/pending", handlers.ListPendingBookings(deps.Dispatch))
		protected.POST("/dispatch/assign", handlers.DispatchBooking(deps.Dispatch))
		protected.POST("/dispatch/cancel", handlers.CancelBooking(deps.Dispatch))
		protected.GET("/dispatch/drivers", handlers.GetDriverRoster())

		// WebSocket терминала: уведомления о новых заявках
		protected.GET("/dispatch/ws", websocket.HostHandler())
	}
}
