package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sadid-rahin/luxury-comfort/internal/services/geocode"
)

// ReverseGeocode превращает координаты гостя в адрес подачи. При ошибке
// геокодера возвращаются сырые координаты: форма остается рабочей.
func ReverseGeocode(client *geocode.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
		lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
		if latErr != nil || lonErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверные координаты"})
			return
		}

		address, err := client.ReverseGeocode(c.Request.Context(), lat, lon)
		if err != nil {
			log.Printf("Ошибка обратного геокодирования: %v", err)
			c.JSON(http.StatusOK, gin.H{
				"address":  geocode.CoordinateFallback(lat, lon),
				"fallback": true,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"address": address})
	}
}
