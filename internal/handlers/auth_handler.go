package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sadid-rahin/luxury-comfort/internal/models"
	"github.com/sadid-rahin/luxury-comfort/internal/utils"
)

// MinPasswordLength - минимальная длина пароля диспетчера
const MinPasswordLength = 6

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Token   string              `json:"token,omitempty"`
	Host    models.HostResponse `json:"host,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// HostRegister регистрирует учетную запись диспетчера
func HostRegister(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Printf("Ошибка валидации данных: %v", err)
			c.JSON(http.StatusBadRequest, AuthResponse{
				Success: false,
				Message: "Неверный формат данных",
				Error:   err.Error(),
			})
			return
		}

		if len(req.Password) < MinPasswordLength {
			c.JSON(http.StatusBadRequest, AuthResponse{
				Success: false,
				Message: "Пароль должен содержать не менее 6 символов",
			})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, AuthResponse{
				Success: false,
				Message: "Ошибка при обработке пароля",
			})
			return
		}

		host := models.Host{
			Email:        strings.ToLower(strings.TrimSpace(req.Email)),
			PasswordHash: string(hash),
		}

		if result := db.Create(&host); result.Error != nil {
			// 23505 - нарушение уникальности email в Postgres
			var pqErr *pq.Error
			if errors.As(result.Error, &pqErr) && pqErr.Code == "23505" {
				c.JSON(http.StatusBadRequest, AuthResponse{
					Success: false,
					Message: "Этот email уже зарегистрирован",
				})
				return
			}
			log.Printf("Ошибка при создании учетной записи: %v", result.Error)
			c.JSON(http.StatusInternalServerError, AuthResponse{
				Success: false,
				Message: "Ошибка при создании учетной записи",
			})
			return
		}

		token, err := utils.GenerateJWT(host.ID, host.Email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, AuthResponse{
				Success: false,
				Message: "Ошибка при создании токена",
			})
			return
		}

		c.JSON(http.StatusOK, AuthResponse{
			Success: true,
			Token:   token,
			Host:    host.ToResponse(),
		})
	}
}

// HostLogin проверяет учетные данные и выдает токен
func HostLogin(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, AuthResponse{
				Success: false,
				Message: "Неверный формат данных",
				Error:   err.Error(),
			})
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		var host models.Host
		if result := db.Where("email = ?", email).First(&host); result.Error != nil {
			// Не раскрываем, существует ли учетная запись
			c.JSON(http.StatusUnauthorized, AuthResponse{
				Success: false,
				Message: "Неверный email или пароль",
			})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(host.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, AuthResponse{
				Success: false,
				Message: "Неверный email или пароль",
			})
			return
		}

		token, err := utils.GenerateJWT(host.ID, host.Email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, AuthResponse{
				Success: false,
				Message: "Ошибка при создании токена",
			})
			return
		}

		c.JSON(http.StatusOK, AuthResponse{
			Success: true,
			Token:   token,
			Host:    host.ToResponse(),
		})
	}
}

// GetCurrentHost возвращает данные текущего диспетчера по токену
func GetCurrentHost(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		hostID := c.GetUint("host_id")

		var host models.Host
		if err := db.First(&host, hostID).Error; err != nil {
			c.JSON(http.StatusNotFound, AuthResponse{
				Success: false,
				Message: "Учетная запись не найдена",
			})
			return
		}

		c.JSON(http.StatusOK, AuthResponse{
			Success: true,
			Host:    host.ToResponse(),
		})
	}
}
