package middleware

import (
	"net/http"
	"strings"

	"github.com/sadid-rahin/luxury-comfort/internal/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuth пропускает только авторизованных диспетчеров. Сессия кладется в
// контекст запроса явно, глобального состояния авторизации нет.
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Отсутствует токен авторизации"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Неверный формат токена"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Недействительный токен"})
			c.Abort()
			return
		}

		// Сервисный токен для операционных задач
		if claims.Role == "ops" {
			c.Set("host_id", uint(0))
			c.Set("role", "ops")
			c.Next()
			return
		}

		if claims.HostID == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Недействительный ID диспетчера"})
			c.Abort()
			return
		}

		c.Set("host_id", claims.HostID)
		c.Set("host_email", claims.Email)
		c.Set("role", claims.Role)
		c.Next()
	}
}
