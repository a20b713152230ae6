package delivery

import (
	"log/slog"
	"net/http"

	"recommend-backend/internal/auth/usecase"

	"github.com/gin-gonic/gin"
)

// UserKey is the gin context key holding the verified authdomain.Claims.
const UserKey = "user"

func AuthMiddleware(sessionUsecase usecase.SessionUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CookieName)
		if err != nil || token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized access"})
			c.Abort()
			return
		}

		claims, err := sessionUsecase.VerifySession(token)
		if err != nil {
			slog.Debug("session rejected", "path", c.FullPath(), "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized access"})
			c.Abort()
			return
		}

		c.Set(UserKey, claims)
		c.Next()
	}
}
