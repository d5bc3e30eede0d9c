// middleware/auth.go
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"leadline/config"
	"leadline/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ToolAuthMiddleware admits only callers holding a token signed with
// JWT_SECRET. Outside production an unset secret disables the check.
func ToolAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			if config.AppConfig.JWTSecret == "" && !config.IsProduction() {
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		subject, err := utils.ExtractIDFromToken(tokenString)
		if err != nil {
			if errors.Is(err, utils.ErrNoSecret) {
				utils.GetLogger().Error("Tool call rejected: JWT_SECRET not configured")
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set("caller", subject)
		utils.GetLogger().Debug("Tool call authorized", zap.String("caller", subject), zap.String("path", c.FullPath()))
		c.Next()
	}
}
