package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-wager-service/pkg/helpers"
	"github.com/oksasatya/go-wager-service/pkg/response"
)

const (
	CtxUsernameKey = "username"
	bearerPrefix   = "Bearer "
)

// Auth validates the bearer token and sets the token subject under
// CtxUsernameKey in the Gin context.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
			response.Error[any](c, http.StatusUnauthorized, "missing bearer token", nil)
			c.Abort()
			return
		}
		claims, err := jwt.Parse(strings.TrimSpace(header[len(bearerPrefix):]))
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid bearer token", nil)
			c.Abort()
			return
		}
		c.Set(CtxUsernameKey, claims.Username())
		c.Next()
	}
}
