package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/calyx/image-service/api/common"
	"github.com/calyx/image-service/internal/auth"
	"github.com/gin-gonic/gin"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
	ContextRoleKey     = "role"
)

// JWTAuth 校验 Bearer 访问令牌并将用户信息写入上下文
func JWTAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			common.RespondError(c, http.StatusUnauthorized, "No Authorization request header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			common.RespondError(c, http.StatusBadRequest, "Authorization field format error")
			c.Abort()
			return
		}

		if err := handleJwtAuth(c, jwtService, parts[1]); err != nil {
			common.RespondError(c, http.StatusUnauthorized, err.Error())
			c.Abort()
			return
		}

		c.Next()
	}
}

func handleJwtAuth(c *gin.Context, jwtService *auth.JWTService, token string) error {
	if jwtService == nil {
		return errors.New("JWT service not initialized")
	}

	claims, err := jwtService.ExtractClaims(token)
	if err != nil {
		return errors.New("invalid or expired token")
	}
	if claims.Type != "access" {
		return errors.New("token is not an access token")
	}
	if claims.UserID == 0 || claims.Username == "" {
		return errors.New("token claims incomplete")
	}

	role := claims.Role
	if role == "" {
		role = "user"
	}

	c.Set(ContextUserIDKey, claims.UserID)
	c.Set(ContextUsernameKey, claims.Username)
	c.Set(ContextRoleKey, role)

	return nil
}
