package middleware

import (
	"net/http"
	"strconv"

	"github.com/calyx/image-service/api/common"
	"github.com/calyx/image-service/database/models"
	"github.com/gin-gonic/gin"
)

// RequireRole 检查用户是否具有指定的角色
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get(ContextRoleKey)
		if !exists {
			common.RespondError(c, http.StatusForbidden, "Access denied. Role information not found.")
			c.Abort()
			return
		}

		role, ok := roleVal.(string)
		if !ok {
			common.RespondError(c, http.StatusInternalServerError, "Internal error: invalid role type in context.")
			c.Abort()
			return
		}

		for _, allowed := range allowedRoles {
			if role == allowed {
				c.Next()
				return
			}
		}

		common.RespondError(c, http.StatusForbidden, "Access denied. You do not have the required role to access this resource.")
		c.Abort()
	}
}

// RequireAccountScope 校验路径中的 accountId 属于当前用户
// 管理员可访问任意账户作用域
func RequireAccountScope(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, err := strconv.ParseUint(c.Param(param), 10, 64)
		if err != nil {
			common.RespondError(c, http.StatusBadRequest, "Invalid account ID in path")
			c.Abort()
			return
		}

		if c.GetString(ContextRoleKey) == models.RoleAdmin {
			c.Next()
			return
		}

		if c.GetUint(ContextUserIDKey) != uint(accountID) {
			common.RespondError(c, http.StatusForbidden, "Access denied. You can only access your own account scope.")
			c.Abort()
			return
		}

		c.Next()
	}
}
