package middleware

import (
	"net/http"

	"github.com/editalgen/editalgen/database/model"

	"github.com/gin-gonic/gin"
)

// RoleRequired lets the request through only when the current user has one
// of roles. Otherwise deny runs, or a bare 403 when deny is nil.
func RoleRequired(deny gin.HandlerFunc, roles ...model.Role) gin.HandlerFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		if !allowed[user.Role] {
			if deny != nil {
				deny(c)
			} else {
				c.Status(http.StatusForbidden)
			}
			c.Abort()
			return
		}
		c.Next()
	}
}
