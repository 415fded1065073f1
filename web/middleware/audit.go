package middleware

import (
	"github.com/editalgen/editalgen/database/model"
	"github.com/editalgen/editalgen/logger"
	"github.com/editalgen/editalgen/web/service"

	"github.com/gin-gonic/gin"
)

// AuditEntry describes an action a handler wants recorded.
type AuditEntry struct {
	Action     string
	Resource   string
	ResourceId int
	Details    map[string]any
	// User overrides the context user, for login and logout.
	User *model.User
}

// Audit marks the request for recording once the handler returns.
func Audit(c *gin.Context, entry AuditEntry) {
	c.Set(auditKey, entry)
}

// AuditMiddleware writes the entry set by Audit, if any. Failures are
// logged and never affect the response.
func AuditMiddleware() gin.HandlerFunc {
	auditService := service.AuditLogService{}

	return func(c *gin.Context) {
		c.Next()

		v, ok := c.Get(auditKey)
		if !ok {
			return
		}
		entry := v.(AuditEntry)
		user := entry.User
		if user == nil {
			user = CurrentUser(c)
		}
		if user == nil {
			return
		}

		details := map[string]any{
			"method": c.Request.Method,
			"route":  c.FullPath(),
		}
		if id := GetRequestID(c); id != "" {
			details["requestId"] = id
		}
		for k, v := range entry.Details {
			details[k] = v
		}

		if err := auditService.LogAction(
			user.Id,
			user.Username,
			entry.Action,
			entry.Resource,
			entry.ResourceId,
			c.ClientIP(),
			c.GetHeader("User-Agent"),
			details,
		); err != nil {
			logger.Warning("audit log failed:", err)
		}
	}
}
