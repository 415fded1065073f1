package middleware

import (
	"net/http"

	"github.com/editalgen/editalgen/logger"
	"github.com/editalgen/editalgen/web/session"

	"github.com/gin-gonic/gin"
)

const (
	CSRFField  = "csrf_token"
	CSRFHeader = "X-CSRF-Token"
)

// CSRF rejects state changing requests whose token does not match the
// session's.
func CSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		token := c.GetHeader(CSRFHeader)
		if token == "" {
			token = c.PostForm(CSRFField)
		}
		if !session.CheckCSRF(c, token) {
			logger.Warningf("csrf check failed: %s %s from %s", c.Request.Method, c.Request.URL.Path, c.ClientIP())
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
