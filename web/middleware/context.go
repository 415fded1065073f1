// Package middleware holds the gin middleware shared by the web and API
// routes: authentication, role checks, CSRF, request ids and auditing.
package middleware

import (
	"github.com/editalgen/editalgen/database/model"

	"github.com/gin-gonic/gin"
)

const (
	userKey  = "user"
	auditKey = "audit"
)

// SetUser stores the authenticated user for the rest of the chain.
func SetUser(c *gin.Context, user *model.User) {
	c.Set(userKey, user)
}

// CurrentUser returns the user stored by SetUser, or nil.
func CurrentUser(c *gin.Context) *model.User {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(*model.User); ok {
			return user
		}
	}
	return nil
}
