package middleware

import (
	"net/http"
	"strings"

	"github.com/editalgen/editalgen/database/model"
	"github.com/editalgen/editalgen/web/entity"

	"github.com/gin-gonic/gin"
)

// TokenParser resolves a bearer token to its user.
type TokenParser interface {
	ParseToken(token string) (*model.User, error)
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// BearerAuth authenticates API requests. A user already placed in the
// context by the session check is accepted as is; otherwise the
// Authorization header must carry a valid token.
func BearerAuth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) != nil {
			c.Next()
			return
		}
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, entity.Msg{Msg: "authentication required"})
			return
		}
		user, err := parser.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, entity.Msg{Msg: "invalid token"})
			return
		}
		SetUser(c, user)
		c.Next()
	}
}
