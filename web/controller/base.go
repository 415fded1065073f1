// Package controller provides the HTTP handlers of the edital web panel and
// its JSON API.
package controller

import (
	"errors"
	"net/http"

	"github.com/editalgen/editalgen/logger"
	"github.com/editalgen/editalgen/web/locale"
	"github.com/editalgen/editalgen/web/middleware"
	"github.com/editalgen/editalgen/web/service"
	"github.com/editalgen/editalgen/web/session"

	"github.com/gin-gonic/gin"
)

// BaseController provides the login checks shared by every controller.
type BaseController struct {
	userService service.UserService
}

// loadUser resolves the session user against the database so deleted
// accounts and role changes apply at once. It reports whether a user is
// logged in.
func (a *BaseController) loadUser(c *gin.Context) bool {
	sessUser := session.GetLoginUser(c)
	if sessUser == nil {
		return false
	}
	user, err := a.userService.GetUser(sessUser.Id)
	if err != nil {
		if !errors.Is(err, service.ErrNotFound) {
			logger.Warning("load session user failed:", err)
		}
		_ = session.ClearSession(c)
		return false
	}
	middleware.SetUser(c, user)
	return true
}

// checkLogin is a middleware that sends anonymous visitors to the login
// page.
func (a *BaseController) checkLogin(c *gin.Context) {
	if a.loadUser(c) {
		c.Next()
		return
	}
	if isAjax(c) {
		pureJsonMsg(c, http.StatusUnauthorized, false, I18nWeb(c, "pages.login.loginAgain"))
	} else {
		flash(c, session.Warning, "pages.login.loginRequired")
		redirect(c, "login")
	}
	c.Abort()
}

// trySession loads the session user if there is one and always continues.
func (a *BaseController) trySession(c *gin.Context) {
	a.loadUser(c)
	c.Next()
}

// I18nWeb translates key for the language of the current request.
func I18nWeb(c *gin.Context, name string, params ...string) string {
	return locale.Localize(locale.FromContext(c), name, params...)
}
