package controller

import (
	"errors"
	"strings"

	"github.com/editalgen/editalgen/database/model"
	"github.com/editalgen/editalgen/logger"
	"github.com/editalgen/editalgen/web/entity"
	"github.com/editalgen/editalgen/web/middleware"
	"github.com/editalgen/editalgen/web/service"
	"github.com/editalgen/editalgen/web/session"

	"github.com/gin-gonic/gin"
)

type LoginForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// IndexController handles login, registration and logout.
type IndexController struct {
	BaseController

	settingService service.SettingService
}

func NewIndexController(g *gin.RouterGroup) *IndexController {
	a := &IndexController{}
	a.initRouter(g)
	return a
}

func (a *IndexController) initRouter(g *gin.RouterGroup) {
	g.GET("/", a.index)
	g.GET("/login", a.index)
	g.POST("/login", a.login)
	g.GET("/logout", a.logout)
	g.GET("/register", a.registerPage)
	g.POST("/register", a.register)
}

func (a *IndexController) index(c *gin.Context) {
	if a.loadUser(c) {
		redirect(c, "panel/")
		return
	}
	html(c, "login.html", "pages.login.title", nil)
}

func (a *IndexController) login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		flash(c, session.Danger, "pages.login.toasts.invalidFormData")
		html(c, "login.html", "pages.login.title", nil)
		return
	}
	form.Username = strings.TrimSpace(form.Username)
	if form.Username == "" || form.Password == "" {
		flash(c, session.Danger, "pages.login.toasts.emptyCredentials")
		html(c, "login.html", "pages.login.title", gin.H{"username": form.Username})
		return
	}

	user := a.userService.CheckUser(form.Username, form.Password)
	if user == nil {
		logger.Warningf("wrong username or password: %q, IP: %s", form.Username, c.ClientIP())
		flash(c, session.Danger, "pages.login.toasts.wrongUsernameOrPassword")
		html(c, "login.html", "pages.login.title", gin.H{"username": form.Username})
		return
	}

	sessionMaxAge, err := a.settingService.GetSessionMaxAge()
	if err != nil {
		logger.Warning("unable to get session max age:", err)
	}
	if sessionMaxAge > 0 {
		_ = session.SetMaxAge(c, sessionMaxAge*60)
	}
	if err := session.SetLoginUser(c, user); err != nil {
		logger.Warning("unable to save session:", err)
	}
	middleware.Audit(c, middleware.AuditEntry{Action: service.ActionLogin, Resource: "user", ResourceId: user.Id, User: user})
	logger.Infof("%s logged in, IP: %s", user.Username, c.ClientIP())

	flash(c, session.Success, "pages.login.toasts.successLogin", "username=="+user.Username)
	redirect(c, "panel/")
}

func (a *IndexController) logout(c *gin.Context) {
	if a.loadUser(c) {
		user := middleware.CurrentUser(c)
		middleware.Audit(c, middleware.AuditEntry{Action: service.ActionLogout, Resource: "user", ResourceId: user.Id, User: user})
		logger.Infof("%s logged out", user.Username)
	}
	if err := session.ClearSession(c); err != nil {
		logger.Warning("unable to clear session:", err)
	}
	flash(c, session.Info, "pages.login.toasts.loggedOut")
	redirect(c, "login")
}

func (a *IndexController) registerPage(c *gin.Context) {
	if a.loadUser(c) {
		redirect(c, "panel/")
		return
	}
	html(c, "register.html", "pages.register.title", gin.H{"form": &entity.RegisterForm{}})
}

func (a *IndexController) register(c *gin.Context) {
	form := &entity.RegisterForm{}
	if err := c.ShouldBind(form); err != nil {
		flash(c, session.Danger, "pages.register.toasts.invalid", "error=="+err.Error())
		html(c, "register.html", "pages.register.title", gin.H{"form": form})
		return
	}

	user, err := a.userService.Register(form.Username, form.Email, form.Password, model.RoleUser)
	switch {
	case errors.Is(err, service.ErrUsernameTaken):
		flash(c, session.Danger, "pages.register.toasts.usernameTaken")
	case errors.Is(err, service.ErrEmailTaken):
		flash(c, session.Danger, "pages.register.toasts.emailTaken")
	case err != nil:
		logger.Warning("register failed:", err)
		flash(c, session.Danger, "pages.register.toasts.failed")
	}
	if err != nil {
		html(c, "register.html", "pages.register.title", gin.H{"form": form})
		return
	}

	middleware.Audit(c, middleware.AuditEntry{Action: service.ActionRegister, Resource: "user", ResourceId: user.Id, User: user})
	flash(c, session.Success, "pages.register.toasts.success")
	redirect(c, "login")
}
