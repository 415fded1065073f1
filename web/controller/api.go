package controller

import (
	"errors"
	"net/http"

	"github.com/editalgen/editalgen/database/model"
	"github.com/editalgen/editalgen/logger"
	"github.com/editalgen/editalgen/web/entity"
	"github.com/editalgen/editalgen/web/middleware"
	"github.com/editalgen/editalgen/web/service"

	"github.com/gin-gonic/gin"
)

// APIController serves the JSON API. Callers authenticate with the panel
// session cookie or an Authorization bearer token from /login.
type APIController struct {
	BaseController

	authService   service.AuthService
	editalService *service.EditalService
}

func NewAPIController(g *gin.RouterGroup, editalService *service.EditalService) *APIController {
	a := &APIController{editalService: editalService}
	a.initRouter(g)
	return a
}

func (a *APIController) initRouter(g *gin.RouterGroup) {
	g.POST("/login", a.login)

	authed := g.Group("")
	authed.Use(a.trySession, middleware.BearerAuth(&a.authService))
	authed.GET("/editais", a.listEditais)
	authed.GET("/editais/:id", a.getEdital)
	authed.GET("/editais/:id/placeholders", a.placeholders)
}

type tokenResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (a *APIController) login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil || form.Username == "" || form.Password == "" {
		pureJsonMsg(c, http.StatusBadRequest, false, I18nWeb(c, "pages.login.toasts.emptyCredentials"))
		return
	}
	token, user, err := a.authService.Login(form.Username, form.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		logger.Warningf("api login failed for %q, IP: %s", form.Username, c.ClientIP())
		pureJsonMsg(c, http.StatusUnauthorized, false, I18nWeb(c, "pages.login.toasts.wrongUsernameOrPassword"))
		return
	}
	if err != nil {
		logger.Warning("issue token failed:", err)
		pureJsonMsg(c, http.StatusInternalServerError, false, err.Error())
		return
	}
	middleware.Audit(c, middleware.AuditEntry{Action: service.ActionLogin, Resource: "api", ResourceId: user.Id, User: user})
	jsonObj(c, tokenResponse{Token: token, User: user}, nil)
}

// listEditais returns the caller's editais. Admins get every edital with
// ?all=true.
func (a *APIController) listEditais(c *gin.Context) {
	user := middleware.CurrentUser(c)
	var (
		editais []model.Edital
		err     error
	)
	if user.IsAdmin() && c.Query("all") == "true" {
		editais, err = a.editalService.ListAll()
	} else {
		editais, err = a.editalService.ListByUser(user.Id)
	}
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.dashboard.toasts.listFailed"), err)
		return
	}
	jsonObj(c, editais, nil)
}

func (a *APIController) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		pureJsonMsg(c, http.StatusNotFound, false, I18nWeb(c, "pages.edital.toasts.notFound"))
	case errors.Is(err, service.ErrForbidden):
		pureJsonMsg(c, http.StatusForbidden, false, I18nWeb(c, "pages.edital.toasts.forbidden"))
	default:
		logger.Warning("api request failed:", err)
		pureJsonMsg(c, http.StatusInternalServerError, false, err.Error())
	}
}

func (a *APIController) getEdital(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		a.fail(c, service.ErrNotFound)
		return
	}
	e, err := a.editalService.Get(middleware.CurrentUser(c), id)
	if err != nil {
		a.fail(c, err)
		return
	}
	jsonObj(c, e, nil)
}

// placeholders previews the resolved token values. A broken clause
// dictionary is reported in msg while the values are still returned.
func (a *APIController) placeholders(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		a.fail(c, service.ErrNotFound)
		return
	}
	values, err := a.editalService.Placeholders(middleware.CurrentUser(c), id)
	if errors.Is(err, service.ErrConfig) {
		c.JSON(http.StatusOK, entity.Msg{Success: true, Msg: err.Error(), Obj: values})
		return
	}
	if err != nil {
		a.fail(c, err)
		return
	}
	jsonObj(c, values, nil)
}
