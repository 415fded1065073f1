package controller

import (
	"errors"
	"strconv"

	"github.com/editalgen/editalgen/database/model"
	"github.com/editalgen/editalgen/logger"
	"github.com/editalgen/editalgen/web/entity"
	"github.com/editalgen/editalgen/web/middleware"
	"github.com/editalgen/editalgen/web/service"
	"github.com/editalgen/editalgen/web/session"

	"github.com/gin-gonic/gin"
)

const auditPageSize = 50

// AdminController serves the administrator pages. Every route requires
// the admin role.
type AdminController struct {
	BaseController

	editalService  *service.EditalService
	userAdmin      *service.UserAdminService
	settingService service.SettingService
	auditService   service.AuditLogService
}

func NewAdminController(g *gin.RouterGroup, editalService *service.EditalService, userAdmin *service.UserAdminService) *AdminController {
	a := &AdminController{editalService: editalService, userAdmin: userAdmin}
	a.initRouter(g)
	return a
}

func (a *AdminController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/panel/admin")
	g.Use(a.checkLogin, middleware.RoleRequired(a.denied, model.RoleAdmin))

	g.GET("/", a.index)
	g.GET("/editais", a.editais)
	g.GET("/users", a.users)
	g.GET("/users/add", a.addUserPage)
	g.POST("/users/add", a.addUser)
	g.POST("/users/:id/delete", a.deleteUser)
	g.GET("/settings", a.settingsPage)
	g.POST("/settings", a.updateSettings)
	g.GET("/audit", a.audit)
}

func (a *AdminController) denied(c *gin.Context) {
	flash(c, session.Danger, "pages.admin.toasts.denied")
	redirect(c, "panel/")
}

func (a *AdminController) index(c *gin.Context) {
	users, err := a.userAdmin.CountUsers()
	if err != nil {
		logger.Warning("count users failed:", err)
	}
	editais, err := a.editalService.Count()
	if err != nil {
		logger.Warning("count editais failed:", err)
	}
	g := a.editalService.Generator
	html(c, "admin.html", "pages.admin.title", gin.H{
		"users":     users,
		"editais":   editais,
		"generated": g.Generated(),
		"failed":    g.Failed(),
		"store":     g.Store.String(),
	})
}

func (a *AdminController) editais(c *gin.Context) {
	editais, err := a.editalService.ListAll()
	if err != nil {
		logger.Warning("list editais failed:", err)
		flash(c, session.Danger, "pages.dashboard.toasts.listFailed")
	}
	html(c, "admin_editais.html", "pages.admin.editais.title", gin.H{"editais": editais})
}

func (a *AdminController) users(c *gin.Context) {
	users, err := a.userAdmin.ListUsers()
	if err != nil {
		logger.Warning("list users failed:", err)
		flash(c, session.Danger, "pages.admin.users.toasts.listFailed")
	}
	html(c, "admin_users.html", "pages.admin.users.title", gin.H{"users": users})
}

func (a *AdminController) addUserPage(c *gin.Context) {
	html(c, "admin_user_add.html", "pages.admin.users.addTitle", gin.H{"form": &entity.RegisterForm{Role: string(model.RoleUser)}})
}

func (a *AdminController) addUser(c *gin.Context) {
	form := &entity.RegisterForm{}
	if err := c.ShouldBind(form); err != nil {
		flash(c, session.Danger, "pages.register.toasts.invalid", "error=="+err.Error())
		html(c, "admin_user_add.html", "pages.admin.users.addTitle", gin.H{"form": form})
		return
	}

	user, err := a.userService.Register(form.Username, form.Email, form.Password, model.Role(form.Role))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			flash(c, session.Danger, "pages.register.toasts.usernameTaken")
		case errors.Is(err, service.ErrEmailTaken):
			flash(c, session.Danger, "pages.register.toasts.emailTaken")
		default:
			logger.Warning("add user failed:", err)
			flash(c, session.Danger, "pages.register.toasts.failed")
		}
		html(c, "admin_user_add.html", "pages.admin.users.addTitle", gin.H{"form": form})
		return
	}

	middleware.Audit(c, middleware.AuditEntry{
		Action:     service.ActionCreate,
		Resource:   "user",
		ResourceId: user.Id,
		Details:    map[string]any{"username": user.Username, "role": user.Role},
	})
	flash(c, session.Success, "pages.admin.users.toasts.added", "username=="+user.Username)
	redirect(c, "panel/admin/users")
}

func (a *AdminController) deleteUser(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		flash(c, session.Warning, "pages.admin.users.toasts.notFound")
		redirect(c, "panel/admin/users")
		return
	}
	actor := middleware.CurrentUser(c)
	result, err := a.userAdmin.DeleteUser(c.Request.Context(), actor.Id, id)
	switch {
	case errors.Is(err, service.ErrSelfDelete):
		flash(c, session.Danger, "pages.admin.users.toasts.selfDelete")
	case errors.Is(err, service.ErrLastAdmin):
		flash(c, session.Danger, "pages.admin.users.toasts.lastAdmin")
	case errors.Is(err, service.ErrNotFound):
		flash(c, session.Warning, "pages.admin.users.toasts.notFound")
	case err != nil:
		logger.Warning("delete user failed:", err)
		flash(c, session.Danger, "pages.admin.users.toasts.deleteFailed")
	}
	if err != nil {
		redirect(c, "panel/admin/users")
		return
	}

	middleware.Audit(c, middleware.AuditEntry{
		Action:     service.ActionDelete,
		Resource:   "user",
		ResourceId: id,
		Details:    map[string]any{"username": result.Username, "editais": result.Editais},
	})
	flash(c, session.Success, "pages.admin.users.toasts.deleted",
		"username=="+result.Username, "count=="+strconv.Itoa(result.Editais))
	flashCleanup(c, &result.Cleanup)
	redirect(c, "panel/admin/users")
}

func (a *AdminController) settingsPage(c *gin.Context) {
	all, err := a.settingService.GetAllSetting()
	if err != nil {
		logger.Warning("load settings failed:", err)
		flash(c, session.Danger, "pages.settings.toasts.loadFailed")
		all = &entity.AllSetting{}
	}
	html(c, "admin_settings.html", "pages.settings.title", gin.H{"setting": all})
}

func (a *AdminController) updateSettings(c *gin.Context) {
	all := &entity.AllSetting{}
	if err := c.ShouldBind(all); err != nil {
		flash(c, session.Danger, "pages.settings.toasts.invalid", "error=="+err.Error())
		html(c, "admin_settings.html", "pages.settings.title", gin.H{"setting": all})
		return
	}
	if err := a.settingService.UpdateAllSetting(all); err != nil {
		flash(c, session.Danger, "pages.settings.toasts.invalid", "error=="+err.Error())
		html(c, "admin_settings.html", "pages.settings.title", gin.H{"setting": all})
		return
	}
	middleware.Audit(c, middleware.AuditEntry{Action: service.ActionUpdate, Resource: "setting"})
	flash(c, session.Success, "pages.settings.toasts.saved")
	redirect(c, "panel/admin/settings")
}

func (a *AdminController) audit(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}
	filter := service.AuditFilter{
		Action:   c.Query("action"),
		Resource: c.Query("resource"),
	}
	logs, total, err := a.auditService.GetAuditLogs(filter, auditPageSize, (page-1)*auditPageSize)
	if err != nil {
		logger.Warning("load audit logs failed:", err)
		flash(c, session.Danger, "pages.audit.toasts.loadFailed")
	}
	html(c, "admin_audit.html", "pages.audit.title", gin.H{
		"logs":   logs,
		"total":  total,
		"page":   page,
		"next":   int64(page*auditPageSize) < total,
		"filter": filter,
	})
}
