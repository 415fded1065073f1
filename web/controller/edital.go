package controller

import (
	"errors"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/editalgen/editalgen/clause"
	"github.com/editalgen/editalgen/database/model"
	"github.com/editalgen/editalgen/logger"
	"github.com/editalgen/editalgen/storage"
	"github.com/editalgen/editalgen/util/reflect_util"
	"github.com/editalgen/editalgen/web/entity"
	"github.com/editalgen/editalgen/web/middleware"
	"github.com/editalgen/editalgen/web/service"
	"github.com/editalgen/editalgen/web/session"

	"github.com/gin-gonic/gin"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

type selectOption struct {
	Value    string
	Label    string
	Text     string
	Selected bool
}

type selectField struct {
	Name    string
	Options []selectOption
}

// EditalController serves the dashboard and the edital create, edit,
// delete and download pages.
type EditalController struct {
	BaseController

	editalService *service.EditalService
}

func NewEditalController(g *gin.RouterGroup, editalService *service.EditalService) *EditalController {
	a := &EditalController{editalService: editalService}
	a.initRouter(g)
	return a
}

func (a *EditalController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/panel")
	g.Use(a.checkLogin)

	g.GET("/", a.dashboard)

	e := g.Group("/edital")
	e.GET("/new", a.newPage)
	e.POST("/new", a.create)
	e.GET("/:id/edit", a.editPage)
	e.POST("/:id/edit", a.update)
	e.POST("/:id/delete", a.delete)
	e.GET("/download/:filename", a.download)
}

func (a *EditalController) dashboard(c *gin.Context) {
	user := middleware.CurrentUser(c)
	editais, err := a.editalService.ListByUser(user.Id)
	if err != nil {
		logger.Warning("list editais failed:", err)
		flash(c, session.Danger, "pages.dashboard.toasts.listFailed")
	}
	html(c, "dashboard.html", "pages.dashboard.title", gin.H{"editais": editais})
}

// optionLabel turns an option key such as menor_preco into "Menor preco".
func optionLabel(key string) string {
	s := strings.ReplaceAll(key, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// selects builds the dictionary backed selects with the form's current
// values marked.
func selects(d clause.Dictionary, form *entity.EditalForm) map[string]selectField {
	t := reflect.TypeOf(form).Elem()
	v := reflect.ValueOf(form).Elem()

	out := make(map[string]selectField, len(entity.OptionFields))
	for _, f := range entity.OptionFields {
		current := ""
		if field, ok := reflect_util.FieldByTag(t, "form", f.Name); ok {
			current = v.FieldByName(field.Name).String()
		}
		sf := selectField{Name: f.Name}
		for _, key := range d.Options(f.Category) {
			sf.Options = append(sf.Options, selectOption{
				Value:    key,
				Label:    optionLabel(key),
				Text:     d.Option(f.Category, key),
				Selected: key == current,
			})
		}
		out[f.Name] = sf
	}
	return out
}

func (a *EditalController) renderForm(c *gin.Context, form *entity.EditalForm, e *model.Edital) {
	d, err := a.editalService.Generator.Dictionary()
	if err != nil {
		logger.Warning("load clauses failed:", err)
		flash(c, session.Warning, "pages.edital.toasts.clausesUnavailable", "error=="+err.Error())
	}
	title := "pages.edital.newTitle"
	if e != nil {
		title = "pages.edital.editTitle"
	}
	html(c, "edital_form.html", title, gin.H{
		"form":    form,
		"edital":  e,
		"selects": selects(d, form),
	})
}

func (a *EditalController) newPage(c *gin.Context) {
	a.renderForm(c, &entity.EditalForm{}, nil)
}

// generationFailed reports a failed create or update and shows the form
// again with what the user typed.
func (a *EditalController) generationFailed(c *gin.Context, err error, form *entity.EditalForm, e *model.Edital) {
	if errors.Is(err, service.ErrConfig) {
		flash(c, session.Warning, "pages.edital.toasts.configError", "error=="+err.Error())
	} else {
		logger.Warning("generate edital failed:", err)
		flash(c, session.Danger, "pages.edital.toasts.generateFailed", "error=="+err.Error())
	}
	a.renderForm(c, form, e)
}

func (a *EditalController) create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	form := &entity.EditalForm{}
	if err := c.ShouldBind(form); err != nil {
		flash(c, session.Danger, "pages.edital.toasts.invalid", "error=="+err.Error())
		a.renderForm(c, form, nil)
		return
	}

	e, err := a.editalService.Create(c.Request.Context(), user, form)
	if err != nil {
		a.generationFailed(c, err, form, nil)
		return
	}

	middleware.Audit(c, middleware.AuditEntry{
		Action:     service.ActionCreate,
		Resource:   "edital",
		ResourceId: e.Id,
		Details:    map[string]any{"file": e.GeneratedFilename},
	})
	flash(c, session.Success, "pages.edital.toasts.generated", "file=="+e.GeneratedFilename)
	redirect(c, "panel/")
}

// load fetches the edital named in the URL, redirecting to the dashboard
// with a message when it is missing or not the user's.
func (a *EditalController) load(c *gin.Context) (*model.Edital, bool) {
	id, ok := paramId(c)
	if !ok {
		a.denied(c, service.ErrNotFound)
		return nil, false
	}
	e, err := a.editalService.Get(middleware.CurrentUser(c), id)
	if err != nil {
		a.denied(c, err)
		return nil, false
	}
	return e, true
}

func (a *EditalController) denied(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrForbidden):
		flash(c, session.Danger, "pages.edital.toasts.forbidden")
	case errors.Is(err, service.ErrNotFound):
		flash(c, session.Warning, "pages.edital.toasts.notFound")
	default:
		logger.Warning("load edital failed:", err)
		flash(c, session.Danger, "pages.edital.toasts.loadFailed")
	}
	redirect(c, "panel/")
}

func (a *EditalController) editPage(c *gin.Context) {
	e, ok := a.load(c)
	if !ok {
		return
	}
	a.renderForm(c, entity.NewEditalForm(e), e)
}

func (a *EditalController) update(c *gin.Context) {
	e, ok := a.load(c)
	if !ok {
		return
	}
	form := &entity.EditalForm{}
	if err := c.ShouldBind(form); err != nil {
		flash(c, session.Danger, "pages.edital.toasts.invalid", "error=="+err.Error())
		a.renderForm(c, form, e)
		return
	}

	updated, cleanup, err := a.editalService.Update(c.Request.Context(), middleware.CurrentUser(c), e.Id, form)
	if err != nil {
		a.generationFailed(c, err, form, e)
		return
	}

	middleware.Audit(c, middleware.AuditEntry{
		Action:     service.ActionUpdate,
		Resource:   "edital",
		ResourceId: updated.Id,
		Details:    map[string]any{"file": updated.GeneratedFilename, "previous": e.GeneratedFilename},
	})
	flash(c, session.Success, "pages.edital.toasts.updated", "file=="+updated.GeneratedFilename)
	flashCleanup(c, cleanup)
	redirect(c, "panel/")
}

func (a *EditalController) delete(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		a.denied(c, service.ErrNotFound)
		return
	}
	e, cleanup, err := a.editalService.Delete(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		a.denied(c, err)
		return
	}

	middleware.Audit(c, middleware.AuditEntry{
		Action:     service.ActionDelete,
		Resource:   "edital",
		ResourceId: e.Id,
		Details:    map[string]any{"file": e.GeneratedFilename},
	})
	flash(c, session.Success, "pages.edital.toasts.deleted", "name=="+e.FormName)
	flashCleanup(c, cleanup)
	redirect(c, "panel/")
}

// flashCleanup reports what happened to the document files of a changed
// or deleted edital.
func flashCleanup(c *gin.Context, cleanup *service.FileCleanup) {
	if cleanup == nil {
		return
	}
	if cleanup.NoFile {
		flash(c, session.Info, "pages.edital.toasts.noFile")
	}
	for _, name := range cleanup.Removed {
		flash(c, session.Info, "pages.edital.toasts.fileRemoved", "file=="+name)
	}
	for _, name := range cleanup.Missing {
		flash(c, session.Warning, "pages.edital.toasts.fileMissing", "file=="+name)
	}
	for _, name := range cleanup.Failed {
		flash(c, session.Warning, "pages.edital.toasts.fileRemoveFailed", "file=="+name)
	}
}

func (a *EditalController) download(c *gin.Context) {
	filename := c.Param("filename")
	r, size, err := a.editalService.OpenDocument(c.Request.Context(), middleware.CurrentUser(c), filename)
	if errors.Is(err, storage.ErrNotExist) {
		flash(c, session.Warning, "pages.edital.toasts.fileMissing", "file=="+filename)
		redirect(c, "panel/")
		return
	}
	if err != nil {
		a.denied(c, err)
		return
	}
	defer r.Close()

	middleware.Audit(c, middleware.AuditEntry{
		Action:   service.ActionDownload,
		Resource: "edital",
		Details:  map[string]any{"file": filename},
	})
	c.DataFromReader(http.StatusOK, size, docxContentType, r, map[string]string{
		"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": filename}),
	})
}
