package controller

import (
	"net/http"
	"strconv"

	"github.com/editalgen/editalgen/config"
	"github.com/editalgen/editalgen/logger"
	"github.com/editalgen/editalgen/web/entity"
	"github.com/editalgen/editalgen/web/locale"
	"github.com/editalgen/editalgen/web/middleware"
	"github.com/editalgen/editalgen/web/session"

	"github.com/gin-gonic/gin"
)

func jsonMsg(c *gin.Context, msg string, err error) {
	jsonMsgObj(c, msg, nil, err)
}

func jsonObj(c *gin.Context, obj any, err error) {
	jsonMsgObj(c, "", obj, err)
}

func jsonMsgObj(c *gin.Context, msg string, obj any, err error) {
	m := entity.Msg{
		Obj: obj,
	}
	if err == nil {
		m.Success = true
		if msg != "" {
			m.Msg = msg
		}
	} else {
		m.Success = false
		m.Msg = msg + " (" + err.Error() + ")"
		logger.Warning(msg+" "+I18nWeb(c, "fail")+": ", err)
	}
	c.JSON(http.StatusOK, m)
}

func pureJsonMsg(c *gin.Context, statusCode int, success bool, msg string) {
	c.JSON(statusCode, entity.Msg{
		Success: success,
		Msg:     msg,
	})
}

// html renders a page. title is a translation key. Pending flashes are
// consumed and the session is saved before anything is written.
func html(c *gin.Context, name string, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["title"] = title
	data["loc"] = locale.FromContext(c)
	data["request_uri"] = c.Request.RequestURI
	data["base_path"] = c.GetString("base_path")
	data["user"] = middleware.CurrentUser(c)
	data["csrf_token"] = session.CSRFToken(c)
	data["flashes"] = session.Flashes(c)
	if err := session.Save(c); err != nil {
		logger.Warning("save session failed:", err)
	}
	c.HTML(http.StatusOK, name, getContext(data))
}

func getContext(h gin.H) gin.H {
	a := gin.H{
		"cur_ver":  config.GetVersion(),
		"app_name": config.GetName(),
	}
	for key, value := range h {
		a[key] = value
	}
	return a
}

// flash queues a translated message for the next page.
func flash(c *gin.Context, category, key string, params ...string) {
	session.AddFlash(c, category, I18nWeb(c, key, params...))
}

// redirect saves the session and sends the browser to path, relative to
// the base path.
func redirect(c *gin.Context, path string) {
	if err := session.Save(c); err != nil {
		logger.Warning("save session failed:", err)
	}
	c.Redirect(http.StatusSeeOther, c.GetString("base_path")+path)
}

func isAjax(c *gin.Context) bool {
	return c.GetHeader("X-Requested-With") == "XMLHttpRequest"
}

func paramId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	return id, err == nil && id > 0
}
