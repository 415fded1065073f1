// Package session stores the logged in user, flash messages and the CSRF
// token in the signed cookie session.
package session

import (
	"crypto/subtle"
	"encoding/gob"

	"github.com/editalgen/editalgen/database/model"
	"github.com/editalgen/editalgen/util/random"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	loginUser = "LOGIN_USER"
	csrfToken = "CSRF_TOKEN"

	CookieName = "edital"
)

// Flash categories, matching the alert styles of the templates.
const (
	Success = "success"
	Info    = "info"
	Warning = "warning"
	Danger  = "danger"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

func init() {
	gob.Register(model.User{})
	gob.Register(Flash{})
}

func SetLoginUser(c *gin.Context, user *model.User) error {
	s := sessions.Default(c)
	u := *user
	u.Password = ""
	s.Set(loginUser, u)
	return s.Save()
}

func SetMaxAge(c *gin.Context, maxAge int) error {
	s := sessions.Default(c)
	s.Options(sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
	})
	return s.Save()
}

func GetLoginUser(c *gin.Context) *model.User {
	s := sessions.Default(c)
	if obj := s.Get(loginUser); obj != nil {
		if user, ok := obj.(model.User); ok {
			return &user
		}
	}
	return nil
}

func IsLogin(c *gin.Context) bool {
	return GetLoginUser(c) != nil
}

// ClearSession logs the user out. Pending flashes survive so the login
// page can show why.
func ClearSession(c *gin.Context) error {
	s := sessions.Default(c)
	flashes := s.Flashes()
	s.Clear()
	for _, f := range flashes {
		s.AddFlash(f)
	}
	return s.Save()
}

// AddFlash queues a message for the next page. It does not save the
// session; rendering or redirecting through the controller helpers does.
func AddFlash(c *gin.Context, category, message string) {
	sessions.Default(c).AddFlash(Flash{Category: category, Message: message})
}

// Flashes pops every queued message.
func Flashes(c *gin.Context) []Flash {
	s := sessions.Default(c)
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil
	}
	out := make([]Flash, 0, len(raw))
	for _, f := range raw {
		if flash, ok := f.(Flash); ok {
			out = append(out, flash)
		}
	}
	return out
}

func Save(c *gin.Context) error {
	return sessions.Default(c).Save()
}

// CSRFToken returns the session's token, creating it on first use.
func CSRFToken(c *gin.Context) string {
	s := sessions.Default(c)
	if token, ok := s.Get(csrfToken).(string); ok && token != "" {
		return token
	}
	token := random.Seq(32)
	s.Set(csrfToken, token)
	_ = s.Save()
	return token
}

// CheckCSRF compares token with the one stored in the session.
func CheckCSRF(c *gin.Context, token string) bool {
	stored, ok := sessions.Default(c).Get(csrfToken).(string)
	if !ok || stored == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(token)) == 1
}
