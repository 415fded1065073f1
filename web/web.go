// Package web provides the web server of the edital generator: routing,
// templates, sessions and the background jobs.
package web

import (
	"context"
	"embed"
	"html/template"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/editalgen/editalgen/caching"
	"github.com/editalgen/editalgen/clause"
	"github.com/editalgen/editalgen/config"
	"github.com/editalgen/editalgen/logger"
	"github.com/editalgen/editalgen/storage"
	"github.com/editalgen/editalgen/util/common"
	"github.com/editalgen/editalgen/web/controller"
	"github.com/editalgen/editalgen/web/entity"
	"github.com/editalgen/editalgen/web/job"
	"github.com/editalgen/editalgen/web/locale"
	"github.com/editalgen/editalgen/web/middleware"
	"github.com/editalgen/editalgen/web/service"
	"github.com/editalgen/editalgen/web/session"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/robfig/cron/v3"
)

//go:embed assets
var assetsFS embed.FS

//go:embed html/*
var htmlFS embed.FS

//go:embed translation/*
var i18nFS embed.FS

var startTime = time.Now()

type wrapAssetsFS struct {
	embed.FS
}

func (f *wrapAssetsFS) Open(name string) (fs.File, error) {
	file, err := f.FS.Open("assets/" + name)
	if err != nil {
		return nil, err
	}
	return &wrapAssetsFile{File: file}, nil
}

type wrapAssetsFile struct {
	fs.File
}

func (f *wrapAssetsFile) Stat() (fs.FileInfo, error) {
	info, err := f.File.Stat()
	if err != nil {
		return nil, err
	}
	return &wrapAssetsFileInfo{FileInfo: info}, nil
}

type wrapAssetsFileInfo struct {
	fs.FileInfo
}

func (f *wrapAssetsFileInfo) ModTime() time.Time {
	return startTime
}

// Server is the web panel with its services and scheduled jobs.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	store         storage.Store
	generator     *service.DocumentGenerator
	editalService *service.EditalService
	userAdmin     *service.UserAdminService

	settingService service.SettingService

	cron *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

func NewServer() *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{ctx: ctx, cancel: cancel}
}

// initServices opens the document store and wires the services that
// depend on it.
func (s *Server) initServices() error {
	store, err := storage.New(s.ctx, config.GetStorageConfig())
	if err != nil {
		return err
	}
	loader := clause.NewLoader(config.GetClausesFile(), caching.NewCache())
	if _, err := loader.Get(); err != nil {
		logger.Warning("clause dictionary unavailable, generation disabled until fixed:", err)
	}
	templateFile := config.GetTemplateFile()
	if _, err := os.Stat(templateFile); err != nil {
		logger.Warning("document template unavailable:", err)
	}

	s.store = store
	s.generator = service.NewDocumentGenerator(loader, templateFile, store)
	s.editalService = service.NewEditalService(s.generator)
	s.userAdmin = service.NewUserAdminService(store)
	logger.Info("documents stored in", store)
	return nil
}

func (s *Server) getHtmlFiles() ([]string, error) {
	files := make([]string, 0)
	dir, _ := os.Getwd()
	err := fs.WalkDir(os.DirFS(dir), "web/html", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (s *Server) getHtmlTemplate(funcMap template.FuncMap) (*template.Template, error) {
	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(htmlFS, "html", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			newT, err := t.ParseFS(htmlFS, path+"/*.html")
			if err != nil {
				// ignore folders without matches
				return nil
			}
			t = newT
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"i18n": func(l *i18n.Localizer, key string, params ...string) string {
			return locale.Localize(l, key, params...)
		},
		"inputDate": entity.FormatDate,
		"date": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format("02/01/2006")
		},
		"datetime": func(t time.Time) string {
			return t.Local().Format("02/01/2006 15:04")
		},
		"list": func(items ...string) []string { return items },
		"add":  func(a, b int) int { return a + b },
		"sub":  func(a, b int) int { return a - b },
		"dict": func(kv ...any) map[string]any {
			m := make(map[string]any, len(kv)/2)
			for i := 0; i+1 < len(kv); i += 2 {
				if k, ok := kv[i].(string); ok {
					m[k] = kv[i+1]
				}
			}
			return m
		},
	}
}

func (s *Server) initRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.Default()

	secret, err := s.settingService.GetSecret()
	if err != nil {
		return nil, err
	}
	basePath, err := s.settingService.GetBasePath()
	if err != nil {
		return nil, err
	}
	if err := locale.InitLocalizer(i18nFS); err != nil {
		return nil, err
	}

	engine.Use(gzip.Gzip(
		gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{basePath + "panel/api/"}),
	))
	store := cookie.NewStore(secret)
	store.Options(sessions.Options{
		Path:     basePath,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	engine.Use(sessions.Sessions(session.CookieName, store))
	engine.Use(middleware.RequestID())
	engine.Use(func(c *gin.Context) {
		c.Set("base_path", basePath)
	})
	engine.Use(locale.LocalizerMiddleware())
	engine.Use(middleware.AuditMiddleware())

	funcMap := templateFuncs()
	engine.SetFuncMap(funcMap)

	if config.IsDebug() {
		files, err := s.getHtmlFiles()
		if err != nil {
			return nil, err
		}
		engine.LoadHTMLFiles(files...)
		engine.StaticFS(basePath+"assets", http.FS(os.DirFS("web/assets")))
	} else {
		tpl, err := s.getHtmlTemplate(funcMap)
		if err != nil {
			return nil, err
		}
		engine.SetHTMLTemplate(tpl)
		engine.StaticFS(basePath+"assets", http.FS(&wrapAssetsFS{FS: assetsFS}))
	}

	controller.NewAPIController(engine.Group(basePath+"panel/api"), s.editalService)

	g := engine.Group(basePath)
	g.Use(middleware.CSRF())
	controller.NewIndexController(g)
	controller.NewEditalController(g, s.editalService)
	controller.NewAdminController(g, s.editalService, s.userAdmin)

	engine.NoRoute(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusNotFound)
	})

	return engine, nil
}

func (s *Server) addJob(spec string, job cron.Job) {
	if _, err := s.cron.AddJob(spec, job); err != nil {
		logger.Warningf("schedule job at %q failed: %v", spec, err)
	}
}

func (s *Server) startTask() {
	spec, err := s.settingService.GetOrphanCleanupCron()
	if err != nil || spec == "" {
		spec = "@hourly"
	}
	s.addJob(spec, job.NewOrphanCleanupJob(s.store, s.editalService))
	s.addJob("@daily", job.NewAuditCleanupJob())
}

func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	loc, err := s.settingService.GetTimeLocation()
	if err != nil {
		return err
	}
	s.cron = cron.New(cron.WithLocation(loc), cron.WithSeconds())
	s.cron.Start()

	if err = s.initServices(); err != nil {
		return err
	}
	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	listen, err := s.settingService.GetListen()
	if err != nil {
		return err
	}
	port, err := s.settingService.GetPort()
	if err != nil {
		return err
	}
	if override := config.GetPortOverride(); override > 0 {
		port = override
	}

	listenAddr := net.JoinHostPort(listen, strconv.Itoa(port))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	logger.Info("Web server running HTTP on", listener.Addr())

	s.listener = listener
	s.httpServer = &http.Server{Handler: engine, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		_ = s.httpServer.Serve(listener)
	}()

	s.startTask()
	return nil
}

func (s *Server) Stop() error {
	s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}
	var err1, err2 error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err1 = s.httpServer.Shutdown(ctx)
	}
	if s.listener != nil {
		err2 = s.listener.Close()
	}
	return common.Combine(err1, err2)
}

func (s *Server) GetCtx() context.Context { return s.ctx }

func (s *Server) GetCron() *cron.Cron { return s.cron }
