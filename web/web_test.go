package web

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/editalgen/editalgen/clause"
	"github.com/editalgen/editalgen/database"
	"github.com/editalgen/editalgen/database/model"
	"github.com/editalgen/editalgen/docx"
	"github.com/editalgen/editalgen/placeholder"
	"github.com/editalgen/editalgen/web/entity"
	"github.com/editalgen/editalgen/web/service"

	"github.com/glebarez/sqlite"
	"github.com/goccy/go-json"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var csrfPattern = regexp.MustCompile(`name="csrf[_-]token" (?:value|content)="([^"]+)"`)

type testApp struct {
	t       *testing.T
	server  *Server
	http    *httptest.Server
	dataDir string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	dir := t.TempDir()

	template := filepath.Join(dir, "modelo.docx")
	require.NoError(t, docx.SampleTemplate(placeholder.Tokens()).Save(template))
	clauses := filepath.Join(dir, "clausulas.json")
	_, err := clause.WriteDefault(clauses)
	require.NoError(t, err)
	dataDir := filepath.Join(dir, "generated")

	t.Setenv("EDITAL_TEMPLATE_FILE", template)
	t.Setenv("EDITAL_CLAUSES_FILE", clauses)
	t.Setenv("EDITAL_DATA_FOLDER", dataDir)
	t.Setenv("EDITAL_STORAGE", "local")

	require.NoError(t, database.InitDBWithDialector(sqlite.Open(filepath.Join(dir, "test.db"))))
	t.Cleanup(func() { _ = database.CloseDB() })

	s := NewServer()
	t.Cleanup(s.cancel)
	require.NoError(t, s.initServices())
	engine, err := s.initRouter()
	require.NoError(t, err)

	ts := httptest.NewServer(engine)
	t.Cleanup(ts.Close)
	return &testApp{t: t, server: s, http: ts, dataDir: dataDir}
}

// client is a browser with its own cookie jar.
type client struct {
	app *testApp
	c   *http.Client
}

func (a *testApp) newClient() *client {
	jar, err := cookiejar.New(nil)
	require.NoError(a.t, err)
	return &client{app: a, c: &http.Client{Jar: jar}}
}

func (c *client) get(path string) (*http.Response, string) {
	c.app.t.Helper()
	resp, err := c.c.Get(c.app.http.URL + path)
	require.NoError(c.app.t, err)
	return resp, readBody(c.app.t, resp)
}

func (c *client) post(path string, form url.Values) (*http.Response, string) {
	c.app.t.Helper()
	resp, err := c.c.PostForm(c.app.http.URL+path, form)
	require.NoError(c.app.t, err)
	return resp, readBody(c.app.t, resp)
}

// submit loads page, takes its CSRF token and posts form to action.
func (c *client) submit(page, action string, form url.Values) (*http.Response, string) {
	c.app.t.Helper()
	_, body := c.get(page)
	m := csrfPattern.FindStringSubmatch(body)
	require.Len(c.app.t, m, 2, "no csrf token on %s", page)
	form.Set("csrf_token", m[1])
	return c.post(action, form)
}

func (c *client) login(username, password string) string {
	c.app.t.Helper()
	resp, body := c.submit("/login", "/login", url.Values{
		"username": {username},
		"password": {password},
	})
	require.Equal(c.app.t, http.StatusOK, resp.StatusCode)
	return body
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func editalForm(title string) url.Values {
	return url.Values{
		"form_name":           {title},
		"numero_pregao":       {"90001/2024"},
		"objeto_servicos":     {"Serviços de limpeza predial"},
		"data_sessao":         {"2024-04-10"},
		"hora_sessao":         {"09:00"},
		"tipo_participacao":   {placeholder.ParticipacaoAmpla},
		"criterio_julgamento": {placeholder.CriterioMenorPreco},
		"incluir_me_epp":      {"true"},
	}
}

func (a *testApp) register(username string) *model.User {
	a.t.Helper()
	var us service.UserService
	u, err := us.Register(username, username+"@example.com", "secret123", model.RoleUser)
	require.NoError(a.t, err)
	return u
}

func TestLoginPageAndCredentials(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient()

	resp, body := c.get("/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `name="csrf_token"`)

	resp, _ = c.post("/login", url.Values{"username": {"admin"}, "password": {"admin123"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	body = c.login("admin", "wrong")
	assert.Contains(t, body, "Usuário ou senha inválidos.")

	body = c.login(database.DefaultAdminUsername, database.DefaultAdminPassword)
	assert.Contains(t, body, "Bem-vindo, admin!")
	assert.Contains(t, body, "Nenhum edital gerado ainda.")

	_, body = c.get("/logout")
	assert.Contains(t, body, "Você saiu do sistema.")

	resp, body = c.get("/panel/")
	assert.Equal(t, "/login", resp.Request.URL.Path)
	assert.Contains(t, body, "Faça login para acessar esta página.")
}

func TestRegisterAndLogin(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient()

	_, body := c.submit("/register", "/register", url.Values{
		"username":  {"maria"},
		"email":     {"maria@example.com"},
		"password":  {"secret123"},
		"password2": {"secret123"},
	})
	assert.Contains(t, body, "Cadastro realizado com sucesso!")

	_, body = c.submit("/register", "/register", url.Values{
		"username":  {"maria"},
		"email":     {"outra@example.com"},
		"password":  {"secret123"},
		"password2": {"secret123"},
	})
	assert.Contains(t, body, "Este nome de usuário já existe.")

	body = c.login("maria", "secret123")
	assert.Contains(t, body, "Bem-vindo, maria!")

	var u model.User
	require.NoError(t, database.GetDB().Where("username = ?", "maria").First(&u).Error)
	assert.Equal(t, model.RoleUser, u.Role)
}

func TestEditalLifecycle(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient()
	c.login("admin", "admin123")

	_, body := c.submit("/panel/edital/new", "/panel/edital/new", editalForm("Limpeza"))
	assert.Contains(t, body, "Edital gerado com sucesso")

	var e model.Edital
	require.NoError(t, database.GetDB().First(&e).Error)
	require.NotEmpty(t, e.GeneratedFilename)
	assert.True(t, strings.HasPrefix(e.GeneratedFilename, "Edital_Limpeza_"))
	assert.Contains(t, body, e.GeneratedFilename)
	assert.FileExists(t, filepath.Join(app.dataDir, e.GeneratedFilename))

	resp, data := c.get("/panel/edital/download/" + e.GeneratedFilename)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	assert.True(t, strings.HasPrefix(data, "PK"))

	id := strconv.Itoa(e.Id)
	_, body = c.submit("/panel/edital/"+id+"/edit", "/panel/edital/"+id+"/edit", editalForm("Limpeza Revisada"))
	assert.Contains(t, body, "Edital atualizado e gerado novamente")

	var updated model.Edital
	require.NoError(t, database.GetDB().First(&updated, e.Id).Error)
	assert.Equal(t, "Limpeza Revisada", updated.FormName)
	assert.Contains(t, updated.GeneratedFilename, "_EDITED_")
	assert.NoFileExists(t, filepath.Join(app.dataDir, e.GeneratedFilename))
	assert.Contains(t, body, "Arquivo "+e.GeneratedFilename+" removido.")

	_, body = c.submit("/panel/", "/panel/edital/"+id+"/delete", url.Values{})
	assert.Contains(t, body, "Edital Limpeza Revisada excluído.")
	assert.NoFileExists(t, filepath.Join(app.dataDir, updated.GeneratedFilename))

	var n int64
	require.NoError(t, database.GetDB().Model(model.Edital{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestEditalOfOtherUserIsHidden(t *testing.T) {
	app := newTestApp(t)
	owner := app.register("joana")
	app.register("pedro")

	form := &entity.EditalForm{
		FormName:           "Vigilancia",
		NumeroPregao:       "1/2024",
		ObjetoServicos:     "Vigilância",
		TipoParticipacao:   placeholder.ParticipacaoAmpla,
		CriterioJulgamento: placeholder.CriterioMenorPreco,
	}
	e, err := app.server.editalService.Create(context.Background(), owner, form)
	require.NoError(t, err)

	c := app.newClient()
	c.login("pedro", "secret123")

	resp, body := c.get("/panel/edital/" + strconv.Itoa(e.Id) + "/edit")
	assert.Equal(t, "/panel/", resp.Request.URL.Path)
	assert.Contains(t, body, "Você não tem permissão para acessar este edital.")

	_, body = c.get("/panel/edital/download/" + e.GeneratedFilename)
	assert.Contains(t, body, "Você não tem permissão para acessar este edital.")

	_, body = c.get("/panel/edital/download/Edital_Inexistente.docx")
	assert.Contains(t, body, "Edital não encontrado.")

	_, body = c.submit("/panel/", "/panel/edital/"+strconv.Itoa(e.Id)+"/delete", url.Values{})
	assert.Contains(t, body, "Você não tem permissão para acessar este edital.")
	assert.FileExists(t, filepath.Join(app.dataDir, e.GeneratedFilename))
}

func TestAdminPagesRequireAdmin(t *testing.T) {
	app := newTestApp(t)
	app.register("joana")

	c := app.newClient()
	c.login("joana", "secret123")
	resp, body := c.get("/panel/admin/users")
	assert.Equal(t, "/panel/", resp.Request.URL.Path)
	assert.Contains(t, body, "Acesso restrito a administradores.")

	admin := app.newClient()
	admin.login("admin", "admin123")
	resp, body = admin.get("/panel/admin/users")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "joana@example.com")

	resp, _ = admin.get("/panel/admin/audit")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

type apiResponse struct {
	Success bool            `json:"success"`
	Msg     string          `json:"msg"`
	Obj     json.RawMessage `json:"obj"`
}

func (a *testApp) api(method, path, token string, body io.Reader) (int, apiResponse) {
	a.t.Helper()
	req, err := http.NewRequest(method, a.http.URL+"/panel/api"+path, body)
	require.NoError(a.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	var out apiResponse
	require.NoError(a.t, json.Unmarshal([]byte(readBody(a.t, resp)), &out))
	return resp.StatusCode, out
}

func (a *testApp) apiLogin(username, password string) string {
	a.t.Helper()
	status, resp := a.api(http.MethodPost, "/login", "",
		strings.NewReader(`{"username":"`+username+`","password":"`+password+`"}`))
	require.Equal(a.t, http.StatusOK, status, resp.Msg)
	var tok struct {
		Token string `json:"token"`
	}
	require.NoError(a.t, json.Unmarshal(resp.Obj, &tok))
	require.NotEmpty(a.t, tok.Token)
	return tok.Token
}

func TestAPI(t *testing.T) {
	app := newTestApp(t)
	owner := app.register("joana")
	app.register("pedro")

	form := &entity.EditalForm{
		FormName:           "Manutencao",
		NumeroPregao:       "90001/2024",
		ObjetoServicos:     "Manutenção predial",
		TipoParticipacao:   placeholder.ParticipacaoAmpla,
		CriterioJulgamento: placeholder.CriterioMenorPreco,
	}
	e, err := app.server.editalService.Create(context.Background(), owner, form)
	require.NoError(t, err)
	id := strconv.Itoa(e.Id)

	status, _ := app.api(http.MethodGet, "/editais", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = app.api(http.MethodPost, "/login", "", strings.NewReader(`{"username":"joana","password":"nope"}`))
	assert.Equal(t, http.StatusUnauthorized, status)

	token := app.apiLogin("joana", "secret123")

	status, resp := app.api(http.MethodGet, "/editais", token, nil)
	require.Equal(t, http.StatusOK, status)
	var list []model.Edital
	require.NoError(t, json.Unmarshal(resp.Obj, &list))
	require.Len(t, list, 1)
	assert.Equal(t, e.Id, list[0].Id)

	status, resp = app.api(http.MethodGet, "/editais/"+id+"/placeholders", token, nil)
	require.Equal(t, http.StatusOK, status)
	var values map[string]string
	require.NoError(t, json.Unmarshal(resp.Obj, &values))
	assert.Equal(t, "90001/2024", values[placeholder.Token("numero_pregao")])

	status, _ = app.api(http.MethodGet, "/editais/999", token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	other := app.apiLogin("pedro", "secret123")
	status, _ = app.api(http.MethodGet, "/editais/"+id, other, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, resp = app.api(http.MethodGet, "/editais", other, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(resp.Obj, &list))
	assert.Empty(t, list)

	admin := app.apiLogin("admin", "admin123")
	status, resp = app.api(http.MethodGet, "/editais?all=true", admin, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(resp.Obj, &list))
	assert.Len(t, list, 1)
}

func TestStartTaskSchedulesJobs(t *testing.T) {
	app := newTestApp(t)
	loc, err := app.server.settingService.GetTimeLocation()
	require.NoError(t, err)

	app.server.cron = cron.New(cron.WithLocation(loc), cron.WithSeconds())
	app.server.startTask()
	assert.Len(t, app.server.GetCron().Entries(), 2)
}
