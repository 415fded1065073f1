package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/editalgen/editalgen/clause"
	"github.com/editalgen/editalgen/database"
	"github.com/editalgen/editalgen/database/model"
	"github.com/editalgen/editalgen/docx"
	"github.com/editalgen/editalgen/placeholder"
	"github.com/editalgen/editalgen/storage"
	"github.com/editalgen/editalgen/web/entity"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)

type fixture struct {
	dir       string
	store     *storage.Local
	generator *DocumentGenerator
	editais   *EditalService
	admin     *model.User
}

func setupDB(t *testing.T) {
	t.Helper()
	require.NoError(t, database.InitDBWithDialector(sqlite.Open(filepath.Join(t.TempDir(), "test.db"))))
	t.Cleanup(func() { _ = database.CloseDB() })
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	setupDB(t)

	dir := t.TempDir()
	template := filepath.Join(dir, "modelo.docx")
	require.NoError(t, docx.SampleTemplate(placeholder.Tokens()).Save(template))
	clauses := filepath.Join(dir, "clausulas.json")
	_, err := clause.WriteDefault(clauses)
	require.NoError(t, err)

	store := storage.NewLocal(filepath.Join(dir, "generated"))
	require.NoError(t, os.MkdirAll(store.Dir(), 0o755))

	g := NewDocumentGenerator(clause.NewLoader(clauses, nil), template, store)
	g.Now = func() time.Time { return fixedNow }

	admin := &model.User{}
	require.NoError(t, database.GetDB().Where("role = ?", model.RoleAdmin).First(admin).Error)

	return &fixture{
		dir:       dir,
		store:     store,
		generator: g,
		editais:   NewEditalService(g),
		admin:     admin,
	}
}

func (f *fixture) user(t *testing.T, name string) *model.User {
	t.Helper()
	var us UserService
	u, err := us.Register(name, name+"@example.com", "secret123", model.RoleUser)
	require.NoError(t, err)
	return u
}

func minimalForm(title string) *entity.EditalForm {
	return &entity.EditalForm{
		FormName:           title,
		NumeroPregao:       "90001/2024",
		ObjetoServicos:     "Serviços de limpeza predial",
		TipoParticipacao:   placeholder.ParticipacaoAmpla,
		CriterioJulgamento: placeholder.CriterioMenorPreco,
	}
}

func (f *fixture) openStored(t *testing.T, name string) *docx.Document {
	t.Helper()
	doc, err := docx.Open(filepath.Join(f.store.Dir(), name))
	require.NoError(t, err)
	return doc
}

func TestCreateGeneratesDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, err := f.editais.Create(ctx, f.admin, minimalForm("Pregão/Limpeza 1"))
	require.NoError(t, err)
	assert.NotZero(t, e.Id)
	assert.Equal(t, "Edital_Pregão_Limpeza_1_20240305_143000.docx", e.GeneratedFilename)

	var stored model.Edital
	require.NoError(t, database.GetDB().First(&stored, e.Id).Error)
	assert.Equal(t, e.GeneratedFilename, stored.GeneratedFilename)
	assert.Equal(t, f.admin.Id, stored.CreatorId)

	doc := f.openStored(t, e.GeneratedFilename)
	for _, tok := range placeholder.Tokens() {
		assert.False(t, doc.Contains(tok), "token %s left in document", tok)
	}
	d := clause.Default()
	assert.False(t, doc.Contains(d.Text("declaracoes_anexo1", "recuperacao_judicial")))
	assert.False(t, doc.Contains(d.Text("cad_madeira_detalhe")))
	assert.True(t, doc.Contains("90001/2024"))
	assert.True(t, doc.Contains("1( X ) LICITAÇÃO DE AMPLA PARTICIPAÇÃO."))
	assert.Equal(t, int64(1), f.generator.Generated())
}

func TestCreateIncludesToggledClauses(t *testing.T) {
	f := newFixture(t)
	form := minimalForm("Toggles")
	form.IncluirRecJudicial = true
	form.CadMadeira = "sim"

	e, err := f.editais.Create(context.Background(), f.admin, form)
	require.NoError(t, err)

	d := clause.Default()
	doc := f.openStored(t, e.GeneratedFilename)
	assert.True(t, doc.Contains(d.Text("declaracoes_anexo1", "recuperacao_judicial")))
	assert.True(t, doc.Contains(d.Text("cad_madeira_detalhe")))
	assert.False(t, doc.Contains(d.Text("declaracoes_anexo1", "micro_empresa_epp")))
}

func TestCreateSameSecondGetsSuffix(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.editais.Create(ctx, f.admin, minimalForm("Dup"))
	require.NoError(t, err)
	b, err := f.editais.Create(ctx, f.admin, minimalForm("Dup"))
	require.NoError(t, err)

	assert.Equal(t, "Edital_Dup_20240305_143000.docx", a.GeneratedFilename)
	assert.Equal(t, "Edital_Dup_20240305_143000_2.docx", b.GeneratedFilename)
}

func TestConcurrentGenerateClaimsDistinctNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 32
	names := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			names[i], errs[i] = f.generator.Generate(ctx, &model.Edital{FormName: "Dup"}, placeholder.DefaultSigner("admin"), false)
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		seen[names[i]] = true
	}
	assert.Len(t, seen, n)
	assert.True(t, seen["Edital_Dup_20240305_143000.docx"])
	assert.True(t, seen["Edital_Dup_20240305_143000_32.docx"])

	objects, err := f.store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, objects, n)
	assert.Equal(t, int64(n), f.generator.Generated())
}

func TestCreateWithoutTemplateLeavesNothing(t *testing.T) {
	f := newFixture(t)
	f.generator.Template = filepath.Join(f.dir, "missing.docx")

	_, err := f.editais.Create(context.Background(), f.admin, minimalForm("Sem modelo"))
	require.ErrorIs(t, err, ErrConfig)

	n, err := f.editais.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
	objects, err := f.store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, objects)
	assert.Equal(t, int64(1), f.generator.Failed())
}

func TestCreateWithoutClausesFails(t *testing.T) {
	f := newFixture(t)
	f.generator.Clauses = clause.NewLoader(filepath.Join(f.dir, "none.json"), nil)

	_, err := f.editais.Create(context.Background(), f.admin, minimalForm("Sem cláusulas"))
	require.ErrorIs(t, err, ErrConfig)
	require.ErrorIs(t, err, clause.ErrNotFound)

	n, err := f.editais.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpdateReplacesFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, err := f.editais.Create(ctx, f.admin, minimalForm("Original"))
	require.NoError(t, err)
	old := e.GeneratedFilename

	form := entity.NewEditalForm(e)
	form.NumeroPregao = "90002/2024"
	updated, cleanup, err := f.editais.Update(ctx, f.admin, e.Id, form)
	require.NoError(t, err)

	assert.Equal(t, "Edital_Original_EDITED_20240305_143000.docx", updated.GeneratedFilename)
	assert.Equal(t, []string{old}, cleanup.Removed)
	exists, err := f.store.Exists(ctx, old)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.True(t, f.openStored(t, updated.GeneratedFilename).Contains("90002/2024"))

	var stored model.Edital
	require.NoError(t, database.GetDB().First(&stored, e.Id).Error)
	assert.Equal(t, "90002/2024", stored.NumeroPregao)
	assert.Equal(t, updated.GeneratedFilename, stored.GeneratedFilename)
}

func TestUpdateReportsMissingOldFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, err := f.editais.Create(ctx, f.admin, minimalForm("Sumiu"))
	require.NoError(t, err)
	require.NoError(t, f.store.Remove(ctx, e.GeneratedFilename))

	_, cleanup, err := f.editais.Update(ctx, f.admin, e.Id, entity.NewEditalForm(e))
	require.NoError(t, err)
	assert.Equal(t, []string{e.GeneratedFilename}, cleanup.Missing)
	assert.Empty(t, cleanup.Removed)
}

func TestDeleteRemovesRecordAndFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, err := f.editais.Create(ctx, f.admin, minimalForm("Apagar"))
	require.NoError(t, err)

	deleted, cleanup, err := f.editais.Delete(ctx, f.admin, e.Id)
	require.NoError(t, err)
	assert.Equal(t, e.Id, deleted.Id)
	assert.Equal(t, []string{e.GeneratedFilename}, cleanup.Removed)

	_, err = f.editais.Get(f.admin, e.Id)
	assert.ErrorIs(t, err, ErrNotFound)
	exists, err := f.store.Exists(ctx, e.GeneratedFilename)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDeleteWithoutFile(t *testing.T) {
	f := newFixture(t)
	e := &model.Edital{CreatorId: f.admin.Id, FormName: "x", NumeroPregao: "1", ObjetoServicos: "y"}
	require.NoError(t, database.GetDB().Create(e).Error)

	_, cleanup, err := f.editais.Delete(context.Background(), f.admin, e.Id)
	require.NoError(t, err)
	assert.True(t, cleanup.NoFile)
}

func TestAccessControl(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	e, err := f.editais.Create(ctx, alice, minimalForm("Da Alice"))
	require.NoError(t, err)

	_, err = f.editais.Get(bob, e.Id)
	assert.ErrorIs(t, err, ErrForbidden)
	_, _, err = f.editais.Delete(ctx, bob, e.Id)
	assert.ErrorIs(t, err, ErrForbidden)
	_, _, err = f.editais.OpenDocument(ctx, bob, e.GeneratedFilename)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.editais.Get(f.admin, e.Id)
	assert.NoError(t, err)

	r, size, err := f.editais.OpenDocument(ctx, alice, e.GeneratedFilename)
	require.NoError(t, err)
	defer r.Close()
	assert.Positive(t, size)

	_, _, err = f.editais.OpenDocument(ctx, alice, "../"+e.GeneratedFilename)
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = f.editais.OpenDocument(ctx, alice, "Edital_nada.docx")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListByUserNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")

	first, err := f.editais.Create(ctx, alice, minimalForm("Primeiro"))
	require.NoError(t, err)
	second, err := f.editais.Create(ctx, alice, minimalForm("Segundo"))
	require.NoError(t, err)
	_, err = f.editais.Create(ctx, f.admin, minimalForm("Do admin"))
	require.NoError(t, err)

	list, err := f.editais.ListByUser(alice.Id)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.Id, list[0].Id)
	assert.Equal(t, first.Id, list[1].Id)

	all, err := f.editais.ListAll()
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.NotNil(t, all[0].Creator)

	refs, err := f.editais.ReferencedFiles()
	require.NoError(t, err)
	assert.Len(t, refs, 3)
	assert.True(t, refs[first.GeneratedFilename])
}

func TestPlaceholdersPreview(t *testing.T) {
	f := newFixture(t)
	e, err := f.editais.Create(context.Background(), f.admin, minimalForm("Preview"))
	require.NoError(t, err)

	values, err := f.editais.Placeholders(f.admin, e.Id)
	require.NoError(t, err)
	assert.Equal(t, "90001/2024", values[placeholder.Token("numero_pregao")])
	assert.Equal(t, "X", values[placeholder.Token("licitação_ampla")])
	assert.Equal(t, "", values[placeholder.Token("licitação_micro")])
	assert.Equal(t, f.admin.Username, values[placeholder.Token("nome")])
}

func TestRenderToDoesNotStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e, err := f.editais.Create(ctx, f.admin, minimalForm("Render"))
	require.NoError(t, err)

	out := filepath.Join(f.dir, "out.docx")
	file, err := os.Create(out)
	require.NoError(t, err)
	require.NoError(t, f.editais.RenderTo(e.Id, file))
	require.NoError(t, file.Close())

	doc, err := docx.Open(out)
	require.NoError(t, err)
	assert.True(t, doc.Contains("90001/2024"))

	objects, err := f.store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, objects, 1)
}
