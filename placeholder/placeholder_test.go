package placeholder

import (
	"strings"
	"testing"
	"time"

	"github.com/editalgen/editalgen/clause"
	"github.com/editalgen/editalgen/database/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minimalEdital() *model.Edital {
	return &model.Edital{
		FormName:       "Pregao Limpeza",
		NumeroPregao:   "12345",
		ObjetoServicos: "Serviços de limpeza",
	}
}

func TestResolveCoversEveryToken(t *testing.T) {
	m := Resolve(minimalEdital(), DefaultSigner("maria"), clause.Default())
	assert.Len(t, m, len(Tokens()))
	for _, tok := range Tokens() {
		_, ok := m[tok]
		assert.True(t, ok, tok)
	}
	assert.Len(t, Tokens(), 67)
}

func TestResolveDirectAndDefaults(t *testing.T) {
	sessao := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	e := minimalEdital()
	e.DataSessao = &sessao
	e.HoraSessao = "09:30"
	e.ValorTotalOrcamento = 150000.5

	m := Resolve(e, DefaultSigner("maria"), clause.Default())

	assert.Equal(t, "12345", m[Token("numero_pregao")])
	assert.Equal(t, "05/03/2024", m[Token("data_sessao")])
	assert.Equal(t, "", m[Token("data_disponibilidade")])
	assert.Equal(t, "09:30", m[Token("hora_sessao")])
	assert.Equal(t, "150000.50", m[Token("valor_total_contratacao")])
	assert.Equal(t, "", m[Token("compras_gov_numero")])
	assert.Equal(t, DefaultEmail1, m[Token("email_contato1")])
	assert.Equal(t, DefaultEmail2, m[Token("email_contato2")])
	assert.Equal(t, DocumentoTecnicoDefault, m[Token("documento_tecnico")])
	assert.Equal(t, "maria", m[Token("nome")])
	assert.Equal(t, "maria", m[Token("nome_usuario")])
	assert.Equal(t, "Gerente de Projetos", m[Token("cargo")])
	assert.Equal(t, "Analista", m[Token("cargo_usuario")])
	assert.Equal(t, "", m[Token("edital_condicionais.isento_icms_completa")])
}

func TestResolveDocumentoTecnico(t *testing.T) {
	e := minimalEdital()
	e.DocumentoTecnicoSimNao = "sim"
	e.DocumentoTecnicoNome = "Projeto Básico"
	assert.Equal(t, "Projeto Básico", Resolve(e, Signer{}, nil)[Token("documento_tecnico")])

	e.DocumentoTecnicoSimNao = "nao"
	assert.Equal(t, DocumentoTecnicoDefault, Resolve(e, Signer{}, nil)[Token("documento_tecnico")])
}

func TestResolveGatedDeclarations(t *testing.T) {
	d := clause.Default()
	tests := []struct {
		name   string
		token  string
		path   []string
		enable func(e *model.Edital)
	}{
		{"rec judicial", "declaração_rec_judicial", []string{"declaracoes_anexo1", "recuperacao_judicial"}, func(e *model.Edital) { e.IncluirRecJudicial = true }},
		{"rec extrajudicial", "declaração_rec_extrajudicial", []string{"declaracoes_anexo1", "recuperacao_extrajudicial"}, func(e *model.Edital) { e.IncluirRecExtrajudicial = true }},
		{"me epp", "declaração_me_epp", []string{"declaracoes_anexo1", "micro_empresa_epp"}, func(e *model.Edital) { e.IncluirMeEpp = true }},
		{"cadmadeira", "declaração_cadmadeira", []string{"declaracoes_anexo1", "cadmadeira"}, func(e *model.Edital) { e.IncluirCadmadeira = true }},
		{"madeira", "madeira", []string{"cad_madeira_detalhe"}, func(e *model.Edital) { e.CadMadeira = "sim" }},
		{"orcamento sigiloso", "orçamento_sigiloso", []string{"orcamento_sigiloso_texto"}, func(e *model.Edital) { e.OrcamentoSigiloso = "sim" }},
		{"nao consorcio", "não_participação_consorcio", []string{"nao_participacao_consorcio"}, func(e *model.Edital) { e.ParticipacaoConsorcio = "nao" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := minimalEdital()
			assert.Equal(t, "", Resolve(e, Signer{}, d)[Token(tt.token)])

			tt.enable(e)
			want := d.Text(tt.path...)
			require.NotEmpty(t, want)
			assert.Equal(t, want, Resolve(e, Signer{}, d)[Token(tt.token)])
		})
	}
}

func TestResolveCriterio(t *testing.T) {
	d := clause.Default()
	e := minimalEdital()

	e.CriterioJulgamento = CriterioMaiorDesconto
	m := Resolve(e, Signer{}, d)
	assert.Equal(t, "Maior desconto", m[Token("maior_desconto")])
	assert.Equal(t, "", m[Token("menor_preço")])
	assert.Equal(t, "MAIOR DESCONTO", m[Token("critério_julgamento_resumo")])
	assert.Equal(t, d.Text("proposta_maior_desconto"), m[Token("proposta_maior_desconto")])
	assert.Equal(t, d.Text("contratacao_escolha", "maior_desconto"), m[Token("maior_desconto_escolha")])
	assert.Equal(t, "", m[Token("menor-preço_escolha")])
	assert.Equal(t, "maior oferta", m[Token("menor_maior_oferta")])

	e.CriterioJulgamento = CriterioMenorPreco
	m = Resolve(e, Signer{}, d)
	assert.Equal(t, "", m[Token("maior_desconto")])
	assert.Equal(t, "Menor preço", m[Token("menor_preço")])
	assert.Equal(t, "MENOR PREÇO", m[Token("critério_julgamento_resumo")])
	assert.Equal(t, "", m[Token("proposta_maior_desconto")])
	assert.Equal(t, d.Text("contratacao_escolha", "menor_preco"), m[Token("menor-preço_escolha")])
}

func TestResolveUnknownOptionIsEmpty(t *testing.T) {
	e := minimalEdital()
	e.ModoDisputa = "leilao"
	e.RegimeEmpreitada = "integrada"
	m := Resolve(e, Signer{}, clause.Default())
	assert.Equal(t, "", m[Token("modo_disputa_resumo")])
	assert.Equal(t, "", m[Token("aberto_fechado_ambos")])
	assert.Equal(t, "", m[Token("regime_empreitada")])
}

func TestResolveEmptyDictionaryNeverPanics(t *testing.T) {
	e := minimalEdital()
	e.CriterioJulgamento = CriterioMaiorDesconto
	e.QualificacaoEconomicoFinanceira = "exigir"
	e.IncluirRecJudicial = true
	assert.NotPanics(t, func() {
		m := Resolve(e, Signer{}, clause.Dictionary{})
		assert.Equal(t, "", m[Token("declaração_rec_judicial")])
		assert.Equal(t, "", m[Token("balanço_patrimonial")])
	})
}

func TestResolveQualificacaoEconomicoFinanceira(t *testing.T) {
	d := clause.Default()
	e := minimalEdital()

	e.QualificacaoEconomicoFinanceira = "nao_exigir"
	m := Resolve(e, Signer{}, d)
	assert.Equal(t, d.Text("qualificacao_economico_financeira", "nao_exigir", "balanco_patrimonial"), m[Token("balanço_patrimonial")])
	assert.Equal(t, "", m[Token("certidão_negativa")])
	assert.Equal(t, "", m[Token("certidão_negativa_administrador")])

	e.QualificacaoEconomicoFinanceira = "exigir"
	m = Resolve(e, Signer{}, d)
	assert.Equal(t, d.Text("qualificacao_economico_financeira", "exigir", "balanco_patrimonial"), m[Token("balanço_patrimonial")])
	assert.NotEmpty(t, m[Token("certidão_negativa")])
	assert.NotEmpty(t, m[Token("índice_liquidez")])
	assert.NotEmpty(t, m[Token("patrimônio_liquido")])
	assert.NotEmpty(t, m[Token("certidão_negativa_administrador")])
}

func TestResolveCooperativa(t *testing.T) {
	d := clause.Default()
	e := minimalEdital()

	e.PermitidoCooperativa = "nao"
	m := Resolve(e, Signer{}, d)
	assert.Equal(t, d.Option("permitido_cooperativa", "nao"), m[Token("participação_cooperativas")])
	assert.Equal(t, "", m[Token("cooperativa_gestor")])

	e.PermitidoCooperativa = "sim"
	m = Resolve(e, Signer{}, d)
	assert.Equal(t, d.Option("permitido_cooperativa", "sim"), m[Token("cooperativa_gestor")])
}

func TestParticipacao(t *testing.T) {
	ampla := Participacao(ParticipacaoAmpla)
	assert.True(t, strings.HasPrefix(ampla, "1( X )"))
	assert.Contains(t, ampla, "2(   )")
	assert.Equal(t, 1, strings.Count(ampla, "( X )"))

	exclusiva := Participacao(ParticipacaoExclusiva)
	assert.True(t, strings.HasPrefix(exclusiva, "1(   )"))
	assert.Contains(t, exclusiva, "2( X )")
	assert.Equal(t, 1, strings.Count(exclusiva, "( X )"))

	assert.Equal(t, "", Participacao("micro"))

	e := minimalEdital()
	e.TipoParticipacao = ParticipacaoAmpla
	m := Resolve(e, Signer{}, nil)
	assert.Equal(t, "X", m[Token("licitação_ampla")])
	assert.Equal(t, "", m[Token("licitação_micro")])
	assert.Equal(t, ampla, m[Token("clausula_participacao")])

	e.TipoParticipacao = ParticipacaoExclusiva
	m = Resolve(e, Signer{}, nil)
	assert.Equal(t, "", m[Token("licitação_ampla")])
	assert.Equal(t, "X", m[Token("licitação_micro")])
}
