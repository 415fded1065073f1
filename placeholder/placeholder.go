// Package placeholder computes the replacement text for every template
// token from an edital record and the clause dictionary.
package placeholder

import (
	"fmt"
	"sort"
	"time"

	"github.com/editalgen/editalgen/clause"
	"github.com/editalgen/editalgen/database/model"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	DefaultEmail1           = "email1@exemplo.com"
	DefaultEmail2           = "email2@exemplo.com"
	DocumentoTecnicoDefault = "(QUANDO COUBER)"
	dateLayout              = "02/01/2006"
)

const (
	ParticipacaoAmpla     = "ampla"
	ParticipacaoExclusiva = "exclusiva"

	CriterioMenorPreco    = "menor_preco"
	CriterioMaiorDesconto = "maior_desconto"
)

const (
	participacaoAmplaTexto = "1( X ) LICITAÇÃO DE AMPLA PARTICIPAÇÃO.\n" +
		"O item 2.1 alínea \"b\" das Condições Específicas do Edital não é aplicável.\n\n" +
		"2(   ) LICITAÇÃO DE PARTICIPAÇÃO EXCLUSIVA DE MICROEMPRESAS, EMPRESAS DE PEQUENO PORTE OU COOPERATIVAS QUE PREENCHAM AS CONDIÇÕES ESTABELECIDAS NO ARTIGO 34 DA LEI FEDERAL Nº 11.488, DE 15/06/2007."

	participacaoExclusivaTexto = "1(   ) LICITAÇÃO DE AMPLA PARTICIPAÇÃO.\n" +
		"O item 2.1 alínea \"b\" das Condições Específicas do Edital não é aplicável.\n\n" +
		"2( X ) LICITAÇÃO DE PARTICIPAÇÃO EXCLUSIVA DE MICROEMPRESAS, EMPRESAS DE PEQUENO PORTE OU COOPERATIVAS QUE PREENCHAM AS CONDIÇÕES ESTABELECIDAS NO ARTIGO 34 DA LEI FEDERAL Nº 11.488, DE 15/06/2007."
)

// Signer identifies who is generating the document.
type Signer struct {
	Name         string
	Cargo        string
	CargoUsuario string
}

// DefaultSigner fills the role titles used when no setting overrides them.
func DefaultSigner(name string) Signer {
	return Signer{Name: name, Cargo: "Gerente de Projetos", CargoUsuario: "Analista"}
}

// Token wraps a placeholder name in the template delimiters.
func Token(name string) string {
	return "{{ " + name + " }}"
}

// Participacao returns the fixed participation block for the given type,
// or "" for anything other than ampla or exclusiva.
func Participacao(tipo string) string {
	switch tipo {
	case ParticipacaoAmpla:
		return participacaoAmplaTexto
	case ParticipacaoExclusiva:
		return participacaoExclusivaTexto
	}
	return ""
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func formatValor(v float64) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%.2f", v)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func when(cond bool, v string) string {
	if cond {
		return v
	}
	return ""
}

func mark(cond bool) string {
	return when(cond, "X")
}

// Resolve builds the token to value mapping. It never fails: missing
// dictionary entries resolve to "".
func Resolve(e *model.Edital, s Signer, d clause.Dictionary) map[string]string {
	upper := cases.Upper(language.BrazilianPortuguese)
	crit := e.CriterioJulgamento
	exigeQEF := e.QualificacaoEconomicoFinanceira == "exigir"

	balanco := d.Text("qualificacao_economico_financeira", "nao_exigir", "balanco_patrimonial")
	if exigeQEF {
		balanco = d.Text("qualificacao_economico_financeira", "exigir", "balanco_patrimonial")
	}

	documentoTecnico := DocumentoTecnicoDefault
	if e.DocumentoTecnicoSimNao == "sim" && e.DocumentoTecnicoNome != "" {
		documentoTecnico = e.DocumentoTecnicoNome
	}

	fiscalizacao := d.Option("fiscalizacao_inspecao_contrato", e.FiscalizacaoInspecao)
	instrumento := d.Option("tipo_instrumento_contratual_contrato", e.TipoInstrumentoContratual)
	modoDisputa := upper.String(d.Option("modo_disputa", e.ModoDisputa))

	values := map[string]string{
		"numero_pregao":           e.NumeroPregao,
		"objeto_servicos":         e.ObjetoServicos,
		"compras_gov_numero":      e.ComprasGovNumero,
		"valor_total_contratacao": formatValor(e.ValorTotalOrcamento),
		"hora_sessao":             e.HoraSessao,
		"data_sessao":             formatDate(e.DataSessao),
		"data_disponibilidade":    formatDate(e.DataDisponibilidade),
		"numero_licitacao_anexo1": e.NumeroLicitacaoAnexo1,
		"objeto_licitacao_anexo1": e.ObjetoLicitacaoAnexo1,
		"email_contato1":          orDefault(e.EmailContato1, DefaultEmail1),
		"email_contato2":          orDefault(e.EmailContato2, DefaultEmail2),
		"documento_tecnico":       documentoTecnico,

		"critério_julgamento_resumo": upper.String(d.Option("criterio_julgamento", crit)),
		"item_grupo_global_resumo":   upper.String(d.Option("aplicacao_criterio", e.AplicacaoCriterio)),
		"modo_disputa_resumo":        modoDisputa,
		"aberto_fechado_ambos":       modoDisputa,

		"licitação_ampla":       mark(e.TipoParticipacao == ParticipacaoAmpla),
		"licitação_micro":       mark(e.TipoParticipacao == ParticipacaoExclusiva),
		"clausula_participacao": Participacao(e.TipoParticipacao),

		"declaração_rec_judicial":      when(e.IncluirRecJudicial, d.Text("declaracoes_anexo1", "recuperacao_judicial")),
		"declaração_rec_extrajudicial": when(e.IncluirRecExtrajudicial, d.Text("declaracoes_anexo1", "recuperacao_extrajudicial")),
		"declaração_me_epp":            when(e.IncluirMeEpp, d.Text("declaracoes_anexo1", "micro_empresa_epp")),
		"declaração_cadmadeira":        when(e.IncluirCadmadeira, d.Text("declaracoes_anexo1", "cadmadeira")),

		"maior_desconto":           when(crit == CriterioMaiorDesconto, d.Text("criterio_julgamento", CriterioMaiorDesconto)),
		"menor_preço":              when(crit == CriterioMenorPreco, d.Text("criterio_julgamento", CriterioMenorPreco)),
		"proposta_maior_desconto":  when(crit == CriterioMaiorDesconto, d.Text("proposta_maior_desconto")),
		"maior_menor_pregao":       d.Option("julgamento_pregao", crit),
		"oferta_julgamento_resumo": d.Option("oferta_julgamento_resumo", crit),
		"menor_maior_oferta":       d.Option("menor_maior_oferta", crit),
		"maior_desconto_escolha":   when(crit == CriterioMaiorDesconto, d.Text("contratacao_escolha", CriterioMaiorDesconto)),
		"menor-preço_escolha":      when(crit == CriterioMenorPreco, d.Text("contratacao_escolha", CriterioMenorPreco)),

		"participação_cooperativas":  d.Option("permitido_cooperativa", e.PermitidoCooperativa),
		"cooperativa_gestor":         when(e.PermitidoCooperativa == "sim", d.Option("permitido_cooperativa", e.PermitidoCooperativa)),
		"participação_consorcio":     d.Option("participacao_consorcio", e.ParticipacaoConsorcio),
		"não_participação_consorcio": when(e.ParticipacaoConsorcio == "nao", d.Text("nao_participacao_consorcio")),

		"com_material":             d.Option("diferencial_aliquota", e.DiferencialAliquota),
		"prova_regularidade_fical": d.Option("regularidade_fiscal", e.RegularidadeFiscal),
		"qualificação_tecnica":     d.Option("qualificacao_tecnica", e.QualificacaoTecnica),
		"exigência_prazo":          d.Option("atestados_qualificacao_tecnica", e.AtestadosQualificacaoTecnica),
		"visita_tecnica":           d.Option("permite_visita_tecnica", e.PermiteVisitaTecnica),
		"garantia_execução":        d.Option("garantia_execucao", e.GarantiaSimNao),
		"sub_contratação":          d.Option("subcontratacao", e.Subcontratacao),

		"certidão_negativa":               when(exigeQEF, d.Text("qualificacao_economico_financeira", "exigir", "certidao_negativa")),
		"balanço_patrimonial":             balanco,
		"índice_liquidez":                 when(exigeQEF, d.Text("qualificacao_economico_financeira", "exigir", "indice_liquidez")),
		"patrimônio_liquido":              when(exigeQEF, d.Text("qualificacao_economico_financeira", "exigir", "patrimonio_liquido")),
		"certidão_negativa_administrador": when(exigeQEF, d.Text("certidao_negativa_administrador")),

		"valor_percentual":   d.Text("valor_percentual"),
		"madeira":            when(e.CadMadeira == "sim", d.Text("cad_madeira_detalhe")),
		"orçamento_sigiloso": when(e.OrcamentoSigiloso == "sim", d.Text("orcamento_sigiloso_texto")),

		"edital_condicionais.isento_icms_completa": "",

		"nome":          s.Name,
		"nome_usuario":  s.Name,
		"cargo":         s.Cargo,
		"cargo_usuario": s.CargoUsuario,

		"fiscalização_inspecao":         fiscalizacao,
		"fiscalizacao_inspecao":         fiscalizacao,
		"instrumento_contratual":        instrumento,
		"tipo_instrumento_contratual":   instrumento,
		"regime_empreitada":             d.Option("regime_empreitada_contrato", e.RegimeEmpreitada),
		"prazos_execucao":               d.Option("prazos_execucao_contrato", e.PrazosExecucao),
		"prorrogacao_contrato":          d.Option("prorrogacao_contrato_contrato", e.ProrrogacaoContrato),
		"medicao_servicos":              d.Option("medicao_servicos_contrato", e.MedicaoServicos),
		"consequencias_rescisao":        d.Option("consequencias_rescisao_contrato", e.ConsequenciasRescisao),
		"suspensao_temporaria_servicos": d.Option("suspensao_temporaria_servicos_contrato", e.SuspensaoTemporariaServicos),
		"aceitacao_servicos":            d.Option("aceitacao_servicos_contrato", e.AceitacaoServicos),
		"garantia_servicos":             d.Option("garantia_servicos_contrato", e.GarantiaServicos),
	}

	out := make(map[string]string, len(values))
	for name, v := range values {
		out[Token(name)] = v
	}
	return out
}

// Names returns every placeholder name Resolve knows, sorted.
func Names() []string {
	m := Resolve(&model.Edital{}, Signer{}, nil)
	names := make([]string, 0, len(m))
	for tok := range m {
		names = append(names, tok[3:len(tok)-3])
	}
	sort.Strings(names)
	return names
}

// Tokens returns every delimited token Resolve produces, sorted.
func Tokens() []string {
	names := Names()
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = Token(n)
	}
	return out
}
