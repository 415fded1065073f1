// Package clause loads the dictionary of legal clause text keyed by the
// option a user picks on the edital form.
package clause

import (
	"fmt"
	"sort"
	"strings"
)

// Dictionary maps a category to either a text or a nested mapping of
// option keys. Values are never mutated after loading.
type Dictionary map[string]any

// RequiredPaths lists entries that must be present for a document to be
// generated. Optional option lookups are not listed: a missing option
// simply renders as an empty string.
var RequiredPaths = [][]string{
	{"criterio_julgamento", "maior_desconto"},
	{"criterio_julgamento", "menor_preco"},
	{"aplicacao_criterio"},
	{"modo_disputa"},
	{"declaracoes_anexo1", "recuperacao_judicial"},
	{"declaracoes_anexo1", "recuperacao_extrajudicial"},
	{"declaracoes_anexo1", "micro_empresa_epp"},
	{"declaracoes_anexo1", "cadmadeira"},
	{"permitido_cooperativa"},
	{"participacao_consorcio"},
	{"nao_participacao_consorcio"},
	{"proposta_maior_desconto"},
	{"diferencial_aliquota"},
	{"regularidade_fiscal"},
	{"qualificacao_tecnica"},
	{"atestados_qualificacao_tecnica"},
	{"permite_visita_tecnica"},
	{"qualificacao_economico_financeira", "exigir", "certidao_negativa"},
	{"qualificacao_economico_financeira", "exigir", "balanco_patrimonial"},
	{"qualificacao_economico_financeira", "exigir", "indice_liquidez"},
	{"qualificacao_economico_financeira", "exigir", "patrimonio_liquido"},
	{"qualificacao_economico_financeira", "nao_exigir", "balanco_patrimonial"},
	{"valor_percentual"},
	{"julgamento_pregao"},
	{"oferta_julgamento_resumo"},
	{"menor_maior_oferta"},
	{"contratacao_escolha", "maior_desconto"},
	{"contratacao_escolha", "menor_preco"},
	{"garantia_execucao"},
	{"subcontratacao"},
	{"certidao_negativa_administrador"},
	{"cad_madeira_detalhe"},
	{"fiscalizacao_inspecao_contrato"},
	{"orcamento_sigiloso_texto"},
	{"tipo_instrumento_contratual_contrato"},
	{"regime_empreitada_contrato"},
	{"prazos_execucao_contrato"},
	{"prorrogacao_contrato_contrato"},
	{"medicao_servicos_contrato"},
	{"consequencias_rescisao_contrato"},
	{"suspensao_temporaria_servicos_contrato"},
	{"aceitacao_servicos_contrato"},
	{"garantia_servicos_contrato"},
}

func (d Dictionary) lookup(path ...string) (any, bool) {
	var cur any = map[string]any(d)
	for _, p := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Has reports whether the path exists.
func (d Dictionary) Has(path ...string) bool {
	_, ok := d.lookup(path...)
	return ok
}

// Text returns the leaf text at path, or "" when the path is absent or
// points at a mapping.
func (d Dictionary) Text(path ...string) string {
	v, ok := d.lookup(path...)
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// Option returns the text for key within category.
func (d Dictionary) Option(category, key string) string {
	if key == "" {
		return ""
	}
	return d.Text(category, key)
}

// Options returns the sorted option keys of a category.
func (d Dictionary) Options(category string) []string {
	v, ok := d.lookup(category)
	if !ok {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks every entry in RequiredPaths and reports the missing
// ones in a single error.
func (d Dictionary) Validate() error {
	var missing []string
	for _, p := range RequiredPaths {
		if !d.Has(p...) {
			missing = append(missing, strings.Join(p, "."))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(missing, ", "))
	}
	return nil
}
