// Package entity defines the request and response shapes of the web layer.
package entity

import (
	"math"
	"net"
	"strings"
	"time"

	"github.com/editalgen/editalgen/database/model"
	"github.com/editalgen/editalgen/util/common"

	"github.com/robfig/cron/v3"
)

// Msg is the standard JSON response envelope.
type Msg struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Obj     any    `json:"obj"`
}

// CronParser accepts the same expressions as the server scheduler.
var CronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// AllSetting holds every setting editable from the admin settings page.
type AllSetting struct {
	WebListen     string `json:"webListen" form:"webListen"`
	WebPort       int    `json:"webPort" form:"webPort"`
	WebBasePath   string `json:"webBasePath" form:"webBasePath"`
	SessionMaxAge int    `json:"sessionMaxAge" form:"sessionMaxAge"` // minutes
	TimeLocation  string `json:"timeLocation" form:"timeLocation"`

	SignerCargo        string `json:"signerCargo" form:"signerCargo"`
	SignerCargoUsuario string `json:"signerCargoUsuario" form:"signerCargoUsuario"`

	OrphanCleanupCron   string `json:"orphanCleanupCron" form:"orphanCleanupCron"`
	OrphanMaxAgeMinutes int    `json:"orphanMaxAgeMinutes" form:"orphanMaxAgeMinutes"`
	AuditRetentionDays  int    `json:"auditRetentionDays" form:"auditRetentionDays"`
}

func (s *AllSetting) CheckValid() error {
	if s.WebListen != "" {
		ip := net.ParseIP(s.WebListen)
		if ip == nil {
			return common.NewError("web listen is not valid ip:", s.WebListen)
		}
	}

	if s.WebPort <= 0 || s.WebPort > math.MaxUint16 {
		return common.NewError("web port is not a valid port:", s.WebPort)
	}

	if s.SessionMaxAge <= 0 {
		return common.NewError("session max age must be positive:", s.SessionMaxAge)
	}

	if !strings.HasPrefix(s.WebBasePath, "/") {
		s.WebBasePath = "/" + s.WebBasePath
	}
	if !strings.HasSuffix(s.WebBasePath, "/") {
		s.WebBasePath += "/"
	}

	_, err := time.LoadLocation(s.TimeLocation)
	if err != nil {
		return common.NewError("time location not exist:", s.TimeLocation)
	}

	if _, err := CronParser.Parse(s.OrphanCleanupCron); err != nil {
		return common.NewErrorf("orphan cleanup schedule <%v> invalid: %v", s.OrphanCleanupCron, err)
	}
	if s.OrphanMaxAgeMinutes <= 0 {
		return common.NewError("orphan max age must be positive:", s.OrphanMaxAgeMinutes)
	}
	if s.AuditRetentionDays <= 0 {
		return common.NewError("audit retention must be positive:", s.AuditRetentionDays)
	}
	return nil
}

// RegisterForm is used by self registration and by admins adding users.
type RegisterForm struct {
	Username  string `json:"username" form:"username" binding:"required,min=4,max=20"`
	Email     string `json:"email" form:"email" binding:"required,email"`
	Password  string `json:"password" form:"password" binding:"required,min=6"`
	Password2 string `json:"password2" form:"password2" binding:"required,eqfield=Password"`
	Role      string `json:"role" form:"role" binding:"omitempty,oneof=user admin"`
}

const dateFormat = "2006-01-02"

// EditalForm carries the generate/edit form. Choice fields are option keys
// of the clause dictionary; yes/no fields are limited to sim and nao.
type EditalForm struct {
	FormName               string    `json:"formName" form:"form_name" binding:"required,max=200"`
	NumeroPregao           string    `json:"numeroPregao" form:"numero_pregao" binding:"required,max=50"`
	ObjetoServicos         string    `json:"objetoServicos" form:"objeto_servicos" binding:"required"`
	ComprasGovNumero       string    `json:"comprasGovNumero" form:"compras_gov_numero" binding:"max=50"`
	ValorTotalOrcamento    float64   `json:"valorTotalOrcamento" form:"valor_total_orcamento" binding:"gte=0"`
	DataBaseOrcamento      time.Time `json:"dataBaseOrcamento" form:"data_base_orcamento" time_format:"2006-01-02"`
	DataSessao             time.Time `json:"dataSessao" form:"data_sessao" time_format:"2006-01-02"`
	HoraSessao             string    `json:"horaSessao" form:"hora_sessao" binding:"max=10"`
	DataDisponibilidade    time.Time `json:"dataDisponibilidade" form:"data_disponibilidade" time_format:"2006-01-02"`
	EmailContato1          string    `json:"emailContato1" form:"email_contato1" binding:"omitempty,email"`
	EmailContato2          string    `json:"emailContato2" form:"email_contato2" binding:"omitempty,email"`
	OrcamentoSigiloso      string    `json:"orcamentoSigiloso" form:"orcamento_sigiloso" binding:"omitempty,oneof=sim nao"`
	DocumentoTecnicoSimNao string    `json:"documentoTecnicoSimNao" form:"documento_tecnico_sim_nao" binding:"omitempty,oneof=sim nao"`
	DocumentoTecnicoNome   string    `json:"documentoTecnicoNome" form:"documento_tecnico_nome" binding:"max=200"`

	PermiteVisitaTecnica            string `json:"permiteVisitaTecnica" form:"permite_visita_tecnica"`
	CriterioJulgamento              string `json:"criterioJulgamento" form:"criterio_julgamento"`
	AplicacaoCriterio               string `json:"aplicacaoCriterio" form:"aplicacao_criterio"`
	ModoDisputa                     string `json:"modoDisputa" form:"modo_disputa"`
	TipoParticipacao                string `json:"tipoParticipacao" form:"tipo_participacao"`
	ParticipacaoConsorcio           string `json:"participacaoConsorcio" form:"participacao_consorcio" binding:"omitempty,oneof=sim nao"`
	DiferencialAliquota             string `json:"diferencialAliquota" form:"diferencial_aliquota"`
	RegularidadeFiscal              string `json:"regularidadeFiscal" form:"regularidade_fiscal"`
	QualificacaoTecnica             string `json:"qualificacaoTecnica" form:"qualificacao_tecnica"`
	AtestadosQualificacaoTecnica    string `json:"atestadosQualificacaoTecnica" form:"atestados_qualificacao_tecnica"`
	QualificacaoEconomicoFinanceira string `json:"qualificacaoEconomicoFinanceira" form:"qualificacao_economico_financeira" binding:"omitempty,oneof=exigir nao_exigir"`
	ServicoContinuo                 string `json:"servicoContinuo" form:"servico_continuo" binding:"omitempty,oneof=sim nao"`
	GarantiaSimNao                  string `json:"garantiaSimNao" form:"garantia_sim_nao"`
	Subcontratacao                  string `json:"subcontratacao" form:"subcontratacao"`
	PermitidoCooperativa            string `json:"permitidoCooperativa" form:"permitido_cooperativa" binding:"omitempty,oneof=sim nao"`
	CadMadeira                      string `json:"cadMadeira" form:"cad_madeira" binding:"omitempty,oneof=sim nao"`

	NumeroLicitacaoAnexo1 string `json:"numeroLicitacaoAnexo1" form:"numero_licitacao_anexo1" binding:"max=50"`
	ObjetoLicitacaoAnexo1 string `json:"objetoLicitacaoAnexo1" form:"objeto_licitacao_anexo1"`

	IncluirRecJudicial      bool `json:"incluirRecJudicial" form:"incluir_rec_judicial"`
	IncluirRecExtrajudicial bool `json:"incluirRecExtrajudicial" form:"incluir_rec_extrajudicial"`
	IncluirMeEpp            bool `json:"incluirMeEpp" form:"incluir_me_epp"`
	IncluirCadmadeira       bool `json:"incluirCadmadeira" form:"incluir_cadmadeira"`

	RegimeEmpreitada            string `json:"regimeEmpreitada" form:"regime_empreitada"`
	PrazosExecucao              string `json:"prazosExecucao" form:"prazos_execucao"`
	TipoInstrumentoContratual   string `json:"tipoInstrumentoContratual" form:"tipo_instrumento_contratual"`
	ProrrogacaoContrato         string `json:"prorrogacaoContrato" form:"prorrogacao_contrato"`
	MedicaoServicos             string `json:"medicaoServicos" form:"medicao_servicos"`
	FiscalizacaoInspecao        string `json:"fiscalizacaoInspecao" form:"fiscalizacao_inspecao"`
	ConsequenciasRescisao       string `json:"consequenciasRescisao" form:"consequencias_rescisao"`
	SuspensaoTemporariaServicos string `json:"suspensaoTemporariaServicos" form:"suspensao_temporaria_servicos"`
	AceitacaoServicos           string `json:"aceitacaoServicos" form:"aceitacao_servicos"`
	GarantiaServicos            string `json:"garantiaServicos" form:"garantia_servicos"`
}

func datePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

func dateValue(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// FormatDate renders a date for an <input type="date">, "" when unset.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateFormat)
}

// Apply copies the form onto e. Identity, ownership and the generated
// file name are left untouched.
func (f *EditalForm) Apply(e *model.Edital) {
	e.FormName = strings.TrimSpace(f.FormName)
	e.NumeroPregao = strings.TrimSpace(f.NumeroPregao)
	e.ObjetoServicos = f.ObjetoServicos
	e.ComprasGovNumero = f.ComprasGovNumero
	e.ValorTotalOrcamento = f.ValorTotalOrcamento
	e.DataBaseOrcamento = datePtr(f.DataBaseOrcamento)
	e.DataSessao = datePtr(f.DataSessao)
	e.HoraSessao = f.HoraSessao
	e.DataDisponibilidade = datePtr(f.DataDisponibilidade)
	e.EmailContato1 = f.EmailContato1
	e.EmailContato2 = f.EmailContato2
	e.OrcamentoSigiloso = f.OrcamentoSigiloso
	e.DocumentoTecnicoSimNao = f.DocumentoTecnicoSimNao
	e.DocumentoTecnicoNome = f.DocumentoTecnicoNome

	e.PermiteVisitaTecnica = f.PermiteVisitaTecnica
	e.CriterioJulgamento = f.CriterioJulgamento
	e.AplicacaoCriterio = f.AplicacaoCriterio
	e.ModoDisputa = f.ModoDisputa
	e.TipoParticipacao = f.TipoParticipacao
	e.ParticipacaoConsorcio = f.ParticipacaoConsorcio
	e.DiferencialAliquota = f.DiferencialAliquota
	e.RegularidadeFiscal = f.RegularidadeFiscal
	e.QualificacaoTecnica = f.QualificacaoTecnica
	e.AtestadosQualificacaoTecnica = f.AtestadosQualificacaoTecnica
	e.QualificacaoEconomicoFinanceira = f.QualificacaoEconomicoFinanceira
	e.ServicoContinuo = f.ServicoContinuo
	e.GarantiaSimNao = f.GarantiaSimNao
	e.Subcontratacao = f.Subcontratacao
	e.PermitidoCooperativa = f.PermitidoCooperativa
	e.CadMadeira = f.CadMadeira

	e.NumeroLicitacaoAnexo1 = f.NumeroLicitacaoAnexo1
	e.ObjetoLicitacaoAnexo1 = f.ObjetoLicitacaoAnexo1

	e.IncluirRecJudicial = f.IncluirRecJudicial
	e.IncluirRecExtrajudicial = f.IncluirRecExtrajudicial
	e.IncluirMeEpp = f.IncluirMeEpp
	e.IncluirCadmadeira = f.IncluirCadmadeira

	e.RegimeEmpreitada = f.RegimeEmpreitada
	e.PrazosExecucao = f.PrazosExecucao
	e.TipoInstrumentoContratual = f.TipoInstrumentoContratual
	e.ProrrogacaoContrato = f.ProrrogacaoContrato
	e.MedicaoServicos = f.MedicaoServicos
	e.FiscalizacaoInspecao = f.FiscalizacaoInspecao
	e.ConsequenciasRescisao = f.ConsequenciasRescisao
	e.SuspensaoTemporariaServicos = f.SuspensaoTemporariaServicos
	e.AceitacaoServicos = f.AceitacaoServicos
	e.GarantiaServicos = f.GarantiaServicos
}

// NewEditalForm prefills a form from a stored edital.
func NewEditalForm(e *model.Edital) *EditalForm {
	return &EditalForm{
		FormName:               e.FormName,
		NumeroPregao:           e.NumeroPregao,
		ObjetoServicos:         e.ObjetoServicos,
		ComprasGovNumero:       e.ComprasGovNumero,
		ValorTotalOrcamento:    e.ValorTotalOrcamento,
		DataBaseOrcamento:      dateValue(e.DataBaseOrcamento),
		DataSessao:             dateValue(e.DataSessao),
		HoraSessao:             e.HoraSessao,
		DataDisponibilidade:    dateValue(e.DataDisponibilidade),
		EmailContato1:          e.EmailContato1,
		EmailContato2:          e.EmailContato2,
		OrcamentoSigiloso:      e.OrcamentoSigiloso,
		DocumentoTecnicoSimNao: e.DocumentoTecnicoSimNao,
		DocumentoTecnicoNome:   e.DocumentoTecnicoNome,

		PermiteVisitaTecnica:            e.PermiteVisitaTecnica,
		CriterioJulgamento:              e.CriterioJulgamento,
		AplicacaoCriterio:               e.AplicacaoCriterio,
		ModoDisputa:                     e.ModoDisputa,
		TipoParticipacao:                e.TipoParticipacao,
		ParticipacaoConsorcio:           e.ParticipacaoConsorcio,
		DiferencialAliquota:             e.DiferencialAliquota,
		RegularidadeFiscal:              e.RegularidadeFiscal,
		QualificacaoTecnica:             e.QualificacaoTecnica,
		AtestadosQualificacaoTecnica:    e.AtestadosQualificacaoTecnica,
		QualificacaoEconomicoFinanceira: e.QualificacaoEconomicoFinanceira,
		ServicoContinuo:                 e.ServicoContinuo,
		GarantiaSimNao:                  e.GarantiaSimNao,
		Subcontratacao:                  e.Subcontratacao,
		PermitidoCooperativa:            e.PermitidoCooperativa,
		CadMadeira:                      e.CadMadeira,

		NumeroLicitacaoAnexo1: e.NumeroLicitacaoAnexo1,
		ObjetoLicitacaoAnexo1: e.ObjetoLicitacaoAnexo1,

		IncluirRecJudicial:      e.IncluirRecJudicial,
		IncluirRecExtrajudicial: e.IncluirRecExtrajudicial,
		IncluirMeEpp:            e.IncluirMeEpp,
		IncluirCadmadeira:       e.IncluirCadmadeira,

		RegimeEmpreitada:            e.RegimeEmpreitada,
		PrazosExecucao:              e.PrazosExecucao,
		TipoInstrumentoContratual:   e.TipoInstrumentoContratual,
		ProrrogacaoContrato:         e.ProrrogacaoContrato,
		MedicaoServicos:             e.MedicaoServicos,
		FiscalizacaoInspecao:        e.FiscalizacaoInspecao,
		ConsequenciasRescisao:       e.ConsequenciasRescisao,
		SuspensaoTemporariaServicos: e.SuspensaoTemporariaServicos,
		AceitacaoServicos:           e.AceitacaoServicos,
		GarantiaServicos:            e.GarantiaServicos,
	}
}

// Field describes one select on the edital form: the form field name and
// the clause category its options come from.
type Field struct {
	Name     string
	Category string
}

// OptionFields lists the dictionary backed selects in form order.
var OptionFields = []Field{
	{"permite_visita_tecnica", "permite_visita_tecnica"},
	{"criterio_julgamento", "criterio_julgamento"},
	{"aplicacao_criterio", "aplicacao_criterio"},
	{"modo_disputa", "modo_disputa"},
	{"diferencial_aliquota", "diferencial_aliquota"},
	{"regularidade_fiscal", "regularidade_fiscal"},
	{"qualificacao_tecnica", "qualificacao_tecnica"},
	{"atestados_qualificacao_tecnica", "atestados_qualificacao_tecnica"},
	{"garantia_sim_nao", "garantia_execucao"},
	{"subcontratacao", "subcontratacao"},
	{"regime_empreitada", "regime_empreitada_contrato"},
	{"prazos_execucao", "prazos_execucao_contrato"},
	{"tipo_instrumento_contratual", "tipo_instrumento_contratual_contrato"},
	{"prorrogacao_contrato", "prorrogacao_contrato_contrato"},
	{"medicao_servicos", "medicao_servicos_contrato"},
	{"fiscalizacao_inspecao", "fiscalizacao_inspecao_contrato"},
	{"consequencias_rescisao", "consequencias_rescisao_contrato"},
	{"suspensao_temporaria_servicos", "suspensao_temporaria_servicos_contrato"},
	{"aceitacao_servicos", "aceitacao_servicos_contrato"},
	{"garantia_servicos", "garantia_servicos_contrato"},
}
