// Package model holds the gorm models persisted by the application.
package model

import (
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	Id        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Username  string    `json:"username" gorm:"size:80;uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"size:120;uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"size:200;not null"`
	Role      Role      `json:"role" gorm:"size:20;default:user"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Edital is a procurement notice. Choice fields hold option keys looked up
// in the clause dictionary when the document is generated.
type Edital struct {
	Id                int       `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatorId         int       `json:"creatorId" gorm:"index;not null"`
	Creator           *User     `json:"creator,omitempty" gorm:"foreignKey:CreatorId;constraint:OnDelete:CASCADE"`
	DataCriacao       time.Time `json:"dataCriacao" gorm:"autoCreateTime"`
	UpdatedAt         time.Time `json:"updatedAt"`
	GeneratedFilename string    `json:"generatedFilename" gorm:"size:255;index"`

	FormName               string     `json:"formName" gorm:"size:200;not null"`
	NumeroPregao           string     `json:"numeroPregao" gorm:"size:50;not null"`
	ObjetoServicos         string     `json:"objetoServicos" gorm:"type:text;not null"`
	ComprasGovNumero       string     `json:"comprasGovNumero" gorm:"size:50"`
	ValorTotalOrcamento    float64    `json:"valorTotalOrcamento"`
	DataBaseOrcamento      *time.Time `json:"dataBaseOrcamento"`
	DataSessao             *time.Time `json:"dataSessao"`
	HoraSessao             string     `json:"horaSessao" gorm:"size:10"`
	DataDisponibilidade    *time.Time `json:"dataDisponibilidade"`
	EmailContato1          string     `json:"emailContato1" gorm:"size:120"`
	EmailContato2          string     `json:"emailContato2" gorm:"size:120"`
	OrcamentoSigiloso      string     `json:"orcamentoSigiloso" gorm:"size:10"`
	DocumentoTecnicoSimNao string     `json:"documentoTecnicoSimNao" gorm:"size:10"`
	DocumentoTecnicoNome   string     `json:"documentoTecnicoNome" gorm:"size:200"`

	PermiteVisitaTecnica            string `json:"permiteVisitaTecnica" gorm:"size:50"`
	CriterioJulgamento              string `json:"criterioJulgamento" gorm:"size:50"`
	AplicacaoCriterio               string `json:"aplicacaoCriterio" gorm:"size:50"`
	ModoDisputa                     string `json:"modoDisputa" gorm:"size:50"`
	TipoParticipacao                string `json:"tipoParticipacao" gorm:"size:50"`
	ParticipacaoConsorcio           string `json:"participacaoConsorcio" gorm:"size:10"`
	DiferencialAliquota             string `json:"diferencialAliquota" gorm:"size:50"`
	RegularidadeFiscal              string `json:"regularidadeFiscal" gorm:"size:50"`
	QualificacaoTecnica             string `json:"qualificacaoTecnica" gorm:"size:50"`
	AtestadosQualificacaoTecnica    string `json:"atestadosQualificacaoTecnica" gorm:"size:50"`
	QualificacaoEconomicoFinanceira string `json:"qualificacaoEconomicoFinanceira" gorm:"size:50"`
	ServicoContinuo                 string `json:"servicoContinuo" gorm:"size:10"`
	GarantiaSimNao                  string `json:"garantiaSimNao" gorm:"size:10"`
	Subcontratacao                  string `json:"subcontratacao" gorm:"size:50"`
	PermitidoCooperativa            string `json:"permitidoCooperativa" gorm:"size:10"`
	CadMadeira                      string `json:"cadMadeira" gorm:"size:10"`

	NumeroLicitacaoAnexo1 string `json:"numeroLicitacaoAnexo1" gorm:"size:50"`
	ObjetoLicitacaoAnexo1 string `json:"objetoLicitacaoAnexo1" gorm:"type:text"`

	IncluirRecJudicial      bool `json:"incluirRecJudicial"`
	IncluirRecExtrajudicial bool `json:"incluirRecExtrajudicial"`
	IncluirMeEpp            bool `json:"incluirMeEpp"`
	IncluirCadmadeira       bool `json:"incluirCadmadeira"`

	RegimeEmpreitada            string `json:"regimeEmpreitada" gorm:"size:50"`
	PrazosExecucao              string `json:"prazosExecucao" gorm:"size:50"`
	TipoInstrumentoContratual   string `json:"tipoInstrumentoContratual" gorm:"size:50"`
	ProrrogacaoContrato         string `json:"prorrogacaoContrato" gorm:"size:50"`
	MedicaoServicos             string `json:"medicaoServicos" gorm:"size:50"`
	FiscalizacaoInspecao        string `json:"fiscalizacaoInspecao" gorm:"size:50"`
	ConsequenciasRescisao       string `json:"consequenciasRescisao" gorm:"size:50"`
	SuspensaoTemporariaServicos string `json:"suspensaoTemporariaServicos" gorm:"size:50"`
	AceitacaoServicos           string `json:"aceitacaoServicos" gorm:"size:50"`
	GarantiaServicos            string `json:"garantiaServicos" gorm:"size:50"`
}

type Setting struct {
	Id    int    `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	Key   string `json:"key" form:"key" gorm:"size:64;uniqueIndex"`
	Value string `json:"value" form:"value" gorm:"type:text"`
}

type AuditLog struct {
	Id         int       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserId     int       `json:"userId" gorm:"index"`
	Username   string    `json:"username" gorm:"size:80"`
	Action     string    `json:"action" gorm:"size:20;index"`
	Resource   string    `json:"resource" gorm:"size:20"`
	ResourceId int       `json:"resourceId"`
	IP         string    `json:"ip" gorm:"size:64"`
	UserAgent  string    `json:"userAgent" gorm:"size:255"`
	Details    string    `json:"details" gorm:"type:text"`
	Timestamp  time.Time `json:"timestamp" gorm:"index"`
}
