package entity

import (
	"testing"
	"time"

	"github.com/editalgen/editalgen/database/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSetting() *AllSetting {
	return &AllSetting{
		WebPort:             5000,
		WebBasePath:         "painel",
		SessionMaxAge:       60,
		TimeLocation:        "America/Sao_Paulo",
		OrphanCleanupCron:   "@hourly",
		OrphanMaxAgeMinutes: 60,
		AuditRetentionDays:  90,
	}
}

func TestCheckValid(t *testing.T) {
	s := validSetting()
	require.NoError(t, s.CheckValid())
	assert.Equal(t, "/painel/", s.WebBasePath)

	cases := map[string]func(*AllSetting){
		"listen":   func(s *AllSetting) { s.WebListen = "not-an-ip" },
		"port":     func(s *AllSetting) { s.WebPort = 70000 },
		"session":  func(s *AllSetting) { s.SessionMaxAge = 0 },
		"location": func(s *AllSetting) { s.TimeLocation = "Mars/Olympus" },
		"cron":     func(s *AllSetting) { s.OrphanCleanupCron = "every tuesday" },
		"orphan":   func(s *AllSetting) { s.OrphanMaxAgeMinutes = -1 },
		"audit":    func(s *AllSetting) { s.AuditRetentionDays = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			s := validSetting()
			mutate(s)
			assert.Error(t, s.CheckValid())
		})
	}
}

func TestEditalFormRoundTrip(t *testing.T) {
	form := &EditalForm{
		FormName:           "  Pregão 5 ",
		NumeroPregao:       "5/2024",
		ObjetoServicos:     "obras",
		DataSessao:         time.Date(2024, 6, 10, 15, 4, 0, 0, time.Local),
		TipoParticipacao:   "exclusiva",
		IncluirMeEpp:       true,
		GarantiaSimNao:     "sim",
		CriterioJulgamento: "maior_desconto",
	}
	e := &model.Edital{Id: 3, CreatorId: 9, GeneratedFilename: "a.docx"}
	form.Apply(e)

	assert.Equal(t, "Pregão 5", e.FormName)
	assert.Equal(t, 3, e.Id)
	assert.Equal(t, 9, e.CreatorId)
	assert.Equal(t, "a.docx", e.GeneratedFilename)
	require.NotNil(t, e.DataSessao)
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), *e.DataSessao)
	assert.Nil(t, e.DataBaseOrcamento)
	assert.True(t, e.IncluirMeEpp)

	back := NewEditalForm(e)
	assert.Equal(t, "2024-06-10", FormatDate(back.DataSessao))
	assert.Equal(t, "", FormatDate(back.DataDisponibilidade))
	assert.Equal(t, "exclusiva", back.TipoParticipacao)
	assert.Equal(t, "sim", back.GarantiaSimNao)
}
