package database

import (
	"path/filepath"
	"testing"

	"github.com/editalgen/editalgen/database/model"
	"github.com/editalgen/editalgen/util/crypto"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) {
	t.Helper()
	require.NoError(t, InitDBWithDialector(sqlite.Open(filepath.Join(t.TempDir(), "test.db"))))
	t.Cleanup(func() { _ = CloseDB() })
}

func TestInitDBSeedsAdmin(t *testing.T) {
	setup(t)

	var admin model.User
	require.NoError(t, GetDB().Where("username = ?", DefaultAdminUsername).First(&admin).Error)
	assert.True(t, admin.IsAdmin())
	assert.Equal(t, DefaultAdminEmail, admin.Email)
	assert.True(t, crypto.CheckPasswordHash(admin.Password, DefaultAdminPassword))

	created, err := EnsureDefaultAdmin()
	require.NoError(t, err)
	assert.False(t, created)
}

func TestEditalBelongsToCreator(t *testing.T) {
	setup(t)

	var admin model.User
	require.NoError(t, GetDB().First(&admin).Error)

	e := &model.Edital{
		CreatorId:      admin.Id,
		FormName:       "Pregao 1",
		NumeroPregao:   "01/2024",
		ObjetoServicos: "limpeza",
	}
	require.NoError(t, GetDB().Create(e).Error)
	assert.False(t, e.DataCriacao.IsZero())

	var loaded model.Edital
	require.NoError(t, GetDB().Preload("Creator").First(&loaded, e.Id).Error)
	require.NotNil(t, loaded.Creator)
	assert.Equal(t, DefaultAdminUsername, loaded.Creator.Username)
}

func TestIsNotFound(t *testing.T) {
	setup(t)
	err := GetDB().First(&model.Edital{}, 999).Error
	assert.True(t, IsNotFound(err))
	assert.NoError(t, Checkpoint())
}
