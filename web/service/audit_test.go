package service

import (
	"testing"
	"time"

	"github.com/editalgen/editalgen/database"
	"github.com/editalgen/editalgen/database/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLogAndFilter(t *testing.T) {
	setupDB(t)
	var s AuditLogService

	require.NoError(t, s.LogAction(1, "admin", ActionCreate, "edital", 7, "127.0.0.1", "test", map[string]any{"file": "a.docx"}))
	require.NoError(t, s.LogAction(1, "admin", ActionDelete, "edital", 7, "127.0.0.1", "test", nil))
	require.NoError(t, s.LogAction(2, "maria", ActionLogin, "user", 2, "127.0.0.1", "test", nil))

	logs, total, err := s.GetAuditLogs(AuditFilter{UserId: 1}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, logs, 2)

	logs, _, err = s.GetAuditLogs(AuditFilter{Action: ActionCreate}, 10, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.JSONEq(t, `{"file":"a.docx"}`, logs[0].Details)
	assert.Equal(t, 7, logs[0].ResourceId)
}

func TestCleanOldLogs(t *testing.T) {
	setupDB(t)
	var s AuditLogService

	old := model.AuditLog{Action: ActionLogin, Timestamp: time.Now().AddDate(0, 0, -100)}
	require.NoError(t, database.GetDB().Create(&old).Error)
	require.NoError(t, s.LogAction(1, "admin", ActionLogin, "user", 1, "", "", nil))

	n, err := s.CleanOldLogs(90)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.CleanOldLogs(0)
	assert.Error(t, err)
}
