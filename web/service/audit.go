package service

import (
	"fmt"
	"time"

	"github.com/editalgen/editalgen/database"
	"github.com/editalgen/editalgen/database/model"
	"github.com/editalgen/editalgen/logger"

	"github.com/goccy/go-json"
)

// Audit actions recorded by the web layer.
const (
	ActionLogin    = "LOGIN"
	ActionLogout   = "LOGOUT"
	ActionRegister = "REGISTER"
	ActionCreate   = "CREATE"
	ActionUpdate   = "UPDATE"
	ActionDelete   = "DELETE"
	ActionDownload = "DOWNLOAD"
)

// AuditLogService records who did what to which edital or user.
type AuditLogService struct{}

// AuditFilter narrows GetAuditLogs. Zero values match everything.
type AuditFilter struct {
	UserId   int
	Action   string
	Resource string
	Since    *time.Time
	Until    *time.Time
}

// LogAction stores one audit entry. A failure is logged and returned but
// callers treat it as non-fatal.
func (s *AuditLogService) LogAction(userId int, username, action, resource string, resourceId int, ip, userAgent string, details map[string]any) error {
	detailsJSON := ""
	if len(details) > 0 {
		data, err := json.Marshal(details)
		if err != nil {
			logger.Warning("marshal audit details failed:", err)
		} else {
			detailsJSON = string(data)
		}
	}

	entry := model.AuditLog{
		UserId:     userId,
		Username:   username,
		Action:     action,
		Resource:   resource,
		ResourceId: resourceId,
		IP:         ip,
		UserAgent:  truncate(userAgent, 255),
		Details:    detailsJSON,
		Timestamp:  time.Now(),
	}
	if err := database.GetDB().Create(&entry).Error; err != nil {
		logger.Warningf("create audit log failed: user=%d action=%s resource=%s: %v", userId, action, resource, err)
		return err
	}
	return nil
}

func (s *AuditLogService) GetAuditLogs(filter AuditFilter, limit, offset int) ([]model.AuditLog, int64, error) {
	query := database.GetDB().Model(&model.AuditLog{})
	if filter.UserId > 0 {
		query = query.Where("user_id = ?", filter.UserId)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.Resource != "" {
		query = query.Where("resource = ?", filter.Resource)
	}
	if filter.Since != nil {
		query = query.Where("timestamp >= ?", filter.Since)
	}
	if filter.Until != nil {
		query = query.Where("timestamp <= ?", filter.Until)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 50
	}
	var logs []model.AuditLog
	err := query.Order("timestamp DESC, id DESC").Limit(limit).Offset(offset).Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// CleanOldLogs removes entries older than days and returns how many went.
func (s *AuditLogService) CleanOldLogs(days int) (int64, error) {
	if days <= 0 {
		return 0, fmt.Errorf("days must be greater than 0")
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	result := database.GetDB().Where("timestamp < ?", cutoff).Delete(&model.AuditLog{})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		logger.Infof("cleaned %d audit logs older than %d days", result.RowsAffected, days)
	}
	return result.RowsAffected, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
