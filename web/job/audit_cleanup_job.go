package job

import (
	"github.com/editalgen/editalgen/logger"
	"github.com/editalgen/editalgen/util/common"
	"github.com/editalgen/editalgen/web/service"
)

const defaultAuditRetentionDays = 90

// AuditCleanupJob drops audit entries past the retention period.
type AuditCleanupJob struct {
	auditService   service.AuditLogService
	settingService service.SettingService
}

func NewAuditCleanupJob() *AuditCleanupJob {
	return &AuditCleanupJob{}
}

func (j *AuditCleanupJob) Run() {
	defer common.Recover("audit cleanup job")

	retentionDays, err := j.settingService.GetAuditRetentionDays()
	if err != nil || retentionDays <= 0 {
		retentionDays = defaultAuditRetentionDays
	}

	n, err := j.auditService.CleanOldLogs(retentionDays)
	if err != nil {
		logger.Warning("clean old audit logs failed:", err)
		return
	}
	logger.Debugf("audit cleanup removed %d entries (retention: %d days)", n, retentionDays)
}
