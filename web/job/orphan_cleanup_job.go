package job

import (
	"context"
	"time"

	"github.com/editalgen/editalgen/logger"
	"github.com/editalgen/editalgen/storage"
	"github.com/editalgen/editalgen/util/common"
	"github.com/editalgen/editalgen/web/service"
)

const defaultOrphanMaxAge = time.Hour

// OrphanCleanupJob removes stored documents that no edital references,
// typically left behind by a crash between writing a file and committing
// its record. Recent files are skipped so in-flight generations survive.
type OrphanCleanupJob struct {
	store          storage.Store
	editalService  *service.EditalService
	settingService service.SettingService
	now            func() time.Time
}

func NewOrphanCleanupJob(store storage.Store, editalService *service.EditalService) *OrphanCleanupJob {
	return &OrphanCleanupJob{
		store:         store,
		editalService: editalService,
		now:           time.Now,
	}
}

func (j *OrphanCleanupJob) maxAge() time.Duration {
	minutes, err := j.settingService.GetOrphanMaxAgeMinutes()
	if err != nil || minutes <= 0 {
		return defaultOrphanMaxAge
	}
	return time.Duration(minutes) * time.Minute
}

func (j *OrphanCleanupJob) Run() {
	defer common.Recover("orphan cleanup job")

	removed, err := j.Sweep(context.Background())
	if err != nil {
		logger.Warning("orphan cleanup failed:", err)
		return
	}
	if len(removed) > 0 {
		logger.Infof("orphan cleanup removed %d files from %s", len(removed), j.store)
	}
}

// Sweep removes the orphans and returns their names.
func (j *OrphanCleanupJob) Sweep(ctx context.Context) ([]string, error) {
	objects, err := j.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(objects) == 0 {
		return nil, nil
	}
	referenced, err := j.editalService.ReferencedFiles()
	if err != nil {
		return nil, err
	}

	cutoff := j.now().Add(-j.maxAge())
	var removed []string
	for _, obj := range objects {
		if referenced[obj.Name] || obj.ModTime.After(cutoff) {
			continue
		}
		if err := j.store.Remove(ctx, obj.Name); err != nil {
			logger.Warningf("remove orphan %s failed: %v", obj.Name, err)
			continue
		}
		logger.Debug("removed orphan document", obj.Name)
		removed = append(removed, obj.Name)
	}
	return removed, nil
}
