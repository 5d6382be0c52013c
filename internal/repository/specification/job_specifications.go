package specification

import (
	"time"

	"gorm.io/gorm"

	"quantcloud-be/internal/entity"
)

// ByStatus filters jobs by lifecycle status
type ByStatus struct {
	Status entity.JobStatus
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// StartedBefore matches jobs whose processing began before the cutoff.
// Used to find jobs stuck in processing after a worker died.
type StartedBefore struct {
	Cutoff time.Time
}

func (s StartedBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("started_at IS NOT NULL AND started_at < ?", s.Cutoff)
}
