package specification

import (
	"time"

	"gorm.io/gorm"
)

// ExpiredBefore matches files whose retention window has elapsed
type ExpiredBefore struct {
	Now time.Time
}

func (s ExpiredBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("expires_at IS NOT NULL AND expires_at < ?", s.Now)
}

// ByChecksum filters files by their SHA-256 digest
type ByChecksum struct {
	Checksum string
}

func (s ByChecksum) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("checksum_sha256 = ?", s.Checksum)
}
