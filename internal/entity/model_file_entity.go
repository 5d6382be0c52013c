// FILE: internal/entity/model_file_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

// ModelFile is a stored artifact, either uploaded by the user or produced
// by a completed job. The record is never mutated after creation except to
// attach a download token or an expiry.
type ModelFile struct {
	Id               uuid.UUID
	UserId           uuid.UUID
	OriginalFilename string
	StorageBucket    string
	StoragePath      string
	FileSize         int64
	ChecksumSHA256   string
	Format           ModelFormat
	ModelType        *string
	Architecture     *string
	ParameterCount   *float64
	DownloadTokenId  *uuid.UUID
	ExpiresAt        *time.Time
	CreatedAt        time.Time
}

// Expired reports whether the file is past its retention window.
func (f *ModelFile) Expired(now time.Time) bool {
	return f.ExpiresAt != nil && now.After(*f.ExpiresAt)
}

// SizeFactor scales job cost by model size (parameter count in billions).
func (f *ModelFile) SizeFactor() int {
	if f.ParameterCount == nil {
		return 1
	}
	switch {
	case *f.ParameterCount > 70.0:
		return 3
	case *f.ParameterCount > 13.0:
		return 2
	default:
		return 1
	}
}
