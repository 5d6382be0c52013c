// FILE: internal/entity/download_token_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

// DownloadToken is a time-limited capability bound to one ModelFile.
// A consumed or expired token is permanently invalid; validity checking
// and consumption happen atomically in the repository.
type DownloadToken struct {
	Id         uuid.UUID
	Token      string
	FileId     uuid.UUID
	ExpiresAt  time.Time
	SingleUse  bool
	ConsumedAt *time.Time
	RevokedAt  *time.Time
	CreatedAt  time.Time
}

// Usable reports whether the token can still be redeemed at now.
func (t *DownloadToken) Usable(now time.Time) bool {
	if t.RevokedAt != nil {
		return false
	}
	if t.SingleUse && t.ConsumedAt != nil {
		return false
	}
	return now.Before(t.ExpiresAt)
}
