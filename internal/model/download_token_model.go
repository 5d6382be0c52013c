package model

import (
	"time"

	"github.com/google/uuid"
)

type DownloadToken struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Token      string    `gorm:"type:char(64);uniqueIndex;not null"`
	FileId     uuid.UUID `gorm:"type:uuid;not null;index"`
	ExpiresAt  time.Time `gorm:"not null;index"`
	SingleUse  bool      `gorm:"not null"`
	ConsumedAt *time.Time
	RevokedAt  *time.Time
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (DownloadToken) TableName() string {
	return "download_tokens"
}
